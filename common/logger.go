package common

import (
	"fmt"
	"log"
	"log/slog"
)

const (
	colorWarning = "\x1b[36;1m"
	colorError   = "\x1b[31;1m"
	colorReset   = "\x1b[0m"
)

func colored(color string, value any) string {
	return fmt.Sprintf("%s%v%s", color, value, colorReset)
}

type Warning struct {
	Reason error
}

func (w *Warning) Error() string {
	return colored(colorWarning, w.Reason)
}

func (w *Warning) Unwrap() error {
	return w.Reason
}

func PrefixWarning(message string) string {
	return colored(colorWarning, message)
}

type PrefixedError struct {
	Reason error
}

func (pe *PrefixedError) Error() string {
	return colored(colorError, pe.Reason)
}

func (pe *PrefixedError) Unwrap() error {
	return pe.Reason
}

// ChooseLogger sets the level of the default slog logger and the flags of the standard logger.
// The ARM pipeline reports throttling through slog.
func ChooseLogger(loggingLvl string) error {
	level, flags := slog.LevelInfo, 0
	switch LogLevel(loggingLvl) {
	case DevLogLevel, DebugLogLevel:
		level, flags = slog.LevelDebug, log.LstdFlags|log.Lshortfile
	case WarnLogLevel:
		level = slog.LevelWarn
	case ErrorLogLevel:
		level = slog.LevelError
	case ProdLogLevel:
	default:
		return fmt.Errorf("unsupported logging level: %s", loggingLvl)
	}
	slog.SetLogLoggerLevel(level)
	log.SetFlags(flags)
	return nil
}
