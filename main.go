package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entigolabs/azure-fluent/cli"
	"github.com/entigolabs/azure-fluent/common"
)

func main() {
	time.Local = time.UTC
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Run(ctx)
	if ctx.Err() != nil {
		log.Println(common.PrefixWarning("armctl was terminated, exiting"))
	}
}
