package common

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/entigolabs/azure-fluent/common.version=..." on release builds.
var (
	version   = "0.0.0"
	buildDate = "1970-01-01T00:00:00Z"
	gitCommit = ""
	gitTag    = ""
)

type Version struct {
	Version   string
	BuildDate string
	GitCommit string
	GitTag    string
	GoVersion string
	Platform  string
}

func (v Version) String() string {
	return v.Version
}

// GetVersion prefers the release tag, then the linked version with a short commit. Without link flags
// the commit comes from the vcs stamp of the build info.
func GetVersion() Version {
	commit := gitCommit
	if commit == "" {
		commit = vcsRevision()
	}
	versionStr := gitTag
	if versionStr == "" {
		versionStr = "v" + version + "+" + shortCommit(commit)
	}
	return Version{
		Version:   versionStr,
		BuildDate: buildDate,
		GitCommit: commit,
		GitTag:    gitTag,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}
	return ""
}

func shortCommit(commit string) string {
	if len(commit) < 7 {
		return "unknown"
	}
	return commit[:7]
}

func PrintVersion() {
	v := GetVersion()
	fmt.Printf("armctl: %s\n", v)
	fmt.Printf("  BuildDate: %s\n", v.BuildDate)
	fmt.Printf("  GitCommit: %s\n", v.GitCommit)
	if v.GitTag != "" {
		fmt.Printf("  GitTag: %s\n", v.GitTag)
	}
	fmt.Printf("  GoVersion: %s\n", v.GoVersion)
	fmt.Printf("  Platform: %s\n", v.Platform)
}
