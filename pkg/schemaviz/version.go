package schemaviz

import (
	"fmt"
	"runtime"
)

// Name is the tool name sent in the client tag of every request.
const Name = "schemaviz"

// Version information, overridable at build time with -ldflags
var (
	Version   = "0.0.1"
	GitCommit = ""
	BuildDate = ""
)

// UserAgent returns the client tag identifying this tool to Atlas Cloud.
func UserAgent() string {
	return fmt.Sprintf("%s/%s", Name, Version)
}

// FullVersionInfo returns detailed version information
func FullVersionInfo() string {
	info := fmt.Sprintf("%s %s\n", Name, Version)
	info += fmt.Sprintf("Go Version: %s\n", runtime.Version())
	info += fmt.Sprintf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	if GitCommit != "" {
		info += fmt.Sprintf("Git Commit: %s\n", GitCommit)
	}

	if BuildDate != "" {
		info += fmt.Sprintf("Build Date: %s\n", BuildDate)
	}

	return info
}
