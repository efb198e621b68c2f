// Package misc keeps program identification shared by all other packages.
package misc

import (
	"runtime/debug"
)

const appName = "bte"

// set by the linker: -X bte/misc.version=...
var (
	version = "dev"
	gitHash = ""
)

// GetAppName returns short program name used for loggers and file names.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns git revision the binary was built from if known.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
