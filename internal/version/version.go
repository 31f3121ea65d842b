// Package version exposes the build identity stamped into the binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Overridden with -ldflags at release time. A development build falls back to
// the VCS metadata the Go toolchain embeds.
var (
	Version    = "dev"
	CommitHash = ""
	BuildTime  = ""
)

// GetInfo returns the human-readable build identity, e.g. "dev (1a2b3c4)".
func GetInfo() string {
	if CommitHash == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs.revision":
					CommitHash = setting.Value
				case "vcs.time":
					BuildTime = setting.Value
				}
			}
		}
	}
	if CommitHash == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, shortHash(CommitHash))
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
