// Package version reports build metadata injected with -ldflags -X.
package version

import (
	"fmt"
	"runtime/debug"
)

const unknown = "unknown"

// Build metadata, set at link time.
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills Commit and Date from the Go build info when they
// were not injected at link time.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == unknown {
				Date = setting.Value
			}
		}
	}
}

// String formats the metadata for the version command.
func String() string {
	return fmt.Sprintf("scoredash %s (commit: %s, built: %s)", Version, Commit, Date)
}
