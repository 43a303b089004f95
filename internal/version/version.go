package version

import (
	"runtime/debug"
	"strings"
)

// Version is the release tag (e.g. v1.2.3), set via -ldflags. Empty for
// local builds.
var Version string //nolint:gochecknoglobals

// Commit is the short git SHA, set via -ldflags. Empty for local builds.
var Commit string //nolint:gochecknoglobals

// String returns the version string for the CLI: the tag if set, otherwise a
// "dev-" prefixed SHA from ldflags or Go build info, otherwise "dev".
func String() string {
	if v := strings.TrimSpace(Version); v != "" {
		return v
	}

	if c := strings.TrimSpace(Commit); c != "" {
		return shaVersion(c)
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return shaVersion(s.Value)
			}
		}
	}

	return "dev"
}

func shaVersion(sha string) string {
	sha = strings.TrimSpace(sha)
	if len(sha) >= 7 {
		sha = sha[:7]
	}

	return "dev-" + sha
}
