// Package version exposes build-time version metadata.
package version

import (
	"strconv"
	"strings"
)

var (
	// Version is the full semver version (set at build time via -ldflags).
	Version = "0.0.0"

	// GitCommit is the git commit hash (set at build time).
	GitCommit = "unknown"

	// BuildDate is the build timestamp (set at build time).
	BuildDate = "unknown"
)

// MajorVersion returns the major version number.
func MajorVersion() int {
	parts := strings.Split(Version, ".")
	if len(parts) > 0 {
		major, _ := strconv.Atoi(parts[0])
		return major
	}
	return 0
}

// Info is structured version information for the `version` subcommand.
type Info struct {
	Version   string
	GitCommit string
	BuildDate string
}

// Get returns the current build's version information.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	}
}
