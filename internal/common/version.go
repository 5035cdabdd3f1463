package common

import (
	"fmt"
)

// Version variables injected at build time via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// GetVersion returns the semantic version string
func GetVersion() string {
	return Version
}

// GetGitCommit returns the short git commit hash
func GetGitCommit() string {
	return GitCommit
}

// GetFullVersion returns a formatted version string with all build info
func GetFullVersion() string {
	return fmt.Sprintf("%s (commit: %s)", Version, GitCommit)
}
