// Package version holds build-time identifying information for auraed,
// following the same var-injected-by-ldflags pattern as the teacher's own
// pkg/version.
package version

var (
	// Program is the daemon's short name, used as the CLI app name, in log
	// messages, and in a nested instance's process title.
	Program = "auraed"

	// ProgramUpper is the upper-case env var prefix (e.g. AURAE_DEBUG).
	ProgramUpper = "AURAE"

	// Version is set via -ldflags at build time.
	Version = "dev"

	// GitCommit is set via -ldflags at build time.
	GitCommit = "HEAD"
)
