// SPDX-License-Identifier: MIT
//
// Package build provides the build metadata of the binary. The application
// name, build timestamp, Git commit hash, semantic version and build UUID are
// embedded at compile time using linker flags and shown by the CLI.
package build

import "fmt"

// Description is the one-line summary shown by the CLI.
const Description = "Decode DTMF keypad tones from a live audio line or WAV recordings"

// ldFlags holds build-time information that is injected during compilation.
// The fields are populated via -ldflags during the build process, for example:
//
//	go build -ldflags "-X dtmf/internal/build.buildName=dtmf -X dtmf/internal/build.buildVersion=0.1.0"
//
// Required flags for production builds:
// - Name: Application name (e.g., "dtmf")
// - Time: Build timestamp (RFC3339 format)
// - Commit: Git commit hash
// - Version: Semantic version (e.g., "0.1.0")
// - Uuid: Unique build identifier
type ldFlags struct {
	Name        string // Application name
	Description string // One-line summary
	Time        string // Build timestamp
	Commit      string // Git commit hash
	Version     string // Semantic version
	Uuid        string // Unique build identifier
}

// Package-level variables for build information.
// These are populated by -ldflags during compilation.
// Default values are used during development.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildUuid    string
	buildFlags   = defaultFlags()
)

func defaultFlags() *ldFlags {
	return &ldFlags{
		Name:        "dtmf",
		Description: Description,
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
		Uuid:        "unknown",
	}
}

// Initialize validates and copies build information from ldflags variables
// into the buildFlags struct. This must be called early in program startup.
// Returns an error if any required build flag is missing, in which case the
// development defaults stay in place.
func Initialize() error {
	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}
	if buildUuid == "" {
		return fmt.Errorf("BuildUuid is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion
	buildFlags.Uuid = buildUuid

	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// VersionString renders the version line printed by --version.
func VersionString() string {
	f := buildFlags
	return fmt.Sprintf("%s (commit %s, built %s)", f.Version, f.Commit, f.Time)
}
