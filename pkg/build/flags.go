// SPDX-License-Identifier: MIT
//
// Package build holds metadata embedded into the binary at link time:
//
//	go build -ldflags "-X ffaa/pkg/build.buildName=ffaa \
//	  -X ffaa/pkg/build.buildTime=$(date -u +%FT%TZ) \
//	  -X ffaa/pkg/build.buildCommit=$(git rev-parse --short HEAD) \
//	  -X ffaa/pkg/build.buildVersion=v0.1.0"
//
// Development builds run without the flags and report "dev" values.
package build

import "fmt"

// Description is the one-line summary shown by the CLI.
const Description = "Real-time log-spaced spectral band analyzer"

// Info is the build metadata of the running binary.
type Info struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// String formats the metadata for --version.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}

// Populated by -ldflags during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &Info{
		Name:    "ffaa",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
)

// Initialize validates and copies build information from ldflags variables
// into the build info. It returns an error naming the first missing flag;
// the development defaults stay in place in that case.
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

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *Info {
	return buildFlags
}
