// Package version provides version information for the usbuild CLI.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables set via ldflags.
var (
	// Version is the CLI version (set via ldflags).
	Version = "v0.0.0-dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// EsbuildModule is the module path of the embedded bundler.
const EsbuildModule = "github.com/evanw/esbuild"

// Info contains version information.
type Info struct {
	// Version is the CLI version (set via ldflags).
	Version string `json:"version"`

	// GitCommit is the git commit hash.
	GitCommit string `json:"gitCommit"`

	// BuildDate is the build timestamp.
	BuildDate string `json:"buildDate"`

	// GoVersion is the Go version used to build.
	GoVersion string `json:"goVersion"`

	// EsbuildVersion is the version of the esbuild module linked into the
	// binary.
	EsbuildVersion string `json:"esbuildVersion"`
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:        Version,
		GitCommit:      GitCommit,
		BuildDate:      BuildDate,
		GoVersion:      runtime.Version(),
		EsbuildVersion: ModuleVersion(EsbuildModule),
	}
}

// String returns a human-readable version string.
func (i Info) String() string {
	return fmt.Sprintf("usbuild:\n  Version:  %s\n  Build ID: %s/%s\n  Go:       %s\n\nesbuild:\n  Version:  %s",
		i.Version, i.BuildDate, i.GitCommit, i.GoVersion, i.EsbuildVersion)
}

// ModuleVersion returns the version of a dependency recorded in the binary's
// build info, or "unknown".
func ModuleVersion(path string) string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	return moduleVersion(bi, path)
}

func moduleVersion(bi *debug.BuildInfo, path string) string {
	for _, dep := range bi.Deps {
		if dep.Path != path {
			continue
		}
		if dep.Replace != nil && dep.Replace.Version != "" {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return "unknown"
}
