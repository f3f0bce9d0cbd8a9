// Package version reports the arffkit build version.
package version

import (
	"github.com/Masterminds/semver/v3"
)

// Set at build time with -ldflags "-X github.com/rshade/arffkit/pkg/version.version=...".
//
//nolint:gochecknoglobals // Build-time injected values.
var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// GetVersion returns the build version in canonical semver form, without a leading
// "v". A version that does not parse is returned unchanged.
func GetVersion() string {
	v, err := semver.NewVersion(version)
	if err != nil {
		return version
	}
	return v.String()
}

// GetGitCommit returns the commit the binary was built from.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return buildDate
}

// IsDevelopment reports whether the build is a pre-release.
func IsDevelopment() bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return true
	}
	return v.Prerelease() != ""
}
