// Package version exposes the build version of influxbatch.
package version

import (
	"github.com/Masterminds/semver/v3"
)

// devVersion is reported when the build version is missing or not valid semver.
const devVersion = "0.0.0-dev"

// version is set at build time via
// -ldflags "-X github.com/rshade/influxbatch/pkg/version.version=1.2.3".
var version = "0.1.0" //nolint:gochecknoglobals // Overridden by ldflags

// GetVersion returns the normalized build version. Values that do not parse
// as semantic versions are reported as a development build.
func GetVersion() string {
	return normalize(version)
}

func normalize(raw string) string {
	v, err := semver.NewVersion(raw)
	if err != nil {
		return devVersion
	}
	return v.String()
}
