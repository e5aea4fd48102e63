// Package version exposes the build-time version injected via ldflags.
package version

var version = "v0.0.0"

// Version returns the binary's version string.
func Version() string {
	return version
}
