// Package bininfo holds build metadata injected through -ldflags "-X".
package bininfo

var (
	// Version is the SemVer version of the binary, optionally suffixed with +<commit>.
	Version = "v0.0.0"

	// BuildTime is the RFC 3339 time at which the binary was built.
	BuildTime = "1970-01-01T00:00:00Z"
)

// Info returns the build metadata as served by the meta endpoints.
func Info() map[string]string {
	return map[string]string{
		"version": Version,
		"build":   BuildTime,
	}
}
