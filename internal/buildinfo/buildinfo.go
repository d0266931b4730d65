// Package buildinfo holds build-time metadata injected at link time.
package buildinfo

// Set via -ldflags at build time.
var (
	version   = "dev"
	buildDate = "unknown"
)

// Version returns the Git version tag from build.
func Version() string {
	if version == "" {
		return "unknown"
	}
	return version
}

// BuildDate returns the time the binary was built.
func BuildDate() string {
	if buildDate == "" {
		return "unknown"
	}
	return buildDate
}
