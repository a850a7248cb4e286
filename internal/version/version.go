// Package version holds build metadata injected with -ldflags -X.
package version

var (
	// Version is the release tag
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build metadata for -version output.
func String() string {
	return "dsmgrid " + Version + " (" + GitSHA + ", built " + BuildTime + ")"
}
