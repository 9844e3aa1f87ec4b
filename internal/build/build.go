// Package build holds build-time information.
package build

// Version, Commit and Date are set with -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
