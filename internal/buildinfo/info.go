// Package buildinfo carries version metadata injected at build time.
package buildinfo

var (
	// Version is set via -ldflags at release build time.
	Version = "dev"
	// Commit is the short git hash of the build.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
