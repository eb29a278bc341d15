// Package version carries the build identity stamped in at link time.
package version

// Set via -ldflags "-X github.com/faultline-sh/faultline/pkg/version.Version=...".
var (
	// Version is the release tag of the running binary.
	Version = "dev"
	// Commit is the VCS revision the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
