// Package version centralizes the build version string.
package version

// Version is the module version. Overridden at build time via
// -ldflags "-X github.com/standardbeagle/srcxref/internal/version.Version=...".
var Version = "dev"
