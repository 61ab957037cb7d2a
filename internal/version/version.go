// Package version holds the tool version, set at build time via ldflags.
package version

// Version is the pyconform release version.
var Version = "0.3.0"
