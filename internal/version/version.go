// Package version exposes build metadata injected via ldflags.
package version

// Set at build time:
//
//	go build -ldflags "-X .../internal/version.Version=v1.0.0 -X .../internal/version.Commit=abc123"
var (
	Version = "dev"
	Commit  = "unknown"
)
