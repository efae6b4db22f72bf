// Package workload drives the CU container through its Pebble daemon.
package workload

import (
	"context"
)

// VersionPath is where the workload image records its version.
const VersionPath = "/etc/workload-version"

// Runtime is the boundary to the container runtime. All operations act on
// the single CU container this agent manages.
type Runtime interface {
	// Ready reports whether the container's Pebble daemon is reachable.
	Ready(ctx context.Context) bool
	// FileExists reports whether path exists inside the container.
	FileExists(ctx context.Context, path string) (bool, error)
	// ReadFile returns the content of path inside the container.
	ReadFile(ctx context.Context, path string) ([]byte, error)
	// WriteFile replaces the content of path inside the container, creating
	// parent directories as needed.
	WriteFile(ctx context.Context, path string, content []byte) error
	// EnsureService makes sure the service layer is in place and the CU
	// process is running; with restart it forces a restart so the process
	// picks up new configuration.
	EnsureService(ctx context.Context, restart bool) error
	// Version returns the workload version recorded in the image.
	Version(ctx context.Context) (string, error)
}
