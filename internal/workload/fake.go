package workload

import (
	"context"
	"errors"
	"os"
)

// Fake is an in-memory Runtime for tests.
type Fake struct {
	// Connectable mirrors the Pebble daemon being reachable.
	Connectable bool
	// Files holds the container filesystem content by path.
	Files map[string][]byte
	// ServiceRunning mirrors the CU process state.
	ServiceRunning bool
	// WorkloadVersion, when set, is returned by Version.
	WorkloadVersion string

	// Writes records the paths written, in order.
	Writes []string
	// Restarts counts EnsureService calls with restart set.
	Restarts int
	// EnsureCalls counts all EnsureService calls.
	EnsureCalls int

	WriteErr  error
	EnsureErr error
}

var _ Runtime = (*Fake)(nil)

func NewFake() *Fake {
	return &Fake{Connectable: true, Files: map[string][]byte{}}
}

func (f *Fake) Ready(context.Context) bool {
	return f.Connectable
}

func (f *Fake) FileExists(_ context.Context, path string) (bool, error) {
	_, ok := f.Files[path]
	return ok, nil
}

func (f *Fake) ReadFile(_ context.Context, path string) ([]byte, error) {
	content, ok := f.Files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return content, nil
}

func (f *Fake) WriteFile(_ context.Context, path string, content []byte) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.Files[path] = content
	f.Writes = append(f.Writes, path)
	return nil
}

func (f *Fake) EnsureService(_ context.Context, restart bool) error {
	f.EnsureCalls++
	if f.EnsureErr != nil {
		return f.EnsureErr
	}
	if restart {
		f.Restarts++
	}
	f.ServiceRunning = true
	return nil
}

func (f *Fake) Version(context.Context) (string, error) {
	if f.WorkloadVersion == "" {
		return "", errors.New("workload version not recorded")
	}
	return f.WorkloadVersion, nil
}
