package netattach

import (
	"context"
)

// Fake is an in-memory Provider for tests.
type Fake struct {
	// Ensured records every attachment passed to Ensure, keyed by name.
	Ensured map[string]Attachment
	// EnsureCalls counts Ensure invocations.
	EnsureCalls int
	// EnsureErr, when set, is returned by Ensure.
	EnsureErr error
	// Unrealized is the set of attachment names Missing reports.
	Unrealized []string
	// MissingErr, when set, is returned by Missing.
	MissingErr error
}

var _ Provider = (*Fake)(nil)

func NewFake() *Fake {
	return &Fake{Ensured: map[string]Attachment{}}
}

func (f *Fake) Ensure(_ context.Context, attachments []Attachment) error {
	f.EnsureCalls++
	if f.EnsureErr != nil {
		return f.EnsureErr
	}
	for _, a := range attachments {
		f.Ensured[a.Name] = a
	}
	return nil
}

func (f *Fake) Missing(_ context.Context, attachments []Attachment) ([]string, error) {
	if f.MissingErr != nil {
		return nil, f.MissingErr
	}
	var missing []string
	for _, a := range attachments {
		for _, name := range f.Unrealized {
			if a.Name == name {
				missing = append(missing, name)
			}
		}
	}
	return missing, nil
}
