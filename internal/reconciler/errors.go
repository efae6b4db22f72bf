package reconciler

import (
	"fmt"
)

// ExternalError wraps a failure at a collaborator boundary: attachment
// creation, container file operations, service restarts, relation publishes.
// It is transient; the next triggering event retries the whole pass.
type ExternalError struct {
	Op  string
	Err error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}
