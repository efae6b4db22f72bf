// Package status condenses a reconciliation outcome into the one
// operator-facing condition: what the agent is doing and, when it is not
// active, why.
package status

import (
	"errors"

	"github.com/thc1006/oai-ran-cu-agent/internal/cuconfig"
	"github.com/thc1006/oai-ran-cu-agent/internal/readiness"
	"github.com/thc1006/oai-ran-cu-agent/internal/reconciler"
)

// Kind orders the condition severity for the operator.
type Kind string

const (
	// KindBlocked marks conditions only an operator can clear, such as an
	// invalid option.
	KindBlocked Kind = "blocked"
	// KindWaiting marks transient conditions expected to clear on their own.
	KindWaiting Kind = "waiting"
	// KindActive means the workload runs the desired configuration.
	KindActive Kind = "active"
)

// Status is the condensed condition.
type Status struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message,omitempty"`
}

// Report condenses one pass into a condition. Option errors are permanent
// and block; any other error and every unmet precondition is transient, so
// the condition stays waiting until the situation resolves itself.
func Report(state reconciler.State, decision readiness.Decision, err error) Status {
	var verr *cuconfig.ValidationError
	if errors.As(err, &verr) {
		return Status{Kind: KindBlocked, Message: verr.Error()}
	}
	if err != nil {
		return Status{Kind: KindWaiting, Message: err.Error()}
	}
	if state == reconciler.StateActive {
		return Status{Kind: KindActive}
	}
	if reason := decision.TopReason(); reason != "" {
		return Status{Kind: KindWaiting, Message: reason}
	}
	return Status{Kind: KindWaiting, Message: "reconciliation pending"}
}
