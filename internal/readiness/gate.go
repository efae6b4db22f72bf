// Package readiness aggregates the preconditions that must hold before the
// workload may be (re)configured.
package readiness

import (
	"fmt"
	"strings"

	"github.com/thc1006/oai-ran-cu-agent/internal/relations"
)

// Observation is the externally gathered state the gate evaluates. It is
// derived fresh each pass and never stored.
type Observation struct {
	WorkloadReady      bool
	StorageReady       bool
	MissingAttachments []string
	CoreData           *relations.CoreNetworkData
	CoreDataErr        error
}

// Decision is the gate outcome. Reasons lists every unmet precondition,
// highest priority first, so the status surface can show the most actionable
// one while diagnostics keep the full list.
type Decision struct {
	MayConfigure bool
	Reasons      []string
}

// TopReason is the highest-priority blocking reason, or empty when none.
func (d Decision) TopReason() string {
	if len(d.Reasons) == 0 {
		return ""
	}
	return d.Reasons[0]
}

// Evaluate checks all four preconditions unconditionally. The reason order
// is fixed: workload container, storage, network attachments, core data.
func Evaluate(obs Observation) Decision {
	var reasons []string
	if !obs.WorkloadReady {
		reasons = append(reasons, "waiting for workload container to be ready")
	}
	if !obs.StorageReady {
		reasons = append(reasons, "waiting for config storage to be attached")
	}
	if len(obs.MissingAttachments) > 0 {
		reasons = append(reasons, fmt.Sprintf("waiting for network attachments to be realized: %s",
			strings.Join(obs.MissingAttachments, ", ")))
	}
	switch {
	case obs.CoreDataErr != nil:
		reasons = append(reasons, fmt.Sprintf("waiting for usable core network data: %v", obs.CoreDataErr))
	case obs.CoreData == nil:
		reasons = append(reasons, "waiting for core network data")
	}
	return Decision{MayConfigure: len(reasons) == 0, Reasons: reasons}
}
