package readiness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thc1006/oai-ran-cu-agent/internal/relations"
)

func readyObservation() Observation {
	return Observation{
		WorkloadReady: true,
		StorageReady:  true,
		CoreData:      &relations.CoreNetworkData{IPAddress: "1.2.3.4", Port: 38412},
	}
}

func TestEvaluateAllPreconditionsMet(t *testing.T) {
	d := Evaluate(readyObservation())
	assert.True(t, d.MayConfigure)
	assert.Empty(t, d.Reasons)
	assert.Empty(t, d.TopReason())
}

func TestEvaluateSingleUnmetPrecondition(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Observation)
		want   string
	}{
		{
			name:   "workload not ready",
			mutate: func(o *Observation) { o.WorkloadReady = false },
			want:   "waiting for workload container to be ready",
		},
		{
			name:   "storage not ready",
			mutate: func(o *Observation) { o.StorageReady = false },
			want:   "waiting for config storage to be attached",
		},
		{
			name:   "attachment missing",
			mutate: func(o *Observation) { o.MissingAttachments = []string{"f1-net"} },
			want:   "waiting for network attachments to be realized: f1-net",
		},
		{
			name:   "core data absent",
			mutate: func(o *Observation) { o.CoreData = nil },
			want:   "waiting for core network data",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := readyObservation()
			tt.mutate(&obs)
			d := Evaluate(obs)
			assert.False(t, d.MayConfigure)
			require.Len(t, d.Reasons, 1)
			assert.Equal(t, tt.want, d.TopReason())
		})
	}
}

func TestEvaluateReportsEveryUnmetReasonInPriorityOrder(t *testing.T) {
	d := Evaluate(Observation{
		WorkloadReady:      false,
		StorageReady:       false,
		MissingAttachments: []string{"f1-net", "n3-net"},
		CoreData:           nil,
	})
	assert.False(t, d.MayConfigure)
	require.Len(t, d.Reasons, 4)
	assert.Equal(t, "waiting for workload container to be ready", d.Reasons[0])
	assert.Equal(t, "waiting for config storage to be attached", d.Reasons[1])
	assert.Equal(t, "waiting for network attachments to be realized: f1-net, n3-net", d.Reasons[2])
	assert.Equal(t, "waiting for core network data", d.Reasons[3])
}

func TestEvaluateCoreDataAbsenceBlocksRegardlessOfOtherState(t *testing.T) {
	obs := readyObservation()
	obs.CoreData = nil
	d := Evaluate(obs)
	assert.False(t, d.MayConfigure)
	assert.Contains(t, d.TopReason(), "core network data")
}

func TestEvaluateMalformedCoreData(t *testing.T) {
	obs := readyObservation()
	obs.CoreData = nil
	obs.CoreDataErr = errors.New(`core network data: "x" is not an IP address`)
	d := Evaluate(obs)
	assert.False(t, d.MayConfigure)
	require.Len(t, d.Reasons, 1)
	assert.Contains(t, d.Reasons[0], "usable core network data")
}
