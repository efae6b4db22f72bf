package controllers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/thc1006/oai-ran-cu-agent/internal/reconciler"
	"github.com/thc1006/oai-ran-cu-agent/internal/status"
)

var (
	passTotal = promauto.With(ctrlmetrics.Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cu_agent",
			Name:      "reconcile_passes_total",
			Help:      "Reconciliation passes by outcome.",
		},
		[]string{"outcome"},
	)
	passDuration = promauto.With(ctrlmetrics.Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cu_agent",
			Name:      "reconcile_duration_seconds",
			Help:      "Wall time of one reconciliation pass.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	restartTotal = promauto.With(ctrlmetrics.Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: "cu_agent",
			Name:      "workload_restarts_total",
			Help:      "Workload service restarts driven by configuration changes.",
		},
	)
	publishTotal = promauto.With(ctrlmetrics.Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: "cu_agent",
			Name:      "relation_publishes_total",
			Help:      "Outbound relation payloads written.",
		},
	)
	conditionGauge = promauto.With(ctrlmetrics.Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "cu_agent",
			Name:      "condition",
			Help:      "Current agent condition; exactly one series is 1.",
		},
		[]string{"condition"},
	)
)

func passOutcome(out reconciler.Outcome) string {
	if out.Err != nil {
		return "error"
	}
	return string(out.State)
}

func recordPass(outcome string, elapsed time.Duration) {
	passTotal.WithLabelValues(outcome).Inc()
	passDuration.Observe(elapsed.Seconds())
}

func recordEffects(out reconciler.Outcome) {
	if out.Restarted {
		restartTotal.Inc()
	}
	if out.Publishes > 0 {
		publishTotal.Add(float64(out.Publishes))
	}
}

func recordCondition(s status.Status) {
	for _, kind := range []status.Kind{status.KindBlocked, status.KindWaiting, status.KindActive} {
		var v float64
		if kind == s.Kind {
			v = 1
		}
		conditionGauge.WithLabelValues(string(kind)).Set(v)
	}
}
