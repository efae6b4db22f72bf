// Package controllers wires the reconciliation engine into the
// controller-runtime dispatch loop.
package controllers

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"
	"sigs.k8s.io/controller-runtime/pkg/source"

	"github.com/thc1006/oai-ran-cu-agent/internal/cuconfig"
	"github.com/thc1006/oai-ran-cu-agent/internal/expose"
	"github.com/thc1006/oai-ran-cu-agent/internal/reconciler"
	"github.com/thc1006/oai-ran-cu-agent/internal/status"
)

// requestName is the single logical object this controller reconciles. Every
// watch event maps to it, so the workqueue coalesces bursts into one pass.
const requestName = "cu-agent"

//+kubebuilder:rbac:groups="",resources=configmaps,verbs=get;list;watch;create;update
//+kubebuilder:rbac:groups="",resources=services,verbs=get;list;watch;create;update
//+kubebuilder:rbac:groups=k8s.cni.cncf.io,resources=network-attachment-definitions,verbs=get;list;watch;create;update

// CUAgentReconciler dispatches reconciliation passes for the one CU this
// agent manages.
type CUAgentReconciler struct {
	Engine *reconciler.Engine
	Expose *expose.Manager
	// StatusFile, when set, persists the condition after every pass.
	StatusFile *status.Writer
	Log        logr.Logger

	// ConfigPath is the mounted options file, re-read on every pass.
	ConfigPath string
	// Namespace scopes the watched ConfigMaps and the request key.
	Namespace string
	// RelationConfigMaps names the ConfigMaps carrying relation payloads;
	// changes to any of them trigger a pass.
	RelationConfigMaps []string
	// ConfigEvents delivers debounced options-file change notifications.
	ConfigEvents <-chan event.GenericEvent

	// ResyncPeriod schedules the periodic full pass; RetryPeriod schedules
	// the re-run after a transient failure or an unmet precondition.
	ResyncPeriod time.Duration
	RetryPeriod  time.Duration
}

// Reconcile runs one pass. Failures are never returned to the workqueue:
// its exponential backoff would fight the fixed retry cadence, so every
// return schedules the next pass explicitly via RequeueAfter.
func (r *CUAgentReconciler) Reconcile(ctx context.Context, _ ctrl.Request) (ctrl.Result, error) {
	start := time.Now()

	cfg, err := cuconfig.Load(r.ConfigPath)
	if err != nil {
		r.report(reconciler.Outcome{State: reconciler.StateBlocked, Err: err}, time.Since(start))
		var verr *cuconfig.ValidationError
		if errors.As(err, &verr) {
			// Invalid option values stay blocked until the file changes; the
			// resync tick guards against a lost watch event.
			return ctrl.Result{RequeueAfter: r.ResyncPeriod}, nil
		}
		// An unreadable or garbled file is transient: the kubelet replaces
		// mounted files in two steps.
		return ctrl.Result{RequeueAfter: r.RetryPeriod}, nil
	}

	if r.Expose != nil {
		if err := r.Expose.EnsureServicePorts(ctx, cfg); err != nil {
			wrapped := &reconciler.ExternalError{Op: "ensure service ports", Err: err}
			r.report(reconciler.Outcome{State: reconciler.StateBlocked, Err: wrapped}, time.Since(start))
			return ctrl.Result{RequeueAfter: r.RetryPeriod}, nil
		}
	}

	out := r.Engine.Run(ctx, cfg)
	r.report(out, time.Since(start))

	if out.Err != nil || out.State != reconciler.StateActive {
		return ctrl.Result{RequeueAfter: r.RetryPeriod}, nil
	}
	return ctrl.Result{RequeueAfter: r.ResyncPeriod}, nil
}

// report pushes the pass condition to every surface: log, metrics and the
// status file.
func (r *CUAgentReconciler) report(out reconciler.Outcome, elapsed time.Duration) {
	s := status.Report(out.State, out.Decision, out.Err)
	recordPass(passOutcome(out), elapsed)
	recordEffects(out)
	recordCondition(s)
	if r.StatusFile != nil {
		if err := r.StatusFile.Write(s); err != nil {
			r.Log.Error(err, "persist status file")
		}
	}
	r.Log.Info("pass finished",
		"state", string(out.State), "condition", string(s.Kind), "message", s.Message, "elapsed", elapsed)
}

// SetupWithManager registers the dispatcher. MaxConcurrentReconciles stays
// at 1: passes touch one shared container and must serialize.
func (r *CUAgentReconciler) SetupWithManager(mgr ctrl.Manager) error {
	enqueue := handler.EnqueueRequestsFromMapFunc(func(context.Context, client.Object) []reconcile.Request {
		return []reconcile.Request{{NamespacedName: types.NamespacedName{Namespace: r.Namespace, Name: requestName}}}
	})
	relationMaps := predicate.NewPredicateFuncs(func(obj client.Object) bool {
		return obj.GetNamespace() == r.Namespace && slices.Contains(r.RelationConfigMaps, obj.GetName())
	})

	b := ctrl.NewControllerManagedBy(mgr).
		Named("cu-agent").
		Watches(&corev1.ConfigMap{}, enqueue, builder.WithPredicates(relationMaps)).
		WithOptions(controller.Options{MaxConcurrentReconciles: 1})
	if r.ConfigEvents != nil {
		b = b.WatchesRawSource(source.Channel(r.ConfigEvents, enqueue))
	}
	return b.Complete(r)
}
