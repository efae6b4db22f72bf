// Package reconciler holds the control loop core: one pass takes the
// current options, relation data and workload state, and converges the
// container on them.
package reconciler

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/go-logr/logr"

	"github.com/thc1006/oai-ran-cu-agent/internal/cuconfig"
	"github.com/thc1006/oai-ran-cu-agent/internal/netattach"
	"github.com/thc1006/oai-ran-cu-agent/internal/readiness"
	"github.com/thc1006/oai-ran-cu-agent/internal/relations"
	"github.com/thc1006/oai-ran-cu-agent/internal/render"
	"github.com/thc1006/oai-ran-cu-agent/internal/workload"
)

// State is the pass outcome position in the Blocked -> Configuring ->
// Active machine. Failures surface as Blocked plus the absorbed error.
type State string

const (
	StateBlocked     State = "blocked"
	StateConfiguring State = "configuring"
	StateActive      State = "active"
)

// Outcome is what one pass produced: the resulting state, the gate decision
// (when the gate ran), the absorbed error (when a step failed) and the side
// effects the pass performed.
type Outcome struct {
	State    State
	Decision readiness.Decision
	Err      error

	// Restarted reports that the pass wrote new configuration and bounced
	// the service.
	Restarted bool
	// Publishes counts the outbound relation payloads actually written.
	Publishes int
}

// Engine runs reconciliation passes. It is not safe for parallel passes;
// the surrounding dispatcher serializes invocations and coalesces events
// that arrive mid-pass.
type Engine struct {
	Workload  workload.Runtime
	Networks  netattach.Provider
	Relations relations.Exchange
	Log       logr.Logger

	// GNBName identifies this CU towards the rest of the RAN.
	GNBName string
	// ConfigMount is the storage directory the rendered file lives in.
	ConfigMount string
	// ConfigFilePath is the rendered file location inside the container.
	ConfigFilePath string

	// appliedHash is the hash of the last configuration this engine wrote
	// and activated. Owned exclusively by the engine.
	appliedHash string
	// bootstrapped flips after the first pass has had the chance to adopt
	// configuration already present in the container, so an agent restart
	// does not bounce a correctly-configured workload.
	bootstrapped  bool
	versionLogged bool
}

// Run executes one reconciliation pass. Every pass walks the full pipeline;
// there is no shortcut for an already-active workload because inputs may
// have changed silently.
func (e *Engine) Run(ctx context.Context, cfg *cuconfig.Config) Outcome {
	attachments := netattach.Resolve(cfg)

	// Attachment resources are declared before the gate: creating them has
	// no workload side effects and the gate observes their realization.
	if err := e.Networks.Ensure(ctx, attachments); err != nil {
		return e.fail(&ExternalError{Op: "ensure network attachments", Err: err}, readiness.Decision{})
	}

	obs, err := e.observe(ctx, attachments)
	if err != nil {
		return e.fail(err, readiness.Decision{})
	}
	decision := readiness.Evaluate(obs)
	if !decision.MayConfigure {
		e.Log.Info("preconditions unmet", "reasons", decision.Reasons)
		return Outcome{State: StateBlocked, Decision: decision}
	}
	e.Log.V(1).Info("preconditions met", "state", StateConfiguring)

	f1req, err := e.Relations.F1RequirerData(ctx)
	if err != nil {
		return e.fail(&ExternalError{Op: "read f1 requirer data", Err: err}, decision)
	}

	content, err := render.Config(render.Input{
		GNBName:     e.GNBName,
		Options:     cfg,
		Attachments: attachments,
		Core:        obs.CoreData,
		DUF1Port:    relations.DUF1Port(f1req),
	})
	if err != nil {
		return e.fail(err, decision)
	}

	restarted, err := e.apply(ctx, content)
	if err != nil {
		return e.fail(err, decision)
	}

	published, err := e.publish(ctx, cfg)
	if err != nil {
		return e.fail(err, decision)
	}

	e.logVersion(ctx)
	return Outcome{State: StateActive, Decision: decision, Restarted: restarted, Publishes: published}
}

// observe gathers the gate's inputs. Storage can only be observed through
// the container runtime, so an unreachable runtime reads as both workload
// and storage unready rather than as a pass failure.
func (e *Engine) observe(ctx context.Context, attachments []netattach.Attachment) (readiness.Observation, error) {
	var obs readiness.Observation

	obs.WorkloadReady = e.Workload.Ready(ctx)
	if obs.WorkloadReady {
		ready, err := e.Workload.FileExists(ctx, e.ConfigMount)
		if err != nil {
			return obs, &ExternalError{Op: "check config storage", Err: err}
		}
		obs.StorageReady = ready
	}

	missing, err := e.Networks.Missing(ctx, attachments)
	if err != nil {
		return obs, &ExternalError{Op: "observe network attachments", Err: err}
	}
	obs.MissingAttachments = missing

	raw, err := e.Relations.CoreNetworkData(ctx)
	if err != nil {
		return obs, &ExternalError{Op: "read core network data", Err: err}
	}
	obs.CoreData, obs.CoreDataErr = relations.ParseCoreData(raw)
	return obs, nil
}

// apply converges the container on the rendered content and reports whether
// it restarted the service. The applied hash is recorded only once both the
// write and the restart have succeeded, so a failure in between leaves the
// next pass to re-attempt both.
func (e *Engine) apply(ctx context.Context, content []byte) (bool, error) {
	hash := contentHash(content)

	if !e.bootstrapped {
		e.bootstrapped = true
		if current, err := e.Workload.ReadFile(ctx, e.ConfigFilePath); err == nil && bytes.Equal(current, content) {
			e.Log.Info("adopted configuration already in container", "hash", hash[:12])
			e.appliedHash = hash
		}
	}

	if hash == e.appliedHash {
		if err := e.Workload.EnsureService(ctx, false); err != nil {
			return false, &ExternalError{Op: "ensure workload service", Err: err}
		}
		e.Log.V(1).Info("configuration unchanged", "hash", hash[:12])
		return false, nil
	}

	if err := e.Workload.WriteFile(ctx, e.ConfigFilePath, content); err != nil {
		return false, &ExternalError{Op: "write workload config", Err: err}
	}
	e.Log.Info("wrote workload configuration", "path", e.ConfigFilePath, "hash", hash[:12])
	if err := e.Workload.EnsureService(ctx, true); err != nil {
		return false, &ExternalError{Op: "restart workload service", Err: err}
	}
	e.appliedHash = hash
	return true, nil
}

// publish pushes the outbound payloads and counts the writes that actually
// happened; unchanged payloads are deduped by the exchange.
func (e *Engine) publish(ctx context.Context, cfg *cuconfig.Config) (int, error) {
	writes := 0
	wrote, err := e.Relations.PublishF1(ctx, relations.BuildF1Data(cfg))
	if err != nil {
		return writes, &ExternalError{Op: "publish f1 data", Err: err}
	}
	if wrote {
		writes++
	}
	id := relations.GNBIdentity{Name: e.GNBName, TAC: cfg.TAC}
	wrote, err = e.Relations.PublishGNBIdentity(ctx, id)
	if err != nil {
		return writes, &ExternalError{Op: "publish gnb identity", Err: err}
	}
	if wrote {
		writes++
	}
	return writes, nil
}

func (e *Engine) fail(err error, decision readiness.Decision) Outcome {
	e.Log.Error(err, "reconciliation pass failed")
	return Outcome{State: StateBlocked, Decision: decision, Err: err}
}

func (e *Engine) logVersion(ctx context.Context) {
	if e.versionLogged {
		return
	}
	version, err := e.Workload.Version(ctx)
	if err != nil {
		return
	}
	e.Log.Info("workload active", "version", version)
	e.versionLogged = true
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
