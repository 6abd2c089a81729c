// Package engine is the apply executor: it walks declarations in dependency
// order, substitutes references with resolved outputs, and materializes each
// declaration through its provider.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/v2kk/stackctl/internal/graph"
	"github.com/v2kk/stackctl/internal/provider"
	"github.com/v2kk/stackctl/internal/resource"
	"github.com/v2kk/stackctl/internal/stack"
	"github.com/v2kk/stackctl/internal/state"
)

// Engine applies and destroys stacks.
type Engine struct {
	providers *provider.Registry
	store     *state.Store
	logger    *slog.Logger
	opts      Options
}

// New constructs an engine over the given provider registry and state store.
func New(providers *provider.Registry, store *state.Store, logger *slog.Logger, opts Options) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &Engine{providers: providers, store: store, logger: logger, opts: opts}
}

// Apply materializes the stack's declarations in dependency order. Graph
// errors (cycles, dangling references) surface before any provider call. A
// failed declaration halts only its transitive dependents; independent
// declarations continue to apply. The returned Result covers every
// declaration; the returned error covers run infrastructure only (state
// persistence), not per-declaration failures — check Result.Err for those.
func (e *Engine) Apply(ctx context.Context, stk *stack.Stack) (*Result, error) {
	g, err := graph.Build(stk.Declarations())
	if err != nil {
		return nil, err
	}
	order, err := g.Order()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	e.logger.Info("applying stack", "stack", stk.Name(), "declarations", len(order), "run", runID, "parallelism", e.opts.Parallelism)

	var mu sync.Mutex
	outcomes := make(map[string]*Outcome, len(order))
	outcomeOf := func(key string) *Outcome {
		mu.Lock()
		defer mu.Unlock()
		return outcomes[key]
	}

	// One goroutine per declaration, submitted in topological order. A
	// goroutine waits for its dependencies' done channels before running, so
	// each declaration is applied at most once and only after everything it
	// references has settled. Submission order guarantees a dependency's
	// goroutine exists before any dependent waits on it.
	done := make(map[string]chan struct{}, len(order))
	for _, d := range order {
		done[d.Key()] = make(chan struct{})
	}

	eg := new(errgroup.Group)
	eg.SetLimit(e.opts.Parallelism)

	for _, d := range order {
		eg.Go(func() error {
			defer close(done[d.Key()])
			for _, dep := range g.Dependencies(d.Key()) {
				<-done[dep]
			}
			o := e.applyOne(ctx, g, stk.Name(), d, runID, outcomeOf)
			mu.Lock()
			outcomes[d.Key()] = o
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	res := &Result{RunID: runID, Stack: stk.Name()}
	for _, d := range order {
		res.Outcomes = append(res.Outcomes, *outcomes[d.Key()])
	}

	// Partial progress is preserved even when declarations failed.
	if err := e.store.Save(); err != nil {
		return res, err
	}
	return res, nil
}

// applyOne materializes a single declaration. Dependencies are settled by the
// time it runs.
func (e *Engine) applyOne(ctx context.Context, g *graph.Graph, stackName string, d *resource.Declaration, runID string, outcomeOf func(string) *Outcome) *Outcome {
	o := &Outcome{Key: d.Key(), Kind: d.Kind, Name: d.Name}

	for _, dep := range g.Dependencies(d.Key()) {
		if depOutcome := outcomeOf(dep); depOutcome == nil || depOutcome.Status != resource.StatusResolved {
			d.MarkSkipped()
			o.Status = resource.StatusSkipped
			o.SkippedBecause = dep
			e.logger.Warn("skipping declaration, dependency did not resolve", "declaration", d.Key(), "dependency", dep)
			return o
		}
	}

	if !d.BeginResolving() {
		o.Status = d.Status()
		o.Err = &ApplyError{Key: d.Key(), Err: fmt.Errorf("declaration is %s, refusing second apply attempt", d.Status())}
		return o
	}

	resolved, err := resource.ResolveProperties(d.Properties, func(ref resource.Reference) (string, error) {
		src := outcomeOf(ref.SourceKey())
		if src == nil {
			return "", fmt.Errorf("reference %s has no resolved source", ref)
		}
		v, ok := src.Outputs[ref.Attribute]
		if !ok {
			return "", fmt.Errorf("declaration %s produced no output %q", ref.SourceKey(), ref.Attribute)
		}
		return v, nil
	})
	if err != nil {
		return e.fail(o, d, &ApplyError{Key: d.Key(), Err: err})
	}

	prov, err := e.providers.ForKind(d.Kind)
	if err != nil {
		return e.fail(o, d, &ApplyError{Key: d.Key(), Err: err})
	}

	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	hash, err := state.HashInputs(resolved)
	if err != nil {
		return e.fail(o, d, &ApplyError{Key: d.Key(), Err: err})
	}

	if d.ReadOnly {
		// Data sources are refreshed on every run; resolving them never
		// mutates provider state.
		outputs, err := prov.Read(callCtx, d.Kind, d.Name, resolved)
		if err != nil {
			return e.fail(o, d, &ApplyError{Key: d.Key(), Err: err})
		}
		o.Action = ActionRead
		o.Outputs = outputs
		o.Status = resource.StatusResolved
		d.MarkResolved(outputs)
		e.store.Put(stackName, d.Key(), &state.Record{
			Kind: d.Kind.String(), Name: d.Name, InputHash: hash,
			Outputs: outputs, AppliedAt: time.Now().UTC(), RunID: runID,
		})
		e.logger.Debug("declaration read", "declaration", d.Key())
		return o
	}

	rec, exists := e.store.Get(stackName, d.Key())

	if exists && rec.InputHash == hash {
		o.Action = ActionNoop
		o.ID = rec.ID
		o.Outputs = rec.Outputs
		o.Status = resource.StatusResolved
		d.MarkResolved(rec.Outputs)
		e.logger.Debug("declaration unchanged", "declaration", d.Key(), "id", rec.ID)
		return o
	}

	o.Action = ActionCreate
	if exists {
		// Inputs changed: replace by deleting the old resource first.
		o.Action = ActionReplace
		if err := prov.Delete(callCtx, d.Kind, rec.ID, outputsAsProperties(rec.Outputs)); err != nil {
			return e.fail(o, d, &ApplyError{Key: d.Key(), Err: fmt.Errorf("delete for replacement: %w", err)})
		}
		e.store.Delete(stackName, d.Key())
	}

	created, err := prov.Create(callCtx, d.Kind, d.Name, resolved)
	if err != nil {
		return e.fail(o, d, &ApplyError{Key: d.Key(), Err: err})
	}

	o.ID = created.ID
	o.Outputs = created.Outputs
	o.Status = resource.StatusResolved
	d.MarkResolved(created.Outputs)
	e.store.Put(stackName, d.Key(), &state.Record{
		Kind: d.Kind.String(), Name: d.Name, ID: created.ID, InputHash: hash,
		Outputs: created.Outputs, AppliedAt: time.Now().UTC(), RunID: runID,
	})
	e.logger.Info("declaration resolved", "declaration", d.Key(), "action", o.Action, "id", created.ID)
	return o
}

// callContext bounds a single provider call with the configured timeout.
func (e *Engine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.ApplyTimeout > 0 {
		return context.WithTimeout(ctx, e.opts.ApplyTimeout)
	}
	return ctx, func() {}
}

func (e *Engine) fail(o *Outcome, d *resource.Declaration, err error) *Outcome {
	d.MarkFailed()
	o.Status = resource.StatusFailed
	o.Err = err
	e.logger.Error("declaration failed", "declaration", d.Key(), "error", err)
	return o
}

// Destroy deletes the stack's recorded resources in reverse dependency order.
// Declarations without a state record and read-only declarations have nothing
// to delete. Deletion is best-effort: a failed delete is reported and the walk
// continues.
func (e *Engine) Destroy(ctx context.Context, stk *stack.Stack) (*Result, error) {
	g, err := graph.Build(stk.Declarations())
	if err != nil {
		return nil, err
	}
	order, err := g.Order()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	e.logger.Info("destroying stack", "stack", stk.Name(), "declarations", len(order), "run", runID)

	res := &Result{RunID: runID, Stack: stk.Name()}
	for i := len(order) - 1; i >= 0; i-- {
		d := order[i]
		o := Outcome{Key: d.Key(), Kind: d.Kind, Name: d.Name, Action: ActionDelete}

		rec, exists := e.store.Get(stk.Name(), d.Key())
		if d.ReadOnly || !exists || rec.ID == "" {
			// Nothing materialized for this declaration; drop any stale
			// read-only record so the next apply starts clean.
			e.store.Delete(stk.Name(), d.Key())
			o.Action = ActionNoop
			o.Status = resource.StatusResolved
			res.Outcomes = append(res.Outcomes, o)
			continue
		}

		prov, err := e.providers.ForKind(d.Kind)
		if err != nil {
			o.Status = resource.StatusFailed
			o.Err = &ApplyError{Key: d.Key(), Err: err}
			res.Outcomes = append(res.Outcomes, o)
			continue
		}

		callCtx, cancel := e.callContext(ctx)
		err = prov.Delete(callCtx, d.Kind, rec.ID, outputsAsProperties(rec.Outputs))
		cancel()
		if err != nil {
			o.Status = resource.StatusFailed
			o.Err = &ApplyError{Key: d.Key(), Err: err}
			e.logger.Error("delete failed", "declaration", d.Key(), "id", rec.ID, "error", err)
			res.Outcomes = append(res.Outcomes, o)
			continue
		}

		e.store.Delete(stk.Name(), d.Key())
		o.ID = rec.ID
		o.Status = resource.StatusResolved
		e.logger.Info("resource deleted", "declaration", d.Key(), "id", rec.ID)
		res.Outcomes = append(res.Outcomes, o)
	}

	if err := e.store.Save(); err != nil {
		return res, err
	}
	return res, nil
}

// outputsAsProperties exposes stored outputs to providers during deletion,
// for kinds whose delete call needs more than the ID (e.g. subnet removal
// needs the parent network).
func outputsAsProperties(outputs resource.Outputs) resource.Properties {
	props := make(resource.Properties, len(outputs))
	for k, v := range outputs {
		props[k] = v
	}
	return props
}
