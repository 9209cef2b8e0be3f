// Package dispatch validates requests, runs them against an open session and
// records what succeeded.
package dispatch

import (
	"context"
	"time"

	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/debug"
	"github.com/peternagy/dbquerytool/internal/performance"
	"github.com/peternagy/dbquerytool/internal/session"
	"github.com/peternagy/dbquerytool/internal/storage"
	"github.com/peternagy/dbquerytool/internal/types"
)

// Dispatcher executes requests. It holds no per-request state and is safe
// for concurrent use; serialization happens per session.
type Dispatcher struct {
	history  *storage.HistoryService
	settings *storage.SettingsService
	metrics  *performance.Service
	timeouts core.Timeouts
	observer Observer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics records every driver call in m.
func WithMetrics(m *performance.Service) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithTimeouts overrides the default query timeout.
func WithTimeouts(t core.Timeouts) Option {
	return func(d *Dispatcher) { d.timeouts = t.WithDefaults() }
}

// WithObserver reports state transitions to o.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// New creates a dispatcher recording into history and reading page_size from settings.
func New(history *storage.HistoryService, settings *storage.SettingsService, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		history:  history,
		settings: settings,
		timeouts: core.DefaultTimeouts(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// plan is a validated request, ready to run.
type plan struct {
	op     string
	target string
	entry  types.HistoryEntry
	exec   func(ctx context.Context) ([]types.Object, error)
}

// Execute validates req, runs it on sess and records it in history.
// Validation failures return a *core.ValidationError without touching the
// driver. Driver failures return a *core.DriverExecutionError and leave the
// history unchanged.
func (d *Dispatcher) Execute(ctx context.Context, sess *session.Session, req types.QueryRequest) (*types.QueryResult, error) {
	d.enter(req, StateIdle)
	d.enter(req, StateValidating)

	p, err := d.plan(sess, req)
	if err != nil {
		d.enter(req, StateValidationFailed)
		debug.LogQuery("request rejected", map[string]interface{}{
			"kind":  string(req.Kind),
			"error": err.Error(),
		})
		return nil, err
	}

	d.enter(req, StateExecuting)
	var records []types.Object
	elapsed, err := d.run(ctx, sess, req.Kind, p.op, func(ctx context.Context) error {
		var execErr error
		records, execErr = p.exec(ctx)
		return execErr
	})
	if err != nil {
		d.enter(req, StateDriverFailed)
		debug.LogQuery("request failed", map[string]interface{}{
			"kind":   string(req.Kind),
			"op":     p.op,
			"target": p.target,
			"error":  err.Error(),
		})
		return nil, &core.DriverExecutionError{Kind: req.Kind, Target: p.target, Op: p.op, Err: err}
	}

	entry := p.entry
	entry.ExecutionTime = elapsed.Seconds()
	if err := d.history.Record(req.Kind, entry); err != nil {
		debug.Warn(debug.CategoryQuery, "failed to record history", map[string]interface{}{
			"kind":  string(req.Kind),
			"error": err.Error(),
		})
	}

	d.enter(req, StateSucceeded)
	debug.LogQuery("request executed", map[string]interface{}{
		"kind":    string(req.Kind),
		"op":      p.op,
		"target":  p.target,
		"records": len(records),
		"elapsed": elapsed.String(),
	})
	return types.NewQueryResult(records, elapsed), nil
}

// run holds the session lock for the duration of fn, bounds it by the query
// timeout and times only the driver work.
func (d *Dispatcher) run(ctx context.Context, sess *session.Session, kind types.StoreKind, op string, fn func(ctx context.Context) error) (time.Duration, error) {
	var elapsed time.Duration
	err := sess.Exclusive(func() error {
		qctx, cancel := d.timeouts.QueryContext(ctx)
		defer cancel()
		start := time.Now()
		err := fn(qctx)
		elapsed = time.Since(start)
		return err
	})
	if d.metrics != nil {
		d.metrics.ObserveRequest(kind, op, elapsed, err)
	}
	return elapsed, err
}

func (d *Dispatcher) plan(sess *session.Session, req types.QueryRequest) (*plan, error) {
	if !req.Kind.Valid() {
		return nil, core.InvalidKind(req.Kind)
	}
	if sess == nil {
		return nil, &core.ValidationError{Kind: req.Kind, Field: "session", Reason: "no open session"}
	}
	if sess.Kind != req.Kind {
		return nil, &core.ValidationError{Kind: req.Kind, Field: "session", Reason: "session is connected to " + string(sess.Kind)}
	}
	if req.Kind == types.KindMongo {
		return d.planDocument(sess, req)
	}
	return d.planKeyValue(sess, req)
}

func (d *Dispatcher) enter(req types.QueryRequest, s State) {
	if d.observer != nil {
		d.observer(req, s)
	}
}

func (d *Dispatcher) pageSize() int64 {
	if d.settings == nil {
		return types.DefaultPageSize
	}
	return int64(d.settings.Get().PageSize())
}
