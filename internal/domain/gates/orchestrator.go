package gates

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdidvp/kraftgate/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Defaults for gate execution.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxParallel = 4
)

// EvalFunc evaluates a single gate.
type EvalFunc func(ctx context.Context, id domain.GateID, in *Input) (domain.GateResult, error)

// Orchestrator runs the gates in dependency order with bounded parallelism
// and an independent timeout per gate.
type Orchestrator struct {
	graph       Graph
	timeout     time.Duration
	maxParallel int
	eval        EvalFunc
	logger      *slog.Logger
}

type Option func(*Orchestrator)

func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithMaxParallel(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxParallel = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithGraph replaces the static dependency graph.
func WithGraph(g Graph) Option {
	return func(o *Orchestrator) { o.graph = g }
}

// WithEvaluator replaces the gate dispatch.
func WithEvaluator(fn EvalFunc) Option {
	return func(o *Orchestrator) { o.eval = fn }
}

func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		graph:       DefaultGraph(),
		timeout:     DefaultTimeout,
		maxParallel: DefaultMaxParallel,
		eval:        Evaluate,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run evaluates every gate in the graph and returns one result per gate in
// execution order. The only error is a configuration error, returned before
// any gate runs.
//
// A gate starts only after all its predecessors have completed. Dependents
// of a timed-out, errored or skipped gate are skipped. Cancelling ctx stops
// new gates from starting and marks them skipped; gates already running
// finish under their own timeout. Pattern compliance is the root of the
// graph and always produces an evaluated result.
func (o *Orchestrator) Run(ctx context.Context, in *Input) ([]domain.GateResult, error) {
	order, err := o.graph.Order()
	if err != nil {
		o.logger.Error("invalid gate graph", "error", err)
		return nil, err
	}

	pos := make(map[domain.GateID]int, len(order))
	done := make([]chan struct{}, len(order))
	for i, id := range order {
		pos[id] = i
		done[i] = make(chan struct{})
	}
	results := make([]domain.GateResult, len(order))

	var g errgroup.Group
	g.SetLimit(o.maxParallel)
	for i, id := range order {
		g.Go(func() error {
			defer close(done[i])
			for _, dep := range o.graph[id] {
				<-done[pos[dep]]
			}
			results[i] = o.runOne(ctx, id, in, results, pos)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// runOne reads predecessor results only after their done channels close.
func (o *Orchestrator) runOne(ctx context.Context, id domain.GateID, in *Input, results []domain.GateResult, pos map[domain.GateID]int) domain.GateResult {
	if ctx.Err() != nil && id != domain.GatePatternCompliance {
		o.logger.Info("gate skipped", "gate", id, "reason", domain.SkipCancelled)
		return domain.SkipResult(id, domain.SkipCancelled, "run cancelled before gate started")
	}
	for _, dep := range o.graph[id] {
		if r := results[pos[dep]]; !r.Determinate() {
			o.logger.Info("gate skipped", "gate", id, "reason", domain.SkipDependency, "dependency", dep)
			res := domain.SkipResult(id, domain.SkipDependency, fmt.Sprintf("dependency %s is indeterminate", dep))
			res.Details = map[string]any{"dependency": string(dep), "dependency_status": string(r.Status)}
			return res
		}
	}

	start := time.Now()
	o.logger.Debug("gate started", "gate", id)
	res := o.invoke(ctx, id, in)
	res.GateID = id
	res.StartedAt = start
	res.CompletedAt = time.Now()
	res.ExecutionTime = res.CompletedAt.Sub(start)

	level := slog.LevelInfo
	if res.TimedOut || res.Error != "" {
		level = slog.LevelWarn
	}
	o.logger.Log(ctx, level, "gate finished",
		"gate", id,
		"status", res.Status,
		"score", res.Score,
		"duration", res.ExecutionTime,
	)
	return res
}

// invoke runs the evaluator under a timeout detached from ctx cancellation,
// converting panics and errors into Fail results.
func (o *Orchestrator) invoke(ctx context.Context, id domain.GateID, in *Input) domain.GateResult {
	gateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
	defer cancel()

	ch := make(chan domain.GateResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- domain.ErroredResult(id, fmt.Errorf("panic: %v", r))
			}
		}()
		res, err := o.eval(gateCtx, id, in)
		if err != nil {
			ch <- domain.ErroredResult(id, err)
			return
		}
		ch <- res
	}()

	select {
	case res := <-ch:
		return res
	case <-gateCtx.Done():
		return domain.TimeoutResult(id, o.timeout)
	}
}
