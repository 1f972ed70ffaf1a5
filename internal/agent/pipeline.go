package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rahul/compileagent/internal/intent"
	"github.com/rahul/compileagent/internal/observability"
	"github.com/rahul/compileagent/internal/plan"
	"github.com/rahul/compileagent/internal/store"
)

// PlanValidator gates a plan before execution.
type PlanValidator interface {
	Validate(ctx context.Context, p *plan.Plan) error
}

// RunStore records finished runs.
type RunStore interface {
	SaveRun(ctx context.Context, r store.Run) error
}

// Source is one intent document handed to the pipeline.
type Source struct {
	Name string
	Text string
}

// Report describes a successful run.
type Report struct {
	RunID        string     `json:"run_id" yaml:"run_id"`
	Source       string     `json:"source" yaml:"source"`
	Plan         *plan.Plan `json:"plan" yaml:"plan"`
	Result       *Result    `json:"result" yaml:"result"`
	PlanDigest   string     `json:"plan_digest" yaml:"plan_digest"`
	ResultDigest string     `json:"result_digest" yaml:"result_digest"`
}

// Pipeline wires compile → validate → run. Store, Logger and Tracker are optional.
type Pipeline struct {
	Compiler  *intent.Compiler
	Validator PlanValidator
	Runtime   *Runtime
	Store     RunStore
	Logger    *observability.Logger
	Tracker   *observability.Tracker
}

func NewPipeline(c *intent.Compiler, v PlanValidator, r *Runtime) *Pipeline {
	return &Pipeline{
		Compiler:  c,
		Validator: v,
		Runtime:   r,
		Logger:    observability.Nop(),
	}
}

// Execute compiles src, validates the plan and runs it. Nothing executes unless
// validation passes. Errors are wrapped with the failing stage; the typed cause
// stays reachable through errors.As.
func (p *Pipeline) Execute(ctx context.Context, src Source) (*Report, error) {
	runID := uuid.NewString()
	ctx = WithRunID(ctx, runID)
	rec := store.Run{RunID: runID, Source: src.Name, Intent: src.Text}
	if p.Tracker != nil {
		p.Tracker.Begin()
	}

	pl, err := p.Compiler.Compile(src.Text)
	if err != nil {
		return nil, p.finish(ctx, rec, store.StatusFailed, fmt.Errorf("compile %s: %w", src.Name, err))
	}

	planDigest, err := plan.Digest(pl)
	if err != nil {
		return nil, p.finish(ctx, rec, store.StatusFailed, err)
	}
	rec.PlanDigest = planDigest
	if data, err := plan.Canonical(pl); err == nil {
		rec.PlanJSON = string(data)
	}
	p.logger().LogPlan(runID, pl.Len(), planDigest)

	if err := p.Validator.Validate(ctx, pl); err != nil {
		return nil, p.finish(ctx, rec, store.StatusRejected, fmt.Errorf("validate %s: %w", src.Name, err))
	}

	res, err := p.Runtime.Run(ctx, pl)
	if err != nil {
		var execErr *ExecutionError
		if errors.As(err, &execErr) {
			if data, mErr := json.Marshal(execErr.Completed); mErr == nil {
				rec.ResultJSON = string(data)
			}
		}
		return nil, p.finish(ctx, rec, store.StatusFailed, fmt.Errorf("run %s: %w", src.Name, err))
	}

	resultDigest, err := plan.Digest(res)
	if err != nil {
		return nil, p.finish(ctx, rec, store.StatusFailed, err)
	}
	rec.ResultDigest = resultDigest
	if data, err := plan.Canonical(res); err == nil {
		rec.ResultJSON = string(data)
	}

	if err := p.finish(ctx, rec, store.StatusSucceeded, nil); err != nil {
		return nil, err
	}
	return &Report{
		RunID:        runID,
		Source:       src.Name,
		Plan:         pl,
		Result:       res,
		PlanDigest:   planDigest,
		ResultDigest: resultDigest,
	}, nil
}

// finish logs and persists the run outcome and returns runErr. A store failure is
// only returned when the run itself succeeded.
func (p *Pipeline) finish(ctx context.Context, rec store.Run, status store.Status, runErr error) error {
	rec.Status = status
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	p.logger().LogRun(rec.RunID, rec.Source, string(status), runErr)
	if p.Tracker != nil {
		p.Tracker.End(rec.RunID, string(status))
	}

	if p.Store == nil {
		return runErr
	}
	// Record the run even when ctx was cancelled mid-way.
	if err := p.Store.SaveRun(context.WithoutCancel(ctx), rec); err != nil {
		if runErr != nil {
			p.logger().Zap().Error("failed to save run", zap.String("run_id", rec.RunID), zap.Error(err))
			return runErr
		}
		return err
	}
	return runErr
}

func (p *Pipeline) logger() *observability.Logger {
	if p.Logger == nil {
		return observability.Nop()
	}
	return p.Logger
}

// BatchResult is the outcome of one source in a batch.
type BatchResult struct {
	Source Source
	Report *Report
	Err    error
}

// ExecuteBatch runs independent sources concurrently, at most parallelism at a time
// (no limit when parallelism <= 0). Each source is still executed sequentially.
// Results are returned in source order. With failFast the first failure cancels the
// runs that have not finished and is returned as the batch error.
func (p *Pipeline) ExecuteBatch(ctx context.Context, sources []Source, parallelism int, failFast bool) ([]BatchResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}

	results := make([]BatchResult, len(sources))
	for i, src := range sources {
		g.Go(func() error {
			runCtx := ctx
			if failFast {
				runCtx = gctx
			}
			rep, err := p.Execute(runCtx, src)
			results[i] = BatchResult{Source: src, Report: rep, Err: err}
			if failFast {
				return err
			}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}
