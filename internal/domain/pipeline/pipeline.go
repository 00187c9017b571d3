// Package pipeline composes two dependent fetches and a combiner into one
// fail-fast unit.
//
// A Pipeline runs first(in), then second(first's result), then combine. The
// second step is never issued before the first has resolved, and the first
// error aborts the run. Each step runs as a future and is awaited before the
// next one starts.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/perses/common/async"

	"github.com/okian/twostep/pkg/logger"
	"github.com/okian/twostep/pkg/metrics"
)

// Step names used in logs and metrics.
const (
	StepFirst   = "first"
	StepSecond  = "second"
	StepCombine = "combine"
)

// Recorder receives run outcomes. *metrics.Manager satisfies it.
type Recorder interface {
	RecordPipelineRun(pipeline, outcome string, durationMs float64)
	RecordStepFailure(pipeline, step string)
}

// First fetches the value the second step depends on.
type First[In, A any] func(ctx context.Context, in In) (A, error)

// Second fetches using the first step's result.
type Second[A, B any] func(ctx context.Context, a A) (B, error)

// Combine builds the final result from both fetches.
type Combine[A, B, R any] func(a A, b B) (R, error)

// Pipeline is a reusable two-step dependent fetch. It holds no per-run state
// and is safe for concurrent use.
type Pipeline[In, A, B, R any] struct {
	name     string
	first    First[In, A]
	second   Second[A, B]
	combine  Combine[A, B, R]
	logger   logger.Logger
	recorder Recorder
}

// New builds a Pipeline named name from the two fetches and the combiner.
func New[In, A, B, R any](name string, first First[In, A], second Second[A, B], combine Combine[A, B, R], opts ...Option) *Pipeline[In, A, B, R] {
	s := settings{
		logger:   logger.Discard(),
		recorder: metrics.Global(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &Pipeline[In, A, B, R]{
		name:     name,
		first:    first,
		second:   second,
		combine:  combine,
		logger:   s.logger,
		recorder: s.recorder,
	}
}

// Name returns the pipeline name.
func (p *Pipeline[In, A, B, R]) Name() string { return p.name }

// Run executes the pipeline and waits for its result.
func (p *Pipeline[In, A, B, R]) Run(ctx context.Context, in In) (R, error) {
	return p.observe(ctx, func(ctx context.Context) (R, string, error) {
		var zero R

		if err := ctx.Err(); err != nil {
			return zero, StepFirst, err
		}
		a, err := async.Async(func() (A, error) { return p.first(ctx, in) }).Await()
		if err != nil {
			return zero, StepFirst, err
		}

		if err := ctx.Err(); err != nil {
			return zero, StepSecond, err
		}
		b, err := async.Async(func() (B, error) { return p.second(ctx, a) }).Await()
		if err != nil {
			return zero, StepSecond, err
		}

		r, err := p.combine(a, b)
		if err != nil {
			return zero, StepCombine, err
		}
		return r, "", nil
	})
}

// Start launches the pipeline as a chain of futures and returns the last one.
// Awaiting it yields exactly what Run would have returned.
func (p *Pipeline[In, A, B, R]) Start(ctx context.Context, in In) async.Future[R] {
	return async.Async(func() (R, error) {
		return p.observe(ctx, func(ctx context.Context) (R, string, error) {
			// failedAt is written inside the chain and read after the final
			// Await, which orders the accesses.
			failedAt := StepFirst

			first := async.Async(func() (A, error) {
				if err := ctx.Err(); err != nil {
					return *new(A), err
				}
				return p.first(ctx, in)
			})
			second := Then(first, func(a A) (pair[A, B], error) {
				failedAt = StepSecond
				if err := ctx.Err(); err != nil {
					return pair[A, B]{}, err
				}
				b, err := p.second(ctx, a)
				return pair[A, B]{a: a, b: b}, err
			})
			result := Then(second, func(v pair[A, B]) (R, error) {
				failedAt = StepCombine
				return p.combine(v.a, v.b)
			})

			r, err := result.Await()
			if err != nil {
				return r, failedAt, err
			}
			return r, "", nil
		})
	})
}

// Then returns a future resolving to next applied to f's value. When f fails,
// next is not called and the same error is returned.
func Then[T, U any](f async.Future[T], next func(T) (U, error)) async.Future[U] {
	return async.Async(func() (U, error) {
		v, err := f.Await()
		if err != nil {
			var zero U
			return zero, err
		}
		return next(v)
	})
}

type pair[A, B any] struct {
	a A
	b B
}

// observe wraps one run with a run id, logging and metrics.
func (p *Pipeline[In, A, B, R]) observe(ctx context.Context, exec func(ctx context.Context) (R, string, error)) (R, error) {
	start := time.Now()
	log := p.logger.With(logger.String("pipeline", p.name), logger.String("run_id", uuid.NewString()))
	log.Debug(ctx, "pipeline started")

	r, step, err := exec(ctx)

	elapsed := time.Since(start)
	p.recorder.RecordPipelineRun(p.name, metrics.Outcome(err), float64(elapsed.Milliseconds()))
	if err != nil {
		p.recorder.RecordStepFailure(p.name, step)
		log.Warn(ctx, "pipeline failed", logger.String("step", step), logger.Duration("elapsed", elapsed), logger.Error(err))
		return r, err
	}
	log.Debug(ctx, "pipeline finished", logger.Duration("elapsed", elapsed))
	return r, nil
}
