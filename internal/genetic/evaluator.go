package genetic

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

// UnfitROI is the score assigned to infeasible contracts. The search has to
// tolerate individuals wandering into dead compositions, so a missing
// outcome or a zero cost degrades the individual instead of aborting the
// generation.
const UnfitROI = -100.0

// Scorer computes one contract's fitness. tradeup.Evaluator is the
// production implementation.
type Scorer interface {
	Score(c domain.Contract) (float64, error)
}

// EvalStats are cumulative evaluation counters for a run.
type EvalStats struct {
	Evaluations int64 `json:"evaluations"`
	Unfit       int64 `json:"unfit"`
}

// BatchEvaluator scores a whole population. scores[i] always corresponds to
// contracts[i], whatever the evaluation order; engines stay agnostic to the
// concurrency primitive behind the interface.
type BatchEvaluator interface {
	EvaluateBatch(ctx context.Context, contracts []domain.Contract) ([]float64, error)
	Stats() EvalStats
}

// scoreOne maps domain infeasibility to UnfitROI and lets every other error
// through to abort the batch.
func scoreOne(scorer Scorer, c domain.Contract, unfit *atomic.Int64) (float64, error) {
	roi, err := scorer.Score(c)
	if err == nil {
		return roi, nil
	}
	var miss *domain.MissingOutcomeError
	if errors.As(err, &miss) || errors.Is(err, domain.ErrZeroCost) {
		unfit.Add(1)
		return UnfitROI, nil
	}
	return 0, err
}

// SerialEvaluator scores contracts one by one on the calling goroutine. The
// island engine uses it: islands are the parallel unit there, one goroutine
// each, so nesting another pool inside would only add scheduling churn.
// Concurrent EvaluateBatch calls are safe; the counters are atomic.
type SerialEvaluator struct {
	scorer      Scorer
	evaluations atomic.Int64
	unfit       atomic.Int64
}

// NewSerialEvaluator returns a serial BatchEvaluator over scorer.
func NewSerialEvaluator(scorer Scorer) *SerialEvaluator {
	return &SerialEvaluator{scorer: scorer}
}

// EvaluateBatch scores every contract in order.
func (e *SerialEvaluator) EvaluateBatch(ctx context.Context, contracts []domain.Contract) ([]float64, error) {
	scores := make([]float64, len(contracts))
	for i, c := range contracts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		roi, err := scoreOne(e.scorer, c, &e.unfit)
		if err != nil {
			return nil, fmt.Errorf("genetic: contract %d: %w", i, err)
		}
		scores[i] = roi
	}
	e.evaluations.Add(int64(len(contracts)))
	return scores, nil
}

// Stats returns the cumulative counters.
func (e *SerialEvaluator) Stats() EvalStats {
	return EvalStats{Evaluations: e.evaluations.Load(), Unfit: e.unfit.Load()}
}

// ParallelEvaluator splits a population into contiguous batches, one per
// worker goroutine. Workers write into disjoint ranges of a shared score
// slice, so results are index-aligned without any re-sorting, and the only
// blocking point is the dispatch-and-join barrier per batch.
type ParallelEvaluator struct {
	scorer      Scorer
	workers     int
	evaluations atomic.Int64
	unfit       atomic.Int64
}

// NewParallelEvaluator returns a parallel BatchEvaluator. workers <= 0
// defaults to the CPU count.
func NewParallelEvaluator(scorer Scorer, workers int) *ParallelEvaluator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &ParallelEvaluator{scorer: scorer, workers: workers}
}

// EvaluateBatch scores the population across the worker pool. The first
// non-domain error cancels the remaining workers and fails the batch.
func (e *ParallelEvaluator) EvaluateBatch(ctx context.Context, contracts []domain.Contract) ([]float64, error) {
	n := len(contracts)
	if n == 0 {
		return nil, nil
	}
	workers := e.workers
	if workers > n {
		workers = n
	}

	scores := make([]float64, n)
	batch := n / workers

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * batch
		end := start + batch
		if w == workers-1 {
			end = n
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				roi, err := scoreOne(e.scorer, contracts[i], &e.unfit)
				if err != nil {
					return fmt.Errorf("genetic: contract %d: %w", i, err)
				}
				scores[i] = roi
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.evaluations.Add(int64(n))
	return scores, nil
}

// Stats returns the cumulative counters.
func (e *ParallelEvaluator) Stats() EvalStats {
	return EvalStats{Evaluations: e.evaluations.Load(), Unfit: e.unfit.Load()}
}
