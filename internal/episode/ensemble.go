package episode

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Factory builds a fresh runner for one episode of an ensemble.
type Factory func(seed int64) (*Runner, error)

type Ensemble struct {
	build     Factory
	numRuns   int
	seedStart int64
	parallel  int
}

func NewEnsemble(build Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// SetParallelism bounds concurrent episodes; n <= 0 means unbounded.
func (e *Ensemble) SetParallelism(n int) { e.parallel = n }

// Run plays numRuns episodes, episode i seeded seedStart+i. Results are
// indexed by episode. The first error cancels the remaining episodes.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if e.numRuns <= 0 {
		return nil, fmt.Errorf("%w: ensemble needs at least one run, got %d", ErrInvalidConfig, e.numRuns)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.parallel > 0 {
		g.SetLimit(e.parallel)
	}

	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			seed := e.seedStart + int64(idx)
			r, err := e.build(seed)
			if err != nil {
				return fmt.Errorf("build episode %d (seed %d): %w", idx, seed, err)
			}
			res, err := r.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("episode %d (seed %d): %w", idx, seed, err)
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
