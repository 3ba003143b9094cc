package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/factstack-labs/factgraph/internal/eval"
	"github.com/factstack-labs/factgraph/pkg/formula"
	"golang.org/x/sync/errgroup"
)

// Computed is one eagerly evaluated derived fact.
type Computed struct {
	Key     formula.FactKey
	Numeric float64
	Inputs  []eval.Input
}

// ComputeAll eagerly evaluates every derived fact. Facts within one
// execution level share no dependencies on each other, so each level runs
// in parallel; the evaluator's memo cache is concurrency-safe and keeps
// the total work linear in the number of derived facts. Results are
// returned sorted by key.
func (e *Engine) ComputeAll(ctx context.Context) ([]Computed, error) {
	if e.graph == nil {
		if err := e.Validate(); err != nil {
			return nil, err
		}
	}

	levels, err := e.graph.ExecutionLevels()
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		results []Computed
	)

	for _, level := range levels {
		g, _ := errgroup.WithContext(ctx)
		for _, key := range level {
			f, ok := e.store.Lookup(key)
			if !ok || !f.Derived() {
				continue
			}

			g.Go(func() error {
				res, err := e.eval.ResolveFact(key)
				if err != nil {
					return err
				}
				mu.Lock()
				results = append(results, Computed{Key: key, Numeric: res.Numeric, Inputs: res.Inputs})
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Key.String() < results[j].Key.String()
	})
	e.logger.Info("computed derived facts", "count", len(results))
	return results, nil
}
