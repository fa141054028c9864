package emulated

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/go-libdesugar/descriptor"
)

// Planner resolves many classes concurrently over one Resolver.
type Planner struct {
	resolver *Resolver
	workers  int
}

// NewPlanner creates a Planner running at most workers resolutions at a
// time. A non-positive count uses GOMAXPROCS.
func NewPlanner(r *Resolver, workers int) *Planner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Planner{resolver: r, workers: workers}
}

// ResolveAll returns one plan per class, index-aligned with classes. Classes
// that fail have a nil plan, and their errors (every unresolved diamond
// among them) are joined into the returned error so callers can report all
// of them before aborting. Cancelling ctx stops scheduling further classes
// and returns the context error.
func (p *Planner) ResolveAll(ctx context.Context, classes []descriptor.TypeName) ([]*ForwardingPlan, error) {
	plans := make([]*ForwardingPlan, len(classes))
	errs := make([]error, len(classes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, class := range classes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plans[i], errs[i] = p.resolver.Resolve(class)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plans, errors.Join(errs...)
}
