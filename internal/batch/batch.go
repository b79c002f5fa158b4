// Package batch runs independent per-file jobs with bounded parallelism.
package batch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit is the parallelism used when the caller passes limit <= 0.
const DefaultLimit = 4

// Result is the outcome for the item at Index.
type Result[O any] struct {
	Index int
	Value O
	Err   error
}

// Run calls fn for every item, at most limit at a time, and returns one
// Result per item in input order. A failing item does not stop the others;
// the returned error joins every item error and is nil when all succeeded.
// Items not yet started when ctx is cancelled fail with ctx.Err().
func Run[I, O any](ctx context.Context, items []I, limit int, fn func(ctx context.Context, item I) (O, error)) ([]Result[O], error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	results := make([]Result[O], len(items))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		results[i].Index = i
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			v, err := fn(ctx, item)
			results[i].Value = v
			results[i].Err = err
			return nil
		})
	}
	g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", r.Index, r.Err))
		}
	}
	return results, errors.Join(errs...)
}
