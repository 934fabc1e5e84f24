package meshcache

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Prefetch replays every committed entry among the given contexts,
// running up to WithPrefetchConcurrency replays in parallel. Contexts
// with no committed entry are skipped silently; the first replay error
// cancels the remaining work and is returned.
//
// Each context's sinks are invoked from the goroutine replaying that
// context, so sinks shared across contexts must be concurrency-safe.
func (c *Cache) Prefetch(ctx context.Context, contexts ...BuildContext) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.prefetchWorkers)
	for _, bc := range contexts {
		bc := bc
		eg.Go(func() error {
			_, err := c.Fetch(ctx, bc)
			return err
		})
	}
	return eg.Wait()
}
