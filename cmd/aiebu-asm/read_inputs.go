package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

// readFilesConcurrently reads every non-empty path in paths, in
// parallel, cancelling the remaining reads as soon as one fails.
// Mirrors the errgroup.WithContext + g.Go/g.Wait shape used elsewhere
// in this ecosystem for per-file tokenization jobs: each goroutine
// writes to its own slot of a pre-sized result slice, so no mutex is
// needed to guard the writes.
func readFilesConcurrently(ctx context.Context, paths ...string) ([][]byte, error) {
	results := make([][]byte, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		if path == "" {
			continue
		}
		g.Go(func(i int, path string) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				results[i] = data
				return nil
			}
		}(i, path))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
