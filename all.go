package rpm

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// OpenAll opens each path and calls fn with the package, processing several
// packages concurrently. Each package is closed after fn returns. fn must be
// safe for concurrent use; the packages it receives are not shared.
//
// The first error cancels the context passed to the remaining calls and is
// returned once all workers stop.
func OpenAll(ctx context.Context, paths []string, fn func(ctx context.Context, path string, pkg *Package) error, opts ...Option) error {
	var cfg openConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	workers := cfg.concurrency
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(paths))

	pathCh := make(chan string)
	eg, ctx := errgroup.WithContext(ctx)

	for range workers {
		eg.Go(func() error {
			for path := range pathCh {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := openOne(ctx, path, fn, opts); err != nil {
					return err
				}
			}
			return nil
		})
	}

	eg.Go(func() error {
		defer close(pathCh)
		for _, path := range paths {
			select {
			case pathCh <- path:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	return eg.Wait()
}

func openOne(ctx context.Context, path string, fn func(context.Context, string, *Package) error, opts []Option) error {
	pkg, err := OpenFile(path, opts...)
	if err != nil {
		return err
	}
	defer pkg.Close()
	if err := fn(ctx, path, pkg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
