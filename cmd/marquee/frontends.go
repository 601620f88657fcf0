package main

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vadimtrunov/marquee/internal/core"
)

// runFrontends starts every frontend and blocks until all of them return.
// The first failure cancels the others.
func runFrontends(ctx context.Context, logger *slog.Logger, frontends ...core.Frontend) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range frontends {
		g.Go(func() error {
			logger.Info("frontend starting", slog.String("frontend", f.Name()))
			if err := f.Start(gctx); err != nil {
				return fmt.Errorf("%s: %w", f.Name(), err)
			}
			logger.Info("frontend stopped", slog.String("frontend", f.Name()))
			return nil
		})
	}
	return g.Wait()
}
