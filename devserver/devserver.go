package devserver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"labyrinth/grid"
)

// Run starts trainer and an HTTP/websocket Server publishing its progress
// over maze, and blocks until both have returned: the server stops when ctx
// is cancelled or either fails, the trainer once its training run has
// finished (see Trainer.Run). This is the
// composition cmd/labyrinth uses to back its "serve" mode.
func Run(ctx context.Context, addr string, maze *grid.Grid, trainer *Trainer) error {
	server := NewServer(addr, maze, trainer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := trainer.Run(gctx)
		return err
	})
	g.Go(func() error {
		return server.Serve(gctx)
	})

	return g.Wait()
}
