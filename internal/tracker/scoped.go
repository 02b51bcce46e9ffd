package tracker

import (
	"context"

	"ecotrace/internal/config"
	"ecotrace/internal/logger"
)

// Track runs fn inside a free-running session and guarantees Stop on
// every exit path: normal return, error, or panic.
func Track(ctx context.Context, cfg *config.Config, log logger.Logger, fn func(ctx context.Context) error) (err error) {
	t, err := New(cfg, log)
	if err != nil {
		return err
	}

	if err = t.Start(); err != nil {
		return err
	}

	defer func() {
		if stopErr := t.Stop(); err == nil {
			err = stopErr
		}
	}()

	return fn(ctx)
}
