package bootstrap

import (
	"context"
	"errors"

	"go-audit-relay/internal/logging"
)

// Shutdown stops intake first, then abandons in-flight removals, then stops
// the local surfaces. Records still waiting on the reconciler are lost.
func Shutdown(ctx context.Context, c *Components) error {
	logging.Info("Starting graceful shutdown...")
	var errs []error

	if c.Session != nil {
		logging.Info("Closing Discord session...")
		if err := c.Session.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.cancel != nil {
		c.cancel()
	}

	if c.Watchdog != nil {
		logging.Info("Stopping watchdog...")
		c.Watchdog.Stop()
	}

	if c.Health != nil {
		logging.Info("Stopping health server...")
		if err := c.Health.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		if c.healthDone != nil {
			select {
			case <-c.healthDone:
			case <-ctx.Done():
				errs = append(errs, ctx.Err())
			}
		}
	}

	logging.Info("Graceful shutdown complete")
	if logging.GlobalLogger != nil {
		if err := logging.GlobalLogger.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
