package codes

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StartCleanup runs store.Cleanup every interval until ctx is cancelled. The
// returned channel is closed once the loop has exited.
func StartCleanup(ctx context.Context, store Store, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := store.Cleanup(ctx)
				if err != nil {
					log.Err(err).Msg("authorization code cleanup failed")
					continue
				}
				if removed > 0 {
					log.Debug().Int("removed", removed).Msg("expired authorization codes removed")
				}
			}
		}
	}()
	return done
}
