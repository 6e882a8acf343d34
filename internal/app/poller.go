package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/five82/channelsync/internal/paging"
)

const (
	maxBackoff      = 30 * time.Second
	refreshParallel = 2
)

// StartPoller launches a background goroutine that revalidates every
// requested page at the given cadence. Consecutive failures stretch the wait
// up to maxBackoff. It returns immediately; a non-positive interval disables
// polling. The returned channel closes once the goroutine has exited after
// ctx is cancelled.
func StartPoller(ctx context.Context, ctrl *paging.Controller, interval time.Duration, logger zerolog.Logger) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}
	log := logger.With().Str("component", "poller").Logger()
	go func() {
		defer close(done)
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			failures := refresh(ctx, ctrl, log)
			wait := calculateBackoff(failures, interval)
			if failures > 0 {
				log.Debug().Int("failures", failures).Dur("next", wait).Msg("backing off")
			}
			timer.Reset(wait)
		}
	}()
	return done
}

// refresh fetches the requested pages of the current view, or the first page
// when nothing was requested yet, and returns the consecutive failure count.
func refresh(ctx context.Context, ctrl *paging.Controller, log zerolog.Logger) int {
	pages := ctrl.QueriedPages()
	if len(pages) == 0 {
		pages = []int{1}
	}

	var g errgroup.Group
	g.SetLimit(refreshParallel)
	for _, page := range pages {
		g.Go(func() error {
			return ctrl.FetchPage(ctx, page)
		})
	}
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Warn().Err(err).Str("identity", ctrl.Identity().String()).Msg("refresh failed")
	}
	return ctrl.Snapshot().ConsecutiveFailures
}

// calculateBackoff doubles base once per failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
