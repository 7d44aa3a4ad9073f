package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/couchcryptid/case-growth-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// fetch retries transient failures with exponential backoff until the
// attempt cap is reached. Non-transient errors are returned immediately.
func (p *Pipeline) fetch(ctx context.Context) (domain.FeedFile, error) {
	backoff := p.opts.BackoffInitial

	for attempt := 1; ; attempt++ {
		file, err := p.fetcher.Fetch(ctx)
		if err == nil {
			outcome := "success"
			if file.Cached {
				outcome = "cached"
			}
			p.metrics.FetchAttempts.WithLabelValues(outcome).Inc()
			return file, nil
		}
		if ctx.Err() != nil {
			return domain.FeedFile{}, ctx.Err()
		}
		if !errors.Is(err, domain.ErrFetchTransient) {
			return domain.FeedFile{}, err
		}

		p.metrics.FetchAttempts.WithLabelValues("transient").Inc()
		p.logger.Warn("fetch attempt failed", "attempt", attempt, "max_attempts", p.opts.MaxAttempts, "error", err)

		if p.opts.MaxAttempts > 0 && attempt >= p.opts.MaxAttempts {
			return domain.FeedFile{}, &domain.FetchExhaustedError{Attempts: attempt, Last: err}
		}
		if !sleepWithContext(ctx, p.opts.Clock, backoff) {
			return domain.FeedFile{}, ctx.Err()
		}
		backoff = nextBackoff(backoff, p.opts.BackoffMax)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
