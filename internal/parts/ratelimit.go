package parts

import (
	"context"
	"time"
)

// rateLimiter spaces outbound catalog calls so a burst of users cannot get
// the account throttled upstream.
type rateLimiter struct {
	ticker   *time.Ticker
	requests chan struct{}
}

func newRateLimiter(requestsPerSecond float64) *rateLimiter {
	interval := time.Duration(float64(time.Second) / requestsPerSecond)

	rl := &rateLimiter{
		ticker:   time.NewTicker(interval),
		requests: make(chan struct{}, 1),
	}

	// Prime the first slot so the first request never waits.
	rl.requests <- struct{}{}

	go func() {
		for range rl.ticker.C {
			select {
			case rl.requests <- struct{}{}:
			default:
			}
		}
	}()

	return rl
}

func (rl *rateLimiter) Wait(ctx context.Context) error {
	select {
	case <-rl.requests:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (rl *rateLimiter) Stop() {
	rl.ticker.Stop()
}
