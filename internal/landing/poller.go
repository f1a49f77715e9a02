package landing

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Counter is the slice of the registration store the poller needs.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Poller periodically refreshes the registration count so the status endpoint
// answers from memory instead of hitting the store on every page load. It is
// a cancellable periodic task: Run exits when its context is cancelled.
type Poller struct {
	counter  Counter
	capacity int
	interval time.Duration
	logger   *slog.Logger

	count atomic.Int64
}

// NewPoller constructs a poller. Call Refresh once before serving so the
// first status response is not a zero count.
func NewPoller(counter Counter, capacity int, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		counter:  counter,
		capacity: capacity,
		interval: interval,
		logger:   logger,
	}
}

// Run refreshes the cached count at the configured interval until ctx is
// cancelled. Refresh failures are logged and retried on the next tick; the
// last good count keeps serving in the meantime.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh fetches the count once and updates the cache.
func (p *Poller) Refresh(ctx context.Context) {
	count, err := p.counter.Count(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "count refresh failed", "error", err)
		return
	}
	p.count.Store(int64(count))
}

// Count returns the cached registration count.
func (p *Poller) Count() int {
	return int(p.count.Load())
}

// SoldOut reports whether the cached count has reached the capacity ceiling.
func (p *Poller) SoldOut() bool {
	return p.Count() >= p.capacity
}

// SpotsLeft returns the remaining capacity, never negative.
func (p *Poller) SpotsLeft() int {
	left := p.capacity - p.Count()
	if left < 0 {
		return 0
	}
	return left
}
