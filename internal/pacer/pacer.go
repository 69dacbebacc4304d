// Package pacer spaces out batch submissions and slows down when the node pushes back.
package pacer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ligun0805/sui-airdrop/internal/sui"
	"github.com/ligun0805/sui-airdrop/pkg/logger"
)

// Pacer gates submissions. Wait blocks until the next one may go out; Observe feeds back its result.
type Pacer interface {
	Wait(ctx context.Context) error
	Observe(err error)
}

// Adaptive is a single-token bucket whose refill interval doubles on rate-limit
// responses (up to Max) and halves back toward Base on success. It never retries anything.
type Adaptive struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	base     time.Duration
	max      time.Duration
	interval time.Duration
	log      *logger.Logger
}

func NewAdaptive(base, max time.Duration, l *logger.Logger) *Adaptive {
	if base < 0 {
		base = 0
	}
	if max < base {
		max = base
	}
	return &Adaptive{
		limiter:  rate.NewLimiter(every(base), 1),
		base:     base,
		max:      max,
		interval: base,
		log:      logger.OrNop(l),
	}
}

func every(d time.Duration) rate.Limit {
	if d <= 0 {
		return rate.Inf
	}
	return rate.Every(d)
}

func (a *Adaptive) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

func (a *Adaptive) Observe(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	next := a.interval
	switch {
	case err == nil:
		if next > a.base {
			next /= 2
			if next < a.base {
				next = a.base
			}
		}
	case sui.IsRateLimited(err):
		if next == 0 {
			next = time.Second
		} else {
			next *= 2
		}
		if next > a.max {
			next = a.max
		}
	}
	if next == a.interval {
		return
	}
	a.log.Infow("batch interval changed", "from", a.interval, "to", next)
	a.interval = next
	a.limiter.SetLimit(every(next))
}

// Interval is the current spacing between submissions.
func (a *Adaptive) Interval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interval
}

// Noop never waits. Used by tests and dry runs.
type Noop struct{}

func (Noop) Wait(ctx context.Context) error { return ctx.Err() }
func (Noop) Observe(error)                  {}
