package limiter

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rohmanhakim/nps-crawler/pkg/timeutil"
	"golang.org/x/time/rate"
)

// RateLimiter
// Keeps outgoing requests polite towards each remote host.
// Responsibilities:
// - Bookkeep each hostname's last fetch timestamp
// - Space consecutive requests to the same host by the base delay
// - Add seeded jitter on top of the spacing
type RateLimiter interface {
	Wait(ctx context.Context, host string) error
}

type HostRateLimiter struct {
	mu          sync.Mutex
	rngMu       sync.Mutex
	baseDelay   time.Duration
	jitter      time.Duration
	hostTimings map[string]*hostTiming
	rng         *rand.Rand
}

func NewHostRateLimiter(baseDelay time.Duration, jitter time.Duration, randomSeed int64) *HostRateLimiter {
	return &HostRateLimiter{
		baseDelay:   baseDelay,
		jitter:      jitter,
		hostTimings: make(map[string]*hostTiming),
		rng:         rand.New(rand.NewSource(randomSeed)),
	}
}

// Wait blocks until a request to host is allowed, or ctx is done.
// The first request to a host never waits.
func (r *HostRateLimiter) Wait(ctx context.Context, host string) error {
	timing := r.timingFor(host)

	if err := timing.limiter.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	seen := timing.fetchCount > 0
	r.mu.Unlock()

	if seen {
		if err := r.sleepJitter(ctx); err != nil {
			return err
		}
	}

	r.mu.Lock()
	timing.lastFetchAt = time.Now()
	timing.fetchCount++
	r.mu.Unlock()
	return nil
}

func (r *HostRateLimiter) timingFor(host string) *hostTiming {
	r.mu.Lock()
	defer r.mu.Unlock()

	timing, exists := r.hostTimings[host]
	if !exists {
		limit := rate.Inf
		if r.baseDelay > 0 {
			limit = rate.Every(r.baseDelay)
		}
		timing = &hostTiming{
			limiter: rate.NewLimiter(limit, 1),
		}
		r.hostTimings[host] = timing
	}
	return timing
}

func (r *HostRateLimiter) sleepJitter(ctx context.Context) error {
	r.rngMu.Lock()
	delay := timeutil.ComputeJitter(r.jitter, r.rng)
	r.rngMu.Unlock()

	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *HostRateLimiter) BaseDelay() time.Duration {
	return r.baseDelay
}

// HostTimings returns a copy of the per-host bookkeeping.
func (r *HostRateLimiter) HostTimings() map[string]hostTiming {
	r.mu.Lock()
	defer r.mu.Unlock()

	copyMap := make(map[string]hostTiming, len(r.hostTimings))
	for k, v := range r.hostTimings {
		copyMap[k] = *v
	}
	return copyMap
}

// NoopLimiter never waits.
type NoopLimiter struct{}

func (NoopLimiter) Wait(ctx context.Context, host string) error {
	return ctx.Err()
}
