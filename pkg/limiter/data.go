package limiter

import (
	"time"

	"golang.org/x/time/rate"
)

// pacing state kept per host
type hostTiming struct {
	limiter     *rate.Limiter
	lastFetchAt time.Time
	fetchCount  int
}

func (h *hostTiming) LastFetchAt() time.Time {
	return h.lastFetchAt
}

func (h *hostTiming) FetchCount() int {
	return h.fetchCount
}
