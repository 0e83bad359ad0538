// Package pacing spaces out calls to rate-limited external services.
package pacing

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Interval enforces a minimum gap between consecutive calls using a
// single-token bucket. The external summarization API requires this spacing
// after every attempt, so callers Wait once per completed call.
type Interval struct {
	limiter *rate.Limiter
}

// NewInterval builds a pacer with the given minimum gap. A non-positive gap
// disables pacing, which is what test doubles want.
func NewInterval(minGap time.Duration) *Interval {
	if minGap <= 0 {
		return &Interval{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	l := rate.NewLimiter(rate.Every(minGap), 1)
	// Spend the initial burst token so the very first Wait already spans a
	// full interval.
	l.Allow()
	return &Interval{limiter: l}
}

// Wait blocks until the minimum interval has elapsed or ctx is done.
func (i *Interval) Wait(ctx context.Context) error {
	return i.limiter.Wait(ctx)
}
