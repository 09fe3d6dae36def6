package oracle

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

type rateLimited struct {
	next    Client
	limiter *rate.Limiter
}

// WithRateLimit throttles next to perMinute calls. perMinute <= 0 returns next
// unchanged.
func WithRateLimit(next Client, perMinute int) Client {
	if perMinute <= 0 {
		return next
	}
	return &rateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (r *rateLimited) Invoke(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return r.next.Invoke(ctx, prompt)
}
