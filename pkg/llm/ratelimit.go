package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited bounds the request rate sent to the wrapped provider.
type RateLimited struct {
	next    Provider
	limiter *rate.Limiter
}

var _ Provider = (*RateLimited)(nil)

// NewRateLimited allows perSecond requests with the given burst. A non-positive
// rate returns next unchanged.
func NewRateLimited(next Provider, perSecond float64, burst int) Provider {
	if perSecond <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (r *RateLimited) Name() string {
	return NameOf(r.next)
}

func (r *RateLimited) Complete(ctx context.Context, messages []Message, options ...Option) (*Completion, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, Unavailable(NameOf(r.next), err)
	}
	return r.next.Complete(ctx, messages, options...)
}
