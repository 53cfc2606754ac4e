package ai

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Vovarama1992/clinic-ai-proxy/internal/metrics"
)

const maxRetryDelay = 10 * time.Second

// RetryingProvider retries upstream 429s with full-jitter exponential
// backoff. Every other failure is returned on the first attempt.
type RetryingProvider struct {
	next     Provider
	attempts int
	base     time.Duration
	log      zerolog.Logger
	metrics  *metrics.Metrics

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps next. With maxRetries <= 0 it returns next unchanged.
func WithRetry(next Provider, maxRetries int, base time.Duration, log zerolog.Logger, m *metrics.Metrics) Provider {
	if maxRetries <= 0 {
		return next
	}
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	return &RetryingProvider{
		next:     next,
		attempts: maxRetries,
		base:     base,
		log:      log.With().Str("component", "ai").Logger(),
		metrics:  m,
		sleep:    sleepCtx,
	}
}

func (p *RetryingProvider) CompleteStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	return retry(ctx, p, kindStructured, func() (json.RawMessage, error) {
		return p.next.CompleteStructured(ctx, req)
	})
}

func (p *RetryingProvider) CompleteText(ctx context.Context, req TextRequest) (string, error) {
	return retry(ctx, p, kindText, func() (string, error) {
		return p.next.CompleteText(ctx, req)
	})
}

func retry[T any](ctx context.Context, p *RetryingProvider, kind string, call func() (T, error)) (T, error) {
	out, err := call()
	for attempt := 0; attempt < p.attempts && StatusCode(err) == http.StatusTooManyRequests; attempt++ {
		d := p.backoff(attempt)
		p.log.Warn().Str("kind", kind).Int("attempt", attempt+1).Dur("delay", d).Msg("rate limited, retrying")
		p.metrics.ObserveRetry(kind)
		if serr := p.sleep(ctx, d); serr != nil {
			return out, err
		}
		out, err = call()
	}
	return out, err
}

// backoff returns a uniformly random delay in [0, base*2^attempt), capped.
func (p *RetryingProvider) backoff(attempt int) time.Duration {
	ceiling := maxRetryDelay
	if attempt < 16 {
		if c := p.base << attempt; c > 0 && c < ceiling {
			ceiling = c
		}
	}
	return time.Duration(rand.Int63n(int64(ceiling)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
