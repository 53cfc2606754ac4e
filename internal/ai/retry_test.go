package ai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	errs  []error
	calls int
}

func (p *scriptedProvider) next() error {
	var err error
	if p.calls < len(p.errs) {
		err = p.errs[p.calls]
	}
	p.calls++
	return err
}

func (p *scriptedProvider) CompleteStructured(context.Context, StructuredRequest) (json.RawMessage, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	return json.RawMessage(`{}`), nil
}

func (p *scriptedProvider) CompleteText(context.Context, TextRequest) (string, error) {
	if err := p.next(); err != nil {
		return "", err
	}
	return "ok", nil
}

func newTestRetry(next Provider, max int) (*RetryingProvider, *[]time.Duration) {
	var slept []time.Duration
	p := WithRetry(next, max, 100*time.Millisecond, zerolog.Nop(), nil).(*RetryingProvider)
	p.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return p, &slept
}

func TestWithRetry_DisabledReturnsNext(t *testing.T) {
	next := &scriptedProvider{}
	assert.Same(t, next, WithRetry(next, 0, time.Second, zerolog.Nop(), nil))
}

func TestRetry_RecoversFromRateLimit(t *testing.T) {
	next := &scriptedProvider{errs: []error{
		&StatusError{StatusCode: 429},
		&StatusError{StatusCode: 429},
	}}
	p, slept := newTestRetry(next, 3)

	text, err := p.CompleteText(context.Background(), TextRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 3, next.calls)
	require.Len(t, *slept, 2)
	assert.Less(t, (*slept)[0], 100*time.Millisecond)
	assert.Less(t, (*slept)[1], 200*time.Millisecond)
}

func TestRetry_BoundedAttempts(t *testing.T) {
	rl := &StatusError{StatusCode: 429}
	next := &scriptedProvider{errs: []error{rl, rl, rl, rl, rl}}
	p, _ := newTestRetry(next, 2)

	_, err := p.CompleteStructured(context.Background(), StructuredRequest{})
	assert.Equal(t, 429, StatusCode(err))
	assert.Equal(t, 3, next.calls)
}

func TestRetry_OnlyRateLimit(t *testing.T) {
	tests := []error{
		&StatusError{StatusCode: 402},
		&StatusError{StatusCode: 500},
		ErrNotConfigured,
		ErrNoToolCall,
		errors.New("dial tcp: refused"),
	}
	for _, failure := range tests {
		t.Run(failure.Error(), func(t *testing.T) {
			next := &scriptedProvider{errs: []error{failure}}
			p, slept := newTestRetry(next, 5)

			_, err := p.CompleteText(context.Background(), TextRequest{})
			assert.ErrorIs(t, err, failure)
			assert.Equal(t, 1, next.calls)
			assert.Empty(t, *slept)
		})
	}
}

func TestRetry_StopsWhenContextDone(t *testing.T) {
	next := &scriptedProvider{errs: []error{&StatusError{StatusCode: 429}}}
	p, _ := newTestRetry(next, 3)
	p.sleep = sleepCtx

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.CompleteText(ctx, TextRequest{})
	assert.Equal(t, 429, StatusCode(err))
	assert.Equal(t, 1, next.calls)
}

func TestBackoff_Capped(t *testing.T) {
	p, _ := newTestRetry(&scriptedProvider{}, 1)
	for i := 0; i < 100; i++ {
		assert.Less(t, p.backoff(40), maxRetryDelay)
	}
}
