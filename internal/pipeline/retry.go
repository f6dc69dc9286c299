package pipeline

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"time"
)

// Default retry knobs. Three attempts total matches the reference fetch
// behavior; the delay shape is jittered exponential.
const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 250 * time.Millisecond
	defaultMaxDelay    = 5 * time.Second
)

// ExponentialRetryPolicy implements RetryPolicy with jittered backoff.
type ExponentialRetryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// NewExponentialRetryPolicy builds a policy with the default knobs.
func NewExponentialRetryPolicy() *ExponentialRetryPolicy {
	return &ExponentialRetryPolicy{
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
	}
}

// NewRetryPolicy builds a policy with explicit knobs, falling back to the
// defaults for non-positive values.
func NewRetryPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) *ExponentialRetryPolicy {
	p := NewExponentialRetryPolicy()
	if maxAttempts > 0 {
		p.maxAttempts = maxAttempts
	}
	if baseDelay > 0 {
		p.baseDelay = baseDelay
	}
	if maxDelay > 0 {
		p.maxDelay = maxDelay
	}
	return p
}

// ShouldRetry reports whether another attempt is warranted. Both timeout and
// transport errors are retryable; only attempt exhaustion or a finished run
// context stops the loop early.
func (p *ExponentialRetryPolicy) ShouldRetry(ctx context.Context, err error, attempt int) bool {
	if err == nil {
		return false
	}
	if attempt >= p.maxAttempts {
		return false
	}
	return ctx.Err() == nil
}

// Backoff returns the wait duration before the next attempt. attempt is
// zero-based: the delay after the first failure is Backoff(0).
func (p *ExponentialRetryPolicy) Backoff(attempt int) time.Duration {
	delay := float64(p.baseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(p.maxDelay) {
		delay = float64(p.maxDelay)
	}
	jitter := p.randomJitter(time.Duration(delay) / 2)
	return time.Duration(delay/2) + jitter
}

func (p *ExponentialRetryPolicy) randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	bound := big.NewInt(int64(limit))
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}

// timerPauser waits out a backoff delay, returning early if the run context
// finishes.
type timerPauser struct{}

func (timerPauser) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
