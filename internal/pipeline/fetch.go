package pipeline

import (
	"context"

	"go.uber.org/zap"
)

// RetryingFetcher drives a single-attempt transport through the retry
// policy. It is safe for concurrent use by any number of pipeline tasks: the
// transport and policy are read-only once constructed.
type RetryingFetcher struct {
	transport AttemptFetcher
	policy    RetryPolicy
	pauser    Pauser
	logger    *zap.Logger
}

// NewRetryingFetcher wires a transport to the retry policy.
func NewRetryingFetcher(transport AttemptFetcher, policy RetryPolicy, logger *zap.Logger) *RetryingFetcher {
	if policy == nil {
		policy = NewExponentialRetryPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingFetcher{
		transport: transport,
		policy:    policy,
		pauser:    timerPauser{},
		logger:    logger,
	}
}

// Fetch attempts the URL until it succeeds or the policy gives up. The
// outcome carries the body on success, or the last error and the number of
// attempts used on failure. A failed fetch is reported here once, after the
// final attempt; intermediate failures log only the retry decision.
func (f *RetryingFetcher) Fetch(ctx context.Context, rawURL string) FetchOutcome {
	var lastErr error
	for attempt := 0; ; attempt++ {
		body, err := f.transport.Attempt(ctx, rawURL)
		if err == nil {
			return FetchOutcome{URL: rawURL, Body: body, Attempts: attempt + 1}
		}
		lastErr = err
		if !f.policy.ShouldRetry(ctx, err, attempt+1) {
			return FetchOutcome{URL: rawURL, Attempts: attempt + 1, Err: lastErr}
		}
		delay := f.policy.Backoff(attempt)
		f.logger.Warn("fetch attempt failed, retrying",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		f.pauser.Pause(ctx, delay)
	}
}
