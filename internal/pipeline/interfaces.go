package pipeline

import (
	"context"
	"time"
)

// Prober classifies whether a URL is reachable and serving real content.
type Prober interface {
	Probe(ctx context.Context, rawURL string) ProbeResult
}

// Fetcher retrieves the content body for a URL, handling retries internally.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) FetchOutcome
}

// AttemptFetcher performs a single fetch attempt. The RetryingFetcher drives
// implementations through the retry policy.
type AttemptFetcher interface {
	Attempt(ctx context.Context, rawURL string) (string, error)
}

// Extractor turns fetched HTML into ordered title/paragraph records.
type Extractor interface {
	Extract(rawURL, html string) ([]Record, error)
}

// RetryPolicy decides whether a failed fetch attempt is retried and how long
// to wait before the next one.
type RetryPolicy interface {
	ShouldRetry(ctx context.Context, err error, attempt int) bool
	Backoff(attempt int) time.Duration
}

// Pauser abstracts backoff waits so tests do not spend wall-clock time.
type Pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}
