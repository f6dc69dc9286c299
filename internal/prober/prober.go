// Package prober classifies URL reachability ahead of the content fetch.
package prober

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tmacri/pagesift/internal/pipeline"
)

// softNotFoundMarker flags pages that answer 200 but are effectively error
// pages. Substring matching is a heuristic, not a guarantee: a page that
// legitimately discusses "page not found" will be misclassified.
const softNotFoundMarker = "page not found"

const defaultProbeTimeout = 10 * time.Second

// Prober issues one lightweight GET per URL and classifies the response. It
// never retries; a probe failure just excludes the URL from the fetch stage.
type Prober struct {
	client *http.Client
	logger *zap.Logger
}

// New builds a Prober whose requests, redirects included, finish within
// timeout.
func New(timeout time.Duration, logger *zap.Logger) *Prober {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Probe classifies one URL. The context bounds the request alongside the
// client timeout.
func (p *Prober) Probe(ctx context.Context, rawURL string) pipeline.ProbeResult {
	p.logger.Debug("checking URL", zap.String("url", rawURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return pipeline.ProbeResult{URL: rawURL, Outcome: pipeline.OutcomeNetworkError, Err: err}
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Error("error checking URL", zap.String("url", rawURL), zap.Error(err))
		return pipeline.ProbeResult{URL: rawURL, Outcome: pipeline.OutcomeNetworkError, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // read-only response body

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("URL returned non-200 status",
			zap.String("url", rawURL),
			zap.Int("status_code", resp.StatusCode),
		)
		return pipeline.ProbeResult{URL: rawURL, Outcome: pipeline.OutcomeDeadStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.logger.Error("error reading probe body", zap.String("url", rawURL), zap.Error(err))
		return pipeline.ProbeResult{URL: rawURL, Outcome: pipeline.OutcomeNetworkError, Err: err}
	}
	if strings.Contains(strings.ToLower(string(body)), softNotFoundMarker) {
		p.logger.Warn("'page not found' detected", zap.String("url", rawURL))
		return pipeline.ProbeResult{URL: rawURL, Outcome: pipeline.OutcomeSoftNotFound}
	}
	return pipeline.ProbeResult{URL: rawURL, Outcome: pipeline.OutcomeAlive}
}
