// Package collyfetcher performs single HTTP fetch attempts using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Browser-like request headers. Static by design: they reduce trivial
// bot-blocking and are never rotated.
const (
	spoofedUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
	spoofedAcceptLanguage = "en-US,en;q=0.9"
	spoofedAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

const defaultAttemptTimeout = 15 * time.Second

// Config controls collector behavior.
type Config struct {
	// Timeout bounds each attempt (default 15s).
	Timeout time.Duration
	// UserAgent overrides the spoofed browser agent, mainly for tests.
	UserAgent string
}

// Client executes single fetch attempts through a shared pooled transport.
// The retry loop lives above it; Attempt reports every failure, including
// non-2xx responses, as an error so the caller can decide.
type Client struct {
	cfg           Config
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// New builds a Client. The base collector carries the pooled transport and
// is cloned per attempt so hook state never leaks between requests.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultAttemptTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = spoofedUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.AllowURLRevisit = true
	c.WithTransport(newHTTPTransport())
	c.SetRequestTimeout(cfg.Timeout)

	return &Client{
		cfg:           cfg,
		baseCollector: c,
		logger:        logger,
	}
}

// Attempt executes a single GET and returns the body text. The attempt is
// bounded by the configured timeout independent of the run context.
func (c *Client) Attempt(ctx context.Context, rawURL string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var (
		body     string
		fetchErr error
	)
	collector := c.baseCollector.Clone()
	collector.UserAgent = c.cfg.UserAgent

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", spoofedAcceptLanguage)
		r.Headers.Set("Accept", spoofedAccept)
		c.logger.Debug("fetching URL",
			zap.String("url", rawURL),
			zap.String("user_agent", collector.UserAgent),
		)
	})
	collector.OnResponse(func(r *colly.Response) {
		c.logger.Debug("fetch response",
			zap.String("url", rawURL),
			zap.Int("status_code", r.StatusCode),
		)
		body = string(r.Body)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("http status %d: %w", r.StatusCode, err)
			return
		}
		fetchErr = err
	})

	if err := c.runCollector(attemptCtx, collector, rawURL); err != nil {
		return "", err
	}
	if fetchErr != nil {
		return "", fetchErr
	}
	return body, nil
}

func (c *Client) runCollector(ctx context.Context, collector *colly.Collector, rawURL string) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch attempt canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("visit %s: %w", rawURL, err)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}
