// Package extractor parses fetched HTML into aligned title/paragraph
// records.
package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/tmacri/pagesift/internal/pipeline"
)

// Extractor collects heading (h1-h3) and paragraph text in document order
// and pairs them by position. The pairing carries no semantic relation; the
// i-th title simply sits next to the i-th paragraph, with empty-string fill
// when one list is shorter. That alignment is part of the output contract.
type Extractor struct {
	logger *zap.Logger
}

// New constructs an Extractor.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract parses html and returns the positional records for rawURL. A page
// with no headings and no paragraphs yields an empty slice and no error.
// Extract is deterministic and keeps no state between calls.
func (e *Extractor) Extract(rawURL, html string) ([]pipeline.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var titles []string
	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, strings.TrimSpace(s.Text()))
	})
	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		paragraphs = append(paragraphs, strings.TrimSpace(s.Text()))
	})

	if len(titles) == 0 && len(paragraphs) == 0 {
		return nil, nil
	}

	n := len(titles)
	if len(paragraphs) > n {
		n = len(paragraphs)
	}
	records := make([]pipeline.Record, 0, n)
	for i := 0; i < n; i++ {
		rec := pipeline.Record{URL: rawURL}
		if i < len(titles) {
			rec.Title = titles[i]
		}
		if i < len(paragraphs) {
			rec.Paragraph = paragraphs[i]
		}
		records = append(records, rec)
	}
	e.logger.Debug("extracted records",
		zap.String("url", rawURL),
		zap.Int("titles", len(titles)),
		zap.Int("paragraphs", len(paragraphs)),
	)
	return records, nil
}
