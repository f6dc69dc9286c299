// Package sink serializes pipeline datasets for external consumers.
package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/tmacri/pagesift/internal/pipeline"
)

var csvHeader = []string{"url", "title", "paragraph"}

// CSVWriter writes a dataset as a three-column CSV file, one row per record,
// in dataset order.
type CSVWriter struct {
	logger *zap.Logger
}

// NewCSVWriter constructs a CSVWriter.
func NewCSVWriter(logger *zap.Logger) *CSVWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVWriter{logger: logger}
}

// Write persists dataset to path, appending a .csv suffix when missing, and
// returns the path actually written. Callers are expected to skip the write
// entirely for an empty dataset; Write refuses one rather than producing a
// header-only file.
func (w *CSVWriter) Write(ctx context.Context, path string, dataset pipeline.Dataset) (string, error) {
	if len(dataset) == 0 {
		return "", fmt.Errorf("refusing to write empty dataset")
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled: %w", err)
	}
	if !strings.HasSuffix(path, ".csv") {
		path += ".csv"
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // close error surfaced via Flush below

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, rec := range dataset {
		if err := cw.Write([]string{rec.URL, rec.Title, rec.Paragraph}); err != nil {
			return "", fmt.Errorf("write record for %s: %w", rec.URL, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}

	w.logger.Info("dataset saved",
		zap.String("path", path),
		zap.Int("records", len(dataset)),
	)
	return path, nil
}
