// Package sinks provides progress.Sink implementations.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/tmacri/pagesift/internal/progress"
)

// LogSink emits structured logs for each progress event. Useful in verbose
// runs and during debugging.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.logger.Debug("progress event",
			zap.String("run_id", evt.RunID.String()),
			zap.String("stage", string(evt.Stage)),
			zap.String("url", evt.URL),
			zap.String("outcome", evt.Outcome),
			zap.Int("attempts", evt.Attempts),
			zap.Int("records", evt.Records),
			zap.Duration("dur", evt.Dur),
		)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
