package progress

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Sink consumes batches of events. Implementations must tolerate being
// called from a single background goroutine and should treat the batch as
// read-only.
type Sink interface {
	Consume(ctx context.Context, batch []Event) error
	Close(ctx context.Context) error
}

// Config controls Hub buffering.
type Config struct {
	// BufferSize is the capacity of the internal channel (default 1024).
	BufferSize int
	// FlushInterval bounds how long a queued event waits for delivery
	// (default 250ms).
	FlushInterval time.Duration
	// SinkTimeout is the per-sink budget while flushing (default 5s).
	SinkTimeout time.Duration
	// Logger receives warnings about drops and sink failures.
	Logger *zap.Logger
}

const (
	defaultBufferSize    = 1024
	defaultFlushInterval = 250 * time.Millisecond
	defaultSinkTimeout   = 5 * time.Second
)

// Hub fans events out to registered sinks from a single background
// goroutine. Emit never blocks the pipeline: when the buffer is full the
// event is dropped and counted.
type Hub struct {
	cfg     Config
	sinks   []Sink
	events  chan Event
	stopCh  chan struct{}
	doneCh  chan struct{}
	logger  *zap.Logger
	dropped atomic.Int64

	closeOnce sync.Once
}

// NewHub starts the background delivery goroutine over the supplied sinks.
func NewHub(cfg Config, sinks ...Sink) *Hub {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = defaultSinkTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		cfg:    cfg,
		sinks:  append([]Sink(nil), sinks...),
		events: make(chan Event, cfg.BufferSize),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		logger: logger,
	}
	go h.run()
	return h
}

// Emit enqueues an event for delivery. Invalid events are discarded with a
// debug log; a full buffer drops the event rather than blocking the caller.
func (h *Hub) Emit(evt Event) {
	if h == nil {
		return
	}
	if err := evt.Validate(); err != nil {
		h.logger.Debug("discarding invalid progress event", zap.Error(err))
		return
	}
	select {
	case h.events <- evt:
	case <-h.stopCh:
	default:
		h.dropped.Add(1)
	}
}

// Close drains queued events, flushes sinks, and waits for the background
// goroutine to exit. Safe to call more than once.
func (h *Hub) Close(ctx context.Context) error {
	if h == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	h.closeOnce.Do(func() {
		close(h.stopCh)
	})
	select {
	case <-h.doneCh:
		if n := h.dropped.Swap(0); n > 0 {
			h.logger.Warn("progress events dropped due to backpressure", zap.Int64("dropped", n))
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("progress hub close wait: %w", ctx.Err())
	}
}

func (h *Hub) run() {
	defer close(h.doneCh)
	ticker := time.NewTicker(h.cfg.FlushInterval)
	defer ticker.Stop()

	var batch []Event
	for {
		select {
		case evt := <-h.events:
			batch = append(batch, evt)
		case <-ticker.C:
			batch = h.flush(batch)
		case <-h.stopCh:
			batch = h.drain(batch)
			h.flush(batch)
			h.closeSinks()
			return
		}
	}
}

// drain empties the channel after stop has been requested.
func (h *Hub) drain(batch []Event) []Event {
	for {
		select {
		case evt := <-h.events:
			batch = append(batch, evt)
		default:
			return batch
		}
	}
}

func (h *Hub) flush(batch []Event) []Event {
	if len(batch) == 0 {
		return batch
	}
	for _, sink := range h.sinks {
		if sink == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), h.cfg.SinkTimeout)
		if err := sink.Consume(ctx, batch); err != nil {
			h.logger.Warn("progress sink consume failed", zap.Error(err))
		}
		cancel()
	}
	return batch[:0]
}

func (h *Hub) closeSinks() {
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.SinkTimeout)
	defer cancel()
	for _, sink := range h.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Close(ctx); err != nil {
			h.logger.Warn("progress sink close failed", zap.Error(err))
		}
	}
}
