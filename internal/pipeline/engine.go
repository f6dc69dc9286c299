package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tmacri/pagesift/internal/progress"
)

// Config controls Engine behavior.
type Config struct {
	// Concurrency bounds the number of in-flight fetch/extract tasks. The
	// probe stage is sequential regardless.
	Concurrency int
}

// Engine orchestrates the pipeline: screen, fetch, extract, flatten. One
// Engine serves one run; all collaborators are shared read-mostly across the
// concurrent tasks and every task owns its own intermediate values.
type Engine struct {
	cfg       Config
	prober    Prober
	fetcher   Fetcher
	extractor Extractor
	hub       *progress.Hub
	logger    *zap.Logger
}

// NewEngine constructs an Engine. hub may be nil when progress reporting is
// not wanted.
func NewEngine(
	cfg Config,
	prober Prober,
	fetcher Fetcher,
	extractor Extractor,
	hub *progress.Hub,
	logger *zap.Logger,
) *Engine {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:       cfg,
		prober:    prober,
		fetcher:   fetcher,
		extractor: extractor,
		hub:       hub,
		logger:    logger,
	}
}

// Run drives every URL through the pipeline and returns the flattened
// dataset. Per-URL failures never abort the batch: a URL that fails any
// stage simply contributes no records. An empty dataset is a legitimate
// terminal state, not an error; the only non-nil error Run returns is the
// context's, when the run was canceled from outside.
func (e *Engine) Run(ctx context.Context, urls []string) (Dataset, error) {
	runID := uuid.New()
	start := time.Now()
	logger := e.logger.With(zap.String("run_id", runID.String()))

	e.emit(progress.Event{RunID: runID, TS: start.UTC(), Stage: progress.StageRunStart})

	logger.Info("checking URLs for validity and page content", zap.Int("urls", len(urls)))
	alive := e.screen(ctx, runID, urls, logger)
	if len(alive) == 0 {
		logger.Warn("no valid, alive URLs found")
		e.finish(runID, progress.RunEmpty, start)
		return nil, ctx.Err()
	}

	perURL := make([][]Record, len(alive))
	sem := make(chan struct{}, e.cfg.Concurrency)
	var wg sync.WaitGroup
	var completed atomic.Int64
	for i, rawURL := range alive {
		wg.Add(1)
		go func(slot int, rawURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			perURL[slot] = e.collect(ctx, runID, rawURL, logger)
			logger.Info("scrape progress",
				zap.Int64("completed", completed.Add(1)),
				zap.Int("total", len(alive)),
			)
		}(i, rawURL)
	}
	wg.Wait()

	var dataset Dataset
	for _, records := range perURL {
		dataset = append(dataset, records...)
	}
	if len(dataset) == 0 {
		logger.Warn("no data scraped from valid URLs")
		e.finish(runID, progress.RunEmpty, start)
		return nil, ctx.Err()
	}

	logger.Info("pipeline run complete",
		zap.Int("urls_submitted", len(urls)),
		zap.Int("urls_alive", len(alive)),
		zap.Int("records", len(dataset)),
		zap.Duration("dur", time.Since(start)),
	)
	e.finish(runID, progress.RunComplete, start)
	return dataset, ctx.Err()
}

// screen applies syntax validation and the liveness probe, in submission
// order, one URL at a time. Rejections are diagnostics, never errors.
func (e *Engine) screen(ctx context.Context, runID uuid.UUID, urls []string, logger *zap.Logger) []string {
	alive := make([]string, 0, len(urls))
	for _, raw := range urls {
		if ValidateURL(raw) != ValiditySyntaxValid {
			logger.Warn("invalid URL skipped", zap.String("url", raw))
			continue
		}
		res := e.prober.Probe(ctx, raw)
		e.emit(progress.Event{
			RunID:   runID,
			TS:      time.Now().UTC(),
			Stage:   progress.StageProbeDone,
			URL:     raw,
			Outcome: string(res.Outcome),
		})
		if !res.Alive() {
			logger.Warn("URL excluded by liveness probe",
				zap.String("url", raw),
				zap.String("outcome", string(res.Outcome)),
				zap.Int("status_code", res.StatusCode),
				zap.Error(res.Err),
			)
			continue
		}
		alive = append(alive, raw)
	}
	return alive
}

// collect runs the fetch and extract stages for one URL. Any failure
// degrades to a nil record slice for that URL.
func (e *Engine) collect(ctx context.Context, runID uuid.UUID, rawURL string, logger *zap.Logger) []Record {
	fetchStart := time.Now()
	outcome := e.fetcher.Fetch(ctx, rawURL)
	evt := progress.Event{
		RunID:    runID,
		TS:       time.Now().UTC(),
		Stage:    progress.StageFetchDone,
		URL:      rawURL,
		Outcome:  progress.FetchSucceeded,
		Attempts: outcome.Attempts,
		Dur:      time.Since(fetchStart),
	}
	if outcome.Failed() {
		evt.Outcome = progress.FetchFailed
		e.emit(evt)
		logger.Error("fetch failed after retries",
			zap.String("url", rawURL),
			zap.Int("attempts", outcome.Attempts),
			zap.Error(outcome.Err),
		)
		return nil
	}
	e.emit(evt)

	records, err := e.extractor.Extract(rawURL, outcome.Body)
	if err != nil {
		logger.Error("parsing error", zap.String("url", rawURL), zap.Error(err))
		return nil
	}
	if len(records) == 0 {
		logger.Warn("no titles or paragraphs found", zap.String("url", rawURL))
		return nil
	}
	e.emit(progress.Event{
		RunID:   runID,
		TS:      time.Now().UTC(),
		Stage:   progress.StageExtractDone,
		URL:     rawURL,
		Records: len(records),
	})
	return records
}

func (e *Engine) finish(runID uuid.UUID, outcome string, start time.Time) {
	e.emit(progress.Event{
		RunID:   runID,
		TS:      time.Now().UTC(),
		Stage:   progress.StageRunDone,
		Outcome: outcome,
		Dur:     time.Since(start),
	})
}

func (e *Engine) emit(evt progress.Event) {
	if e.hub == nil {
		return
	}
	e.hub.Emit(evt)
}
