// Package progress carries coarse pipeline milestones from the engine to
// observational sinks. Emitting is non-blocking; no event ever changes
// pipeline control flow.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart    Stage = "RUN_START"
	StageRunDone     Stage = "RUN_DONE"
	StageProbeDone   Stage = "PROBE_DONE"
	StageFetchDone   Stage = "FETCH_DONE"
	StageExtractDone Stage = "EXTRACT_DONE"
)

// Outcome labels attached to fetch and run completions.
const (
	FetchSucceeded = "succeeded"
	FetchFailed    = "failed"
	RunComplete    = "complete"
	RunEmpty       = "empty"
)

// Event captures a single pipeline milestone.
type Event struct {
	// RunID identifies the pipeline run the event belongs to.
	RunID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// URL scopes probe/fetch/extract events to one page.
	URL string
	// Outcome carries the probe classification or fetch/run result label.
	Outcome string
	// Attempts is the number of fetch attempts used, including the last.
	Attempts int
	// Records is the number of records produced by an extraction.
	Records int
	// Dur captures stage latency where the emitter measured one.
	Dur time.Duration
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == uuid.Nil {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone:
	case StageProbeDone:
		if e.URL == "" || e.Outcome == "" {
			return errors.New("probe done requires url and outcome")
		}
	case StageFetchDone:
		if e.URL == "" || e.Outcome == "" {
			return errors.New("fetch done requires url and outcome")
		}
	case StageExtractDone:
		if e.URL == "" {
			return errors.New("extract done requires url")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
