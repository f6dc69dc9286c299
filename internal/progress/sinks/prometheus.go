package sinks

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tmacri/pagesift/internal/progress"
)

// PrometheusSink exports pipeline progress as Prometheus metrics. It owns
// every collector it registers.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec

	probes        *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	fetchAttempts prometheus.Counter
	fetchDuration prometheus.Histogram
	records       prometheus.Counter
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pagesift_runs_started_total",
			Help: "Total pipeline runs started.",
		}),
		runsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagesift_runs_completed_total",
			Help: "Total pipeline runs completed partitioned by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pagesift_run_duration_seconds",
			Help:    "Wall time per completed run.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}, []string{"result"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagesift_probes_total",
			Help: "Liveness probes partitioned by outcome.",
		}, []string{"outcome"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagesift_fetches_total",
			Help: "Fetch completions partitioned by result.",
		}, []string{"result"}),
		fetchAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pagesift_fetch_attempts_total",
			Help: "HTTP fetch attempts issued, including retries.",
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pagesift_fetch_duration_seconds",
			Help:    "Wall time per fetch including retries.",
			Buckets: prometheus.DefBuckets,
		}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pagesift_records_extracted_total",
			Help: "Title/paragraph records extracted.",
		}),
	}
	collectors := []prometheus.Collector{
		s.runsStarted, s.runsCompleted, s.runDuration,
		s.probes, s.fetches, s.fetchAttempts, s.fetchDuration, s.records,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Consume updates collectors from the batch.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageRunStart:
			s.runsStarted.Inc()
		case progress.StageRunDone:
			s.runsCompleted.WithLabelValues(evt.Outcome).Inc()
			s.runDuration.WithLabelValues(evt.Outcome).Observe(evt.Dur.Seconds())
		case progress.StageProbeDone:
			s.probes.WithLabelValues(evt.Outcome).Inc()
		case progress.StageFetchDone:
			s.fetches.WithLabelValues(evt.Outcome).Inc()
			s.fetchAttempts.Add(float64(evt.Attempts))
			s.fetchDuration.Observe(evt.Dur.Seconds())
		case progress.StageExtractDone:
			s.records.Add(float64(evt.Records))
		}
	}
	return nil
}

// Close implements the Sink interface; collectors stay registered.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
