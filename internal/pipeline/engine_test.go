package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProber struct{ mock.Mock }

func (m *mockProber) Probe(ctx context.Context, rawURL string) ProbeResult {
	args := m.Called(ctx, rawURL)
	return args.Get(0).(ProbeResult)
}

type mockFetcher struct{ mock.Mock }

func (m *mockFetcher) Fetch(ctx context.Context, rawURL string) FetchOutcome {
	args := m.Called(ctx, rawURL)
	return args.Get(0).(FetchOutcome)
}

type mockExtractor struct{ mock.Mock }

func (m *mockExtractor) Extract(rawURL, html string) ([]Record, error) {
	args := m.Called(rawURL, html)
	if recs := args.Get(0); recs != nil {
		return recs.([]Record), args.Error(1)
	}
	return nil, args.Error(1)
}

func aliveResult(url string) ProbeResult {
	return ProbeResult{URL: url, Outcome: OutcomeAlive}
}

func newTestEngine(cfg Config, p *mockProber, f *mockFetcher, x *mockExtractor) *Engine {
	return NewEngine(cfg, p, f, x, nil, zap.NewNop())
}

func TestEngine_Run_HappyPath(t *testing.T) {
	t.Parallel()

	prober := new(mockProber)
	fetcher := new(mockFetcher)
	extractor := new(mockExtractor)

	urls := []string{"https://a.example", "https://b.example"}
	for _, u := range urls {
		prober.On("Probe", mock.Anything, u).Return(aliveResult(u))
		fetcher.On("Fetch", mock.Anything, u).Return(FetchOutcome{URL: u, Body: "<html>" + u + "</html>", Attempts: 1})
	}
	extractor.On("Extract", "https://a.example", mock.AnythingOfType("string")).
		Return([]Record{{URL: "https://a.example", Title: "A1", Paragraph: "pa1"}, {URL: "https://a.example", Title: "A2"}}, nil)
	extractor.On("Extract", "https://b.example", mock.AnythingOfType("string")).
		Return([]Record{{URL: "https://b.example", Title: "B1", Paragraph: "pb1"}}, nil)

	engine := newTestEngine(Config{Concurrency: 4}, prober, fetcher, extractor)
	dataset, err := engine.Run(context.Background(), urls)

	require.NoError(t, err)
	require.Equal(t, Dataset{
		{URL: "https://a.example", Title: "A1", Paragraph: "pa1"},
		{URL: "https://a.example", Title: "A2"},
		{URL: "https://b.example", Title: "B1", Paragraph: "pb1"},
	}, dataset)
	prober.AssertExpectations(t)
	fetcher.AssertExpectations(t)
	extractor.AssertExpectations(t)
}

func TestEngine_Run_InvalidURLNeverProbed(t *testing.T) {
	t.Parallel()

	prober := new(mockProber)
	fetcher := new(mockFetcher)
	extractor := new(mockExtractor)

	good := "https://good.example"
	prober.On("Probe", mock.Anything, good).Return(aliveResult(good))
	fetcher.On("Fetch", mock.Anything, good).Return(FetchOutcome{URL: good, Body: "body", Attempts: 1})
	extractor.On("Extract", good, "body").Return([]Record{{URL: good, Title: "T"}}, nil)

	engine := newTestEngine(Config{Concurrency: 2}, prober, fetcher, extractor)
	dataset, err := engine.Run(context.Background(), []string{"not a url", good, "ftp://x"})

	require.NoError(t, err)
	require.Len(t, dataset, 1)
	prober.AssertNotCalled(t, "Probe", mock.Anything, "not a url")
	prober.AssertNotCalled(t, "Probe", mock.Anything, "ftp://x")
}

func TestEngine_Run_DeadURLsExcluded(t *testing.T) {
	t.Parallel()

	prober := new(mockProber)
	fetcher := new(mockFetcher)
	extractor := new(mockExtractor)

	soft := "https://soft.example"
	dead := "https://dead.example"
	good := "https://good.example"
	prober.On("Probe", mock.Anything, soft).Return(ProbeResult{URL: soft, Outcome: OutcomeSoftNotFound})
	prober.On("Probe", mock.Anything, dead).Return(ProbeResult{URL: dead, Outcome: OutcomeDeadStatus, StatusCode: 503})
	prober.On("Probe", mock.Anything, good).Return(aliveResult(good))
	fetcher.On("Fetch", mock.Anything, good).Return(FetchOutcome{URL: good, Body: "body", Attempts: 1})
	extractor.On("Extract", good, "body").Return([]Record{{URL: good, Title: "T"}}, nil)

	engine := newTestEngine(Config{Concurrency: 2}, prober, fetcher, extractor)
	dataset, err := engine.Run(context.Background(), []string{soft, dead, good})

	require.NoError(t, err)
	require.Equal(t, Dataset{{URL: good, Title: "T"}}, dataset)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, soft)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, dead)
}

func TestEngine_Run_FetchFailureIsolated(t *testing.T) {
	t.Parallel()

	prober := new(mockProber)
	fetcher := new(mockFetcher)
	extractor := new(mockExtractor)

	bad := "https://bad.example"
	good := "https://good.example"
	prober.On("Probe", mock.Anything, bad).Return(aliveResult(bad))
	prober.On("Probe", mock.Anything, good).Return(aliveResult(good))
	fetcher.On("Fetch", mock.Anything, bad).Return(FetchOutcome{URL: bad, Attempts: 3, Err: errors.New("connection reset")})
	fetcher.On("Fetch", mock.Anything, good).Return(FetchOutcome{URL: good, Body: "body", Attempts: 1})
	extractor.On("Extract", good, "body").Return([]Record{{URL: good, Title: "T"}}, nil)

	engine := newTestEngine(Config{Concurrency: 2}, prober, fetcher, extractor)
	dataset, err := engine.Run(context.Background(), []string{bad, good})

	require.NoError(t, err)
	require.Equal(t, Dataset{{URL: good, Title: "T"}}, dataset)
	extractor.AssertNotCalled(t, "Extract", bad, mock.Anything)
}

func TestEngine_Run_ExtractErrorIsolated(t *testing.T) {
	t.Parallel()

	prober := new(mockProber)
	fetcher := new(mockFetcher)
	extractor := new(mockExtractor)

	broken := "https://broken.example"
	good := "https://good.example"
	for _, u := range []string{broken, good} {
		prober.On("Probe", mock.Anything, u).Return(aliveResult(u))
		fetcher.On("Fetch", mock.Anything, u).Return(FetchOutcome{URL: u, Body: "body", Attempts: 1})
	}
	extractor.On("Extract", broken, "body").Return(nil, errors.New("parse error"))
	extractor.On("Extract", good, "body").Return([]Record{{URL: good, Title: "T"}}, nil)

	engine := newTestEngine(Config{Concurrency: 2}, prober, fetcher, extractor)
	dataset, err := engine.Run(context.Background(), []string{broken, good})

	require.NoError(t, err)
	require.Equal(t, Dataset{{URL: good, Title: "T"}}, dataset)
}

func TestEngine_Run_NoAliveURLs(t *testing.T) {
	t.Parallel()

	prober := new(mockProber)
	fetcher := new(mockFetcher)
	extractor := new(mockExtractor)

	u := "https://dead.example"
	prober.On("Probe", mock.Anything, u).Return(ProbeResult{URL: u, Outcome: OutcomeNetworkError, Err: errors.New("no route")})

	engine := newTestEngine(Config{Concurrency: 2}, prober, fetcher, extractor)
	dataset, err := engine.Run(context.Background(), []string{u, "garbage"})

	require.NoError(t, err)
	require.Empty(t, dataset)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestEngine_Run_EmptyInput(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(Config{}, new(mockProber), new(mockFetcher), new(mockExtractor))
	dataset, err := engine.Run(context.Background(), nil)

	require.NoError(t, err)
	require.Empty(t, dataset)
}

func TestEngine_Run_AllPagesEmpty(t *testing.T) {
	t.Parallel()

	prober := new(mockProber)
	fetcher := new(mockFetcher)
	extractor := new(mockExtractor)

	u := "https://empty.example"
	prober.On("Probe", mock.Anything, u).Return(aliveResult(u))
	fetcher.On("Fetch", mock.Anything, u).Return(FetchOutcome{URL: u, Body: "<html></html>", Attempts: 1})
	extractor.On("Extract", u, mock.AnythingOfType("string")).Return([]Record{}, nil)

	engine := newTestEngine(Config{Concurrency: 1}, prober, fetcher, extractor)
	dataset, err := engine.Run(context.Background(), []string{u})

	require.NoError(t, err)
	require.Empty(t, dataset)
}

// Output order must follow submission order no matter how the concurrent
// tasks interleave.
func TestEngine_Run_OrderingStable(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://one.example",
		"https://two.example",
		"https://three.example",
		"https://four.example",
		"https://five.example",
	}

	run := func() Dataset {
		prober := new(mockProber)
		fetcher := new(mockFetcher)
		extractor := new(mockExtractor)
		for _, u := range urls {
			u := u
			prober.On("Probe", mock.Anything, u).Return(aliveResult(u))
			fetcher.On("Fetch", mock.Anything, u).Return(FetchOutcome{URL: u, Body: u, Attempts: 1})
			extractor.On("Extract", u, u).Return([]Record{{URL: u, Title: u}}, nil)
		}
		engine := newTestEngine(Config{Concurrency: 3}, prober, fetcher, extractor)
		dataset, err := engine.Run(context.Background(), urls)
		require.NoError(t, err)
		return dataset
	}

	first := run()
	require.Len(t, first, len(urls))
	for i, u := range urls {
		require.Equal(t, u, first[i].URL)
	}
	require.Equal(t, first, run())
}

func TestEngine_Run_CanceledContextSurfaces(t *testing.T) {
	t.Parallel()

	prober := new(mockProber)
	fetcher := new(mockFetcher)
	extractor := new(mockExtractor)

	u := "https://a.example"
	prober.On("Probe", mock.Anything, u).Return(ProbeResult{URL: u, Outcome: OutcomeNetworkError, Err: context.Canceled})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := newTestEngine(Config{}, prober, fetcher, extractor)
	dataset, err := engine.Run(ctx, []string{u})

	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, dataset)
}
