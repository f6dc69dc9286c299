package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tmacri/pagesift/internal/config"
	"github.com/tmacri/pagesift/internal/extractor"
	collyfetcher "github.com/tmacri/pagesift/internal/fetcher/colly"
	"github.com/tmacri/pagesift/internal/logging"
	"github.com/tmacri/pagesift/internal/metrics"
	"github.com/tmacri/pagesift/internal/pipeline"
	"github.com/tmacri/pagesift/internal/prober"
	"github.com/tmacri/pagesift/internal/progress"
	"github.com/tmacri/pagesift/internal/progress/sinks"
	"github.com/tmacri/pagesift/internal/sink"
)

// newCollectCmd creates the 'collect' subcommand, which runs the pipeline
// over the supplied URL list and writes the CSV dataset.
func newCollectCmd() *cobra.Command {
	var (
		urls   []string
		output string
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Fetches the given URLs and writes extracted text as CSV",
		Long: `Runs each URL through syntax validation and a liveness probe, fetches the
survivors concurrently with retry, extracts headings and paragraphs, and
writes one CSV row per (title, paragraph) pair. URLs can be passed with
--urls or entered interactively.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCollect(cmd, urls, output)
		},
	}

	cmd.Flags().StringSliceVarP(&urls, "urls", "u", nil,
		"URLs to scrape; interactive input is used when omitted")
	cmd.Flags().StringVarP(&output, "output", "o", "",
		"output CSV path (default from config, scraped_data.csv)")

	return cmd
}

func runCollect(cmd *cobra.Command, urls []string, output string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development || verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	if len(urls) == 0 {
		logger.Info("no --urls given, collecting URLs interactively")
		urls = gatherURLs(cmd.InOrStdin(), cmd.OutOrStdout())
	}
	if len(urls) == 0 {
		logger.Warn("no URLs provided, exiting")
		return nil
	}
	if output == "" {
		output = cfg.Output.Path
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	promSink, err := sinks.NewPrometheusSink(registry)
	if err != nil {
		return fmt.Errorf("init prometheus sink: %w", err)
	}
	hub := progress.NewHub(
		progress.Config{Logger: logger},
		sinks.NewLogSink(logger),
		promSink,
	)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := hub.Close(closeCtx); cerr != nil {
			logger.Warn("progress hub close failed", zap.Error(cerr))
		}
	}()

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Port, registry, logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if serr := srv.Shutdown(shutdownCtx); serr != nil {
				logger.Warn("metrics shutdown failed", zap.Error(serr))
			}
		}()
	}

	engine := pipeline.NewEngine(
		pipeline.Config{Concurrency: cfg.Pipeline.Concurrency},
		prober.New(cfg.ProbeTimeout(), logger.Named("prober")),
		pipeline.NewRetryingFetcher(
			collyfetcher.New(collyfetcher.Config{Timeout: cfg.FetchTimeout()}, logger.Named("fetcher")),
			pipeline.NewRetryPolicy(cfg.HTTP.MaxAttempts, cfg.BackoffInitial(), cfg.BackoffMax()),
			logger.Named("fetcher"),
		),
		extractor.New(logger.Named("extractor")),
		hub,
		logger.Named("pipeline"),
	)

	start := time.Now()
	dataset, err := engine.Run(ctx, urls)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}
	if len(dataset) == 0 {
		// Legitimate terminal state: nothing to write, exit is successful.
		logger.Info("total scraping time", zap.Duration("elapsed", time.Since(start)))
		return nil
	}

	writer := sink.NewCSVWriter(logger.Named("sink"))
	path, err := writer.Write(ctx, output, dataset)
	if err != nil {
		return fmt.Errorf("save CSV: %w", err)
	}
	logger.Info("data saved", zap.String("path", path))
	logger.Info("total scraping time", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// gatherURLs prompts for URLs one per line until "done" or EOF. Input that
// does not start with an http scheme is rejected with a reminder; the real
// syntax check happens in the pipeline.
func gatherURLs(in io.Reader, out io.Writer) []string {
	scanner := bufio.NewScanner(in)
	var urls []string
	for {
		fmt.Fprint(out, "Enter a URL to scrape (or type 'done' to finish): ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, "done") {
			break
		}
		if strings.HasPrefix(line, "http") {
			urls = append(urls, line)
			continue
		}
		fmt.Fprintln(out, "Please enter a valid URL.")
	}
	return urls
}
