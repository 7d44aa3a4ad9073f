// Command casegrowth ingests the daily per-region case feed, fits growth
// rates, and writes a ranked chart report.
//
// Usage:
//
//	casegrowth run     one pass, exit code reports the failing stage
//	casegrowth serve   periodic refresh plus HTTP health, metrics and report
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/case-growth-etl/internal/adapter/feed"
	"github.com/couchcryptid/case-growth-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/case-growth-etl/internal/adapter/kafka"
	"github.com/couchcryptid/case-growth-etl/internal/adapter/render"
	"github.com/couchcryptid/case-growth-etl/internal/adapter/report"
	"github.com/couchcryptid/case-growth-etl/internal/config"
	"github.com/couchcryptid/case-growth-etl/internal/domain"
	"github.com/couchcryptid/case-growth-etl/internal/observability"
	"github.com/couchcryptid/case-growth-etl/internal/pipeline"
)

func main() {
	mode := "run"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}
	if mode != "run" && mode != "serve" {
		fmt.Fprintf(os.Stderr, "usage: %s [run|serve]\n", os.Args[0])
		os.Exit(pipeline.ExitFailure)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(pipeline.ExitFailure)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	fetcher := feed.NewFetcher(cfg.FeedURL, cfg.FeedCachePath, cfg.FeedCacheTTL, cfg.FetchTimeout, logger)
	renderer := render.NewRenderer(cfg.OutputDir, logger)
	writer := report.NewWriter(cfg.OutputDir, logger)

	// A nil *Writer must not reach the pipeline as a non-nil interface.
	var publisher pipeline.Publisher
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		publisher = kafkaWriter
		logger.Info("kafka summaries enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSummaryTopic)
	}

	p := pipeline.New(fetcher, renderer, writer, publisher, logger, metrics, pipeline.Options{
		Analyzer: domain.AnalyzerConfig{
			Classifier: domain.ClassifierConfig{
				Threshold: cfg.GrowthThreshold,
				MinPoints: cfg.GrowthMinPoints,
			},
			Window: cfg.FitWindow,
		},
		Strict:         cfg.StrictIngest,
		Workers:        cfg.AnalyzeWorkers,
		MaxAttempts:    cfg.FetchMaxAttempts,
		BackoffInitial: cfg.FetchBackoffInitial,
		BackoffMax:     cfg.FetchBackoffMax,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	var code int
	if mode == "run" {
		code = runOnce(ctx, p, logger)
	} else {
		restore(writer, p, logger)
		serve(ctx, cfg, p, logger)
	}
	stop()

	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	os.Exit(code)
}

func runOnce(ctx context.Context, p *pipeline.Pipeline, logger *slog.Logger) int {
	r, err := p.RunOnce(ctx)
	if err != nil {
		code := pipeline.ExitCode(err)
		logger.Error("run failed", "error", err, "exit_code", code)
		return code
	}
	logger.Info("report written", "regions", len(r.Entries))
	return pipeline.ExitOK
}

// restore picks up the report left by a previous process so the served page
// and readiness survive a restart.
func restore(writer *report.Writer, p *pipeline.Pipeline, logger *slog.Logger) {
	prev, err := writer.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		logger.Warn("ignoring previous report", "error", err)
		return
	}
	p.Restore(prev)
	logger.Info("previous report restored", "generated_at", prev.GeneratedAt, "regions", len(prev.Entries))
}

func serve(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) {
	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.OutputDir, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx, cfg.RefreshInterval); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}

	logger.Info("shutdown complete")
}
