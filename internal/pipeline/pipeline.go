package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/case-growth-etl/internal/domain"
	"github.com/couchcryptid/case-growth-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Fetcher makes one attempt to bring the raw feed onto local disk.
type Fetcher interface {
	Fetch(ctx context.Context) (domain.FeedFile, error)
}

// Renderer draws one region's chart and returns its path relative to the report.
type Renderer interface {
	Render(ctx context.Context, spec domain.PlotSpec) (string, error)
}

// ReportWriter emits the ranked report.
type ReportWriter interface {
	Write(ctx context.Context, r domain.Report) error
}

// Publisher sends per-region summaries to a downstream sink.
type Publisher interface {
	Publish(ctx context.Context, r domain.Report) (int, error)
}

// Options tunes a Pipeline. Zero values fall back to defaults.
type Options struct {
	Analyzer domain.AnalyzerConfig
	Strict   bool
	Workers  int

	// MaxAttempts caps fetch attempts per run; zero retries until the context ends.
	MaxAttempts    int
	BackoffInitial time.Duration
	BackoffMax     time.Duration

	Clock clockwork.Clock
}

func (o Options) withDefaults() Options {
	if o.Analyzer == (domain.AnalyzerConfig{}) {
		o.Analyzer = domain.DefaultAnalyzer
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.BackoffInitial <= 0 {
		o.BackoffInitial = 200 * time.Millisecond
	}
	if o.BackoffMax < o.BackoffInitial {
		o.BackoffMax = o.BackoffInitial
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

// Pipeline orchestrates fetch, ingest, analyze, render, publish and report.
type Pipeline struct {
	fetcher   Fetcher
	renderer  Renderer
	writer    ReportWriter
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options

	ready atomic.Bool
	last  atomic.Pointer[domain.Report]
}

// New creates a Pipeline. publisher may be nil to skip summary publishing.
func New(f Fetcher, r Renderer, w ReportWriter, pub Publisher, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	return &Pipeline{
		fetcher:   f,
		renderer:  r,
		writer:    w,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
		opts:      opts.withDefaults(),
	}
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Restore seeds the pipeline with a report from an earlier process. The
// served output already reflects that report, so the pipeline reports ready
// before its own first run completes.
func (p *Pipeline) Restore(r domain.Report) {
	p.last.Store(&r)
	p.ready.Store(true)
}

// LastReport returns the most recent successful report, or nil.
func (p *Pipeline) LastReport() *domain.Report {
	return p.last.Load()
}

// Run repeats RunOnce every interval until the context is cancelled. Failed
// runs are logged and the previous report stays in place.
func (p *Pipeline) Run(ctx context.Context, interval time.Duration) error {
	p.logger.Info("pipeline started", "interval", interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	ticker := p.opts.Clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			p.logger.Error("run failed", "error", err)
		}

		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// RunOnce performs one complete pass. Ingestion errors abort the pass; a
// region whose chart cannot be rendered is reported without an image.
func (p *Pipeline) RunOnce(ctx context.Context) (domain.Report, error) {
	start := p.opts.Clock.Now()

	report, err := p.runOnce(ctx)
	p.metrics.RunDuration.Observe(p.opts.Clock.Since(start).Seconds())
	if err != nil {
		p.metrics.RunsTotal.WithLabelValues("failure").Inc()
		return domain.Report{}, err
	}

	p.metrics.RunsTotal.WithLabelValues("success").Inc()
	p.metrics.LastSuccess.Set(float64(p.opts.Clock.Now().Unix()))
	p.last.Store(&report)
	p.ready.Store(true)
	return report, nil
}

func (p *Pipeline) runOnce(ctx context.Context) (domain.Report, error) {
	file, err := p.fetch(ctx)
	if err != nil {
		return domain.Report{}, err
	}

	store := domain.NewStore()
	if err := p.ingest(file, store); err != nil {
		return domain.Report{}, err
	}

	regions := domain.RegionsIn(store)
	results, err := p.analyzeAll(ctx, store, regions)
	if err != nil {
		return domain.Report{}, err
	}

	analyses := make(map[string]domain.Analysis, len(results))
	images := make(map[string]string, len(results))
	for _, res := range results {
		analyses[res.analysis.Region.Code] = res.analysis
		images[res.analysis.Region.Code] = res.image
	}

	ranked := domain.Rank(regions, store)
	report := domain.BuildReport(ranked, analyses, p.opts.Clock.Now())
	if report.Total != nil {
		report.Total.Image = images[domain.TotalRegion]
	}
	for i := range report.Entries {
		report.Entries[i].Image = images[report.Entries[i].Region.Code]
	}

	p.publish(ctx, report)

	if err := p.writer.Write(ctx, report); err != nil {
		return domain.Report{}, fmt.Errorf("write report: %w", err)
	}
	p.logger.Info("run complete", "regions", len(report.Entries), "feed_cached", file.Cached)
	return report, nil
}

func (p *Pipeline) ingest(file domain.FeedFile, store *domain.Store) error {
	f, err := os.Open(file.Path)
	if err != nil {
		p.metrics.IngestErrors.WithLabelValues("other").Inc()
		return fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()

	stats, err := domain.Ingest(f, store, domain.IngestOptions{
		Strict: p.opts.Strict,
		Today:  domain.DateAt(p.opts.Clock.Now()),
	})
	if err != nil {
		p.metrics.IngestErrors.WithLabelValues(ingestErrorKind(err)).Inc()
		return err
	}

	p.metrics.RowsIngested.Add(float64(stats.Rows))
	p.metrics.RegionsLoaded.Set(float64(stats.Regions))
	p.logger.Info("feed ingested",
		"rows", stats.Rows,
		"regions", stats.Regions,
		"first", stats.First.String(),
		"last", stats.Last.String(),
	)
	return nil
}

func (p *Pipeline) publish(ctx context.Context, r domain.Report) {
	if p.publisher == nil {
		return
	}
	n, err := p.publisher.Publish(ctx, r)
	if err != nil {
		p.logger.Error("publish summaries failed", "error", err)
		return
	}
	p.metrics.SummariesOut.Add(float64(n))
}

func ingestErrorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrSchemaMismatch):
		return "schema"
	case errors.Is(err, domain.ErrDataGap):
		return "gap"
	default:
		var re *domain.RowError
		if errors.As(err, &re) {
			return "row"
		}
		return "other"
	}
}
