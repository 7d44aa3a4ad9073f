package pipeline

import (
	"context"
	"errors"

	"github.com/couchcryptid/case-growth-etl/internal/domain"
	"golang.org/x/sync/errgroup"
)

type regionResult struct {
	analysis domain.Analysis
	image    string
}

// analyzeAll analyzes and renders every region plus the aggregate on a
// bounded worker pool. Regions share no mutable state; each goroutine writes
// only its own slot, so the result order matches the input order.
func (p *Pipeline) analyzeAll(ctx context.Context, store *domain.Store, regions []domain.Region) ([]regionResult, error) {
	all := append([]domain.Region{domain.LookupRegion(domain.TotalRegion)}, regions...)
	results := make([]regionResult, len(all))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, region := range all {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.analyzeRegion(gctx, region, store.Get(region.Code))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) analyzeRegion(ctx context.Context, region domain.Region, series []domain.Observation) regionResult {
	a := domain.Analyze(region, series, p.opts.Analyzer)
	p.recordFit(a)

	res := regionResult{analysis: a}
	if p.renderer == nil {
		return res
	}
	image, err := p.renderer.Render(ctx, a.Plot)
	if err != nil {
		p.logger.Warn("render failed, reporting without chart", "region", region.Code, "error", err)
		return res
	}
	res.image = image
	return res
}

func (p *Pipeline) recordFit(a domain.Analysis) {
	result := "raw"
	switch {
	case a.Fit != nil:
		result = "fitted"
	case errors.Is(a.FitErr, domain.ErrInsufficientWindow):
		result = "insufficient_window"
	case errors.Is(a.FitErr, domain.ErrDivisionByZero):
		result = "division_by_zero"
	case a.FitErr != nil:
		result = "error"
	}
	p.metrics.FitResults.WithLabelValues(result).Inc()

	if a.FitErr != nil {
		p.logger.Debug("growth fit unavailable, displaying raw",
			"region", a.Region.Code,
			"points", len(a.Display),
			"error", a.FitErr,
		)
	}
}
