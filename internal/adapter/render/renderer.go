package render

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/case-growth-etl/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	seriesColor  = color.RGBA{B: 0xFF, A: 0xFF}
	overlayColor = color.RGBA{R: 0xFF, A: 0xFF}
)

const (
	imageWidth  = 8 * vg.Inch
	imageHeight = 5 * vg.Inch
	graphsDir   = "graphs"
)

// Renderer draws PlotSpecs to PNG files with gonum/plot.
// It implements pipeline.Renderer.
type Renderer struct {
	outDir string
	logger *slog.Logger
}

// NewRenderer creates a renderer writing under outDir/graphs.
func NewRenderer(outDir string, logger *slog.Logger) *Renderer {
	return &Renderer{outDir: outDir, logger: logger}
}

// Render writes one chart and returns its path relative to the output directory.
func (r *Renderer) Render(ctx context.Context, spec domain.PlotSpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p, err := buildPlot(spec)
	if err != nil {
		return "", fmt.Errorf("build plot %s: %w", spec.Region.Code, err)
	}

	rel := filepath.Join(graphsDir, spec.Region.Code+".png")
	full := filepath.Join(r.outDir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create graphs dir: %w", err)
	}
	if err := p.Save(imageWidth, imageHeight, full); err != nil {
		return "", fmt.Errorf("save plot %s: %w", spec.Region.Code, err)
	}

	r.logger.Debug("plot rendered", "region", spec.Region.Code, "path", full, "points", len(spec.Points))
	return filepath.ToSlash(rel), nil
}

func buildPlot(spec domain.PlotSpec) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = spec.Title
	p.Y.Label.Text = "positives"
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	p.X.Tick.Marker = plot.ConstantTicks(ticks(spec.Points))
	p.X.Tick.Label.Rotation = -math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XLeft
	p.X.Tick.Label.YAlign = draw.YTop

	if spec.YMax > 0 {
		p.Y.Min = 0
		p.Y.Max = spec.YMax
	}
	if len(spec.Points) == 0 {
		p.X.Min, p.X.Max = 0, 1
		if spec.YMax == 0 {
			p.Y.Min, p.Y.Max = 0, 1
		}
		return p, nil
	}

	xys := make(plotter.XYs, len(spec.Points))
	labels := make([]string, len(spec.Points))
	labelXYs := make([]plotter.XY, len(spec.Points))
	for i, pt := range spec.Points {
		xys[i] = plotter.XY{X: float64(pt.Index), Y: float64(pt.Value)}
		labels[i] = strconv.FormatInt(pt.Value, 10)
		labelXYs[i] = plotter.XY{X: float64(pt.Index), Y: float64(pt.Value) + spec.LabelOffset}
	}

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, err
	}
	line.Color = seriesColor
	line.Width = vg.Points(1.5)
	points.Color = seriesColor
	points.Shape = draw.CircleGlyph{}
	points.Radius = vg.Points(2)
	p.Add(line, points)
	p.Legend.Add("positives", line, points)

	values, err := plotter.NewLabels(plotter.XYLabels{XYs: labelXYs, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range values.TextStyle {
		values.TextStyle[i].Color = seriesColor
		values.TextStyle[i].XAlign = draw.XCenter
	}
	p.Add(values)

	if fit := spec.Overlay; fit != nil {
		curve := plotter.NewFunction(fit.At)
		curve.XMin = float64(fit.Start)
		curve.XMax = float64(fit.End)
		curve.Samples = 4 * (fit.End - fit.Start + 1)
		curve.Color = overlayColor
		curve.Width = vg.Points(2)
		curve.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		p.Add(curve)
		p.Legend.Add(overlayTitle(*fit), curve)
	}

	return p, nil
}

func ticks(points []domain.PlotPoint) []plot.Tick {
	out := make([]plot.Tick, len(points))
	for i, pt := range points {
		out[i] = plot.Tick{Value: float64(pt.Index), Label: pt.Label}
	}
	return out
}

func overlayTitle(fit domain.Fit) string {
	if fit.Growing {
		return fmt.Sprintf("%.1f day doubling (%d-day fit)", fit.DoublingDays, fit.Window)
	}
	return fmt.Sprintf("x%.3f/day (%d-day fit)", fit.Factor, fit.Window)
}
