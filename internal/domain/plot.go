package domain

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Charts get a fixed y range only when the displayed values spread by more
// than yRangeMinSpread; the range then runs to yHeadroom times the maximum.
const (
	yRangeMinSpread = 100
	yHeadroom       = 1.3
	labelSteps      = 20
)

// PlotPoint is one (index, value, label) sample handed to a renderer.
type PlotPoint struct {
	Index int    `json:"index"`
	Value int64  `json:"value"`
	Label string `json:"label"`
}

// PlotSpec is a declarative chart description. It names what to draw, not
// how: renderers decide styling.
type PlotSpec struct {
	Region  Region      `json:"region"`
	Title   string      `json:"title"`
	Mode    Regime      `json:"mode"`
	Points  []PlotPoint `json:"points"`
	Overlay *Fit        `json:"overlay,omitempty"`

	// YMax is zero when the renderer should pick the range itself.
	YMax float64 `json:"y_max"`

	// LabelOffset is how far above each point its value label sits.
	LabelOffset float64 `json:"label_offset"`
}

// NewPlotSpec builds the chart description for a displayed series.
func NewPlotSpec(region Region, display []Observation, mode Regime, fit *Fit) PlotSpec {
	spec := PlotSpec{
		Region:      region,
		Title:       fmt.Sprintf("%s (%s)", region.Name, region.Code),
		Mode:        mode,
		Points:      make([]PlotPoint, len(display)),
		Overlay:     fit,
		LabelOffset: 1,
	}

	values := make([]float64, len(display))
	for i, o := range display {
		spec.Points[i] = PlotPoint{Index: i, Value: o.Positive, Label: o.Date.Label()}
		values[i] = float64(o.Positive)
	}
	if len(values) == 0 {
		return spec
	}

	hi, lo := floats.Max(values), floats.Min(values)
	if hi-lo > yRangeMinSpread {
		spec.YMax = float64(int64(yHeadroom * hi))
		spec.LabelOffset = float64(int64(yHeadroom * hi / labelSteps))
	}
	return spec
}
