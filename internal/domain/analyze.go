package domain

// AnalyzerConfig combines regime classification and fit settings.
type AnalyzerConfig struct {
	Classifier ClassifierConfig
	Window     int
}

// DefaultAnalyzer uses the default classifier and a six-day fit window.
var DefaultAnalyzer = AnalyzerConfig{Classifier: DefaultClassifier, Window: DefaultFitWindow}

// Analysis is everything derived from one region's series in one pass.
type Analysis struct {
	Region Region `json:"region"`
	Latest int64  `json:"latest"`

	// Regime is the classifier's answer. Mode is what is actually displayed:
	// it falls back to raw when a growth series cannot be fitted.
	Regime Regime `json:"regime"`
	Mode   Regime `json:"mode"`

	Display []Observation `json:"display"`
	Rates   []float64     `json:"rates"`
	Fit     *Fit          `json:"fit,omitempty"`
	FitErr  error         `json:"-"`
	Plot    PlotSpec      `json:"plot"`
}

// Analyze classifies a region's series, trims it in growth mode, fits the
// trailing growth rate, and builds the plot description. A fit failure is
// local to the region: it is recorded in FitErr and the region is displayed
// raw without an overlay.
func Analyze(region Region, series []Observation, cfg AnalyzerConfig) Analysis {
	values := positives(series)

	a := Analysis{
		Region:  region,
		Regime:  Classify(values, cfg.Classifier),
		Mode:    RegimeRaw,
		Display: series,
	}
	if len(series) > 0 {
		a.Latest = series[len(series)-1].Positive
	}

	if a.Regime == RegimeGrowth {
		trimmed := series[TrimStart(values, cfg.Classifier.Threshold):]
		fit, err := FitGrowth(positives(trimmed), cfg.Window)
		if err != nil {
			a.FitErr = err
		} else {
			a.Mode = RegimeGrowth
			a.Display = trimmed
			a.Fit = &fit
		}
	}

	a.Rates = DailyRates(positives(a.Display))
	a.Plot = NewPlotSpec(region, a.Display, a.Mode, a.Fit)
	return a
}

func positives(series []Observation) []int64 {
	out := make([]int64, len(series))
	for i, o := range series {
		out[i] = o.Positive
	}
	return out
}
