package domain

import (
	"fmt"
	"math"
)

// DefaultFitWindow is the trailing window, in days, of the growth fit.
const DefaultFitWindow = 6

// minRateValue is the smallest count for which a day-over-day rate is reported.
const minRateValue = 8

// Fit is an exponential growth estimate over a trailing window:
// value(x) = Base * Factor^(x-Start) for x in [Start, End].
type Fit struct {
	Window int     `json:"window"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Base   float64 `json:"base"`
	Factor float64 `json:"factor"`

	// DoublingDays is ln2/ln(Factor). It is only meaningful when Growing;
	// a flat or shrinking series never doubles and reports zero.
	DoublingDays float64 `json:"doubling_days"`
	Growing      bool    `json:"growing"`
}

// FitGrowth estimates the daily growth factor from values[N-1-window] to
// values[N-1]. It returns ErrInsufficientWindow when the series has no more
// than window points and ErrDivisionByZero when the window starts at zero.
func FitGrowth(values []int64, window int) (Fit, error) {
	if window <= 0 {
		return Fit{}, fmt.Errorf("fit window must be positive, got %d", window)
	}
	end := len(values) - 1
	start := end - window
	if start < 0 {
		return Fit{}, fmt.Errorf("%w: %d points, window %d", ErrInsufficientWindow, len(values), window)
	}
	if values[start] == 0 {
		return Fit{}, fmt.Errorf("%w: value at index %d is zero", ErrDivisionByZero, start)
	}

	base := float64(values[start])
	factor := math.Pow(float64(values[end])/base, 1/float64(window))

	f := Fit{
		Window: window,
		Start:  start,
		End:    end,
		Base:   base,
		Factor: factor,
	}
	if factor > 1 {
		f.Growing = true
		f.DoublingDays = math.Ln2 / math.Log(factor)
	}
	return f, nil
}

// At evaluates the fitted curve at index x.
func (f Fit) At(x float64) float64 {
	return f.Base * math.Pow(f.Factor, x-float64(f.Start))
}

// Curve samples the fitted curve at every integer index in [Start, End].
func (f Fit) Curve() []float64 {
	out := make([]float64, 0, f.End-f.Start+1)
	for x := f.Start; x <= f.End; x++ {
		out = append(out, f.At(float64(x)))
	}
	return out
}

// DailyRates returns values[i]/values[i-1] for each index. The first point,
// points below 8, and points after a zero all report a neutral rate of 1 so
// that small counts do not produce noisy or infinite ratios.
func DailyRates(values []int64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if i == 0 || v < minRateValue || values[i-1] == 0 {
			out[i] = 1
			continue
		}
		out[i] = float64(v) / float64(values[i-1])
	}
	return out
}
