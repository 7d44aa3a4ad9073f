package domain

import "fmt"

// Regime is the display mode chosen for a series.
type Regime int

const (
	// RegimeRaw displays every observation.
	RegimeRaw Regime = iota
	// RegimeGrowth displays observations from the first threshold crossing onward.
	RegimeGrowth
)

func (r Regime) String() string {
	switch r {
	case RegimeRaw:
		return "raw"
	case RegimeGrowth:
		return "growth"
	default:
		return fmt.Sprintf("regime(%d)", int(r))
	}
}

// MarshalText encodes the regime by name.
func (r Regime) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ClassifierConfig holds the magnitude threshold and the number of points at
// or above it required to switch into growth mode.
type ClassifierConfig struct {
	Threshold int64
	MinPoints int
}

// DefaultClassifier switches to growth mode once six observations reach 100.
var DefaultClassifier = ClassifierConfig{Threshold: 100, MinPoints: 6}

// Classify decides the regime of a full series. It holds no state between
// calls: the answer depends only on values.
func Classify(values []int64, cfg ClassifierConfig) Regime {
	n := 0
	for _, v := range values {
		if v >= cfg.Threshold {
			n++
		}
	}
	if n >= cfg.MinPoints {
		return RegimeGrowth
	}
	return RegimeRaw
}

// TrimStart returns the index of the first value at or above threshold, or
// len(values) if none is.
func TrimStart(values []int64, threshold int64) int {
	for i, v := range values {
		if v >= threshold {
			return i
		}
	}
	return len(values)
}

// UnmarshalText decodes a regime name, so published reports read back intact.
func (r *Regime) UnmarshalText(b []byte) error {
	switch string(b) {
	case "raw":
		*r = RegimeRaw
	case "growth":
		*r = RegimeGrowth
	default:
		return fmt.Errorf("unknown regime %q", b)
	}
	return nil
}
