package domain

import "time"

// ReportEntry is one region's line in the published report.
type ReportEntry struct {
	Region     Region  `json:"region"`
	Rank       int     `json:"rank"`
	Latest     int64   `json:"latest"`
	LatestDate string  `json:"latest_date"`
	Regime     Regime  `json:"regime"`
	Mode       Regime  `json:"mode"`
	Fit        *Fit    `json:"fit,omitempty"`
	DailyRate  float64 `json:"daily_rate"`
	Image      string  `json:"image,omitempty"`

	// Points is the displayed series, trimmed in growth mode.
	Points []PlotPoint `json:"points"`
}

// Report is the ranked output handed to the report and summary collaborators.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Total       *ReportEntry  `json:"total,omitempty"`
	Entries     []ReportEntry `json:"entries"`
}

// NewReportEntry summarizes an analysis. rank is 1-based; zero marks the aggregate.
func NewReportEntry(a Analysis, rank int) ReportEntry {
	e := ReportEntry{
		Region: a.Region,
		Rank:   rank,
		Latest: a.Latest,
		Regime: a.Regime,
		Mode:   a.Mode,
		Fit:    a.Fit,
		Points: a.Plot.Points,
	}
	if n := len(a.Display); n > 0 {
		e.LatestDate = a.Display[n-1].Date.String()
	}
	if n := len(a.Rates); n > 0 {
		e.DailyRate = a.Rates[n-1]
	}
	return e
}

// BuildReport orders analyses by the ranking of regions. Analyses may arrive
// in any order; the output order depends only on ranked.
func BuildReport(ranked []Region, analyses map[string]Analysis, generatedAt time.Time) Report {
	r := Report{
		GeneratedAt: generatedAt,
		Entries:     make([]ReportEntry, 0, len(ranked)),
	}
	if total, ok := analyses[TotalRegion]; ok {
		e := NewReportEntry(total, 0)
		r.Total = &e
	}
	for i, region := range ranked {
		a, ok := analyses[region.Code]
		if !ok {
			continue
		}
		r.Entries = append(r.Entries, NewReportEntry(a, i+1))
	}
	return r
}
