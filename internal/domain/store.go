package domain

import (
	"maps"
	"slices"
)

// Observation is one day of cumulative counts for a region.
type Observation struct {
	Date     Date  `json:"date"`
	Positive int64 `json:"positive"`
	Negative int64 `json:"negative"`
}

// Store maps region code to its date-indexed observations. It is populated in
// a single pass per run and then only read, so it carries no locking.
type Store struct {
	series map[string]map[Date]Observation
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{series: make(map[string]map[Date]Observation)}
}

// Put records counts for (region, date), overwriting any earlier value.
func (s *Store) Put(region string, date Date, positive, negative int64) {
	days, ok := s.series[region]
	if !ok {
		days = make(map[Date]Observation)
		s.series[region] = days
	}
	days[date] = Observation{Date: date, Positive: positive, Negative: negative}
}

// Get returns the region's observations in ascending date order.
func (s *Store) Get(region string) []Observation {
	days := s.series[region]
	out := make([]Observation, 0, len(days))
	for _, d := range slices.Sorted(maps.Keys(days)) {
		out = append(out, days[d])
	}
	return out
}

// Has reports whether the region has an observation on date.
func (s *Store) Has(region string, date Date) bool {
	_, ok := s.series[region][date]
	return ok
}

// Len returns the number of observations for region.
func (s *Store) Len(region string) int {
	return len(s.series[region])
}

// Regions returns every region code in the store, sorted.
func (s *Store) Regions() []string {
	return slices.Sorted(maps.Keys(s.series))
}

// Latest returns the positive count on the region's most recent date, or 0
// for an unknown region.
func (s *Store) Latest(region string) int64 {
	d, ok := s.LatestDate(region)
	if !ok {
		return 0
	}
	return s.series[region][d].Positive
}

// Earliest returns the region's first observed date.
func (s *Store) Earliest(region string) (Date, bool) {
	days := s.series[region]
	if len(days) == 0 {
		return 0, false
	}
	return slices.Min(slices.Collect(maps.Keys(days))), true
}

// LatestDate returns the region's last observed date.
func (s *Store) LatestDate(region string) (Date, bool) {
	days := s.series[region]
	if len(days) == 0 {
		return 0, false
	}
	return slices.Max(slices.Collect(maps.Keys(days))), true
}

// Delete removes a region and all its observations.
func (s *Store) Delete(region string) {
	delete(s.series, region)
}

// Reset empties the store.
func (s *Store) Reset() {
	clear(s.series)
}

// replaceWith makes s an exact copy of src.
func (s *Store) replaceWith(src *Store) {
	s.Reset()
	for region, days := range src.series {
		s.series[region] = maps.Clone(days)
	}
}
