package domain

import (
	"maps"
	"slices"
)

// BuildAggregate rebuilds the TOTAL series from every real region. Dates are
// summed in ascending order over the union of all regions' dates, and
// accumulation stops at the first date whose summed positive count is zero,
// which drops spurious all-zero trailing rows from the upstream feed.
func BuildAggregate(s *Store) {
	s.Delete(TotalRegion)

	type sums struct{ positive, negative int64 }
	byDate := make(map[Date]sums)
	for region, days := range s.series {
		if region == TotalRegion {
			continue
		}
		for d, obs := range days {
			cur := byDate[d]
			cur.positive += obs.Positive
			cur.negative += obs.Negative
			byDate[d] = cur
		}
	}

	for _, d := range slices.Sorted(maps.Keys(byDate)) {
		total := byDate[d]
		if total.positive == 0 {
			break
		}
		s.Put(TotalRegion, d, total.positive, total.negative)
	}
}
