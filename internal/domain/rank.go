package domain

import (
	"cmp"
	"slices"
)

// Rank orders regions by their latest positive count, highest first. The sort
// is stable, so regions with equal counts keep their input order.
func Rank(regions []Region, s *Store) []Region {
	out := slices.Clone(regions)
	slices.SortStableFunc(out, func(a, b Region) int {
		return cmp.Compare(s.Latest(b.Code), s.Latest(a.Code))
	})
	return out
}
