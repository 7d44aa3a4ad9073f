package domain

// Validate walks every region day by day from its earliest to its latest
// observation and returns a *DataGapError for the first missing day. The day
// passed as today is exempt because the feed may not have caught up with it.
// Regions are checked in sorted order so the reported gap is deterministic.
func Validate(s *Store, today Date) error {
	for _, region := range s.Regions() {
		if region == TotalRegion {
			continue
		}
		if err := validateRegion(s, region, today); err != nil {
			return err
		}
	}
	return nil
}

func validateRegion(s *Store, region string, today Date) error {
	first, ok := s.Earliest(region)
	if !ok {
		return nil
	}
	last, _ := s.LatestDate(region)

	for d := first; d <= last; d = d.Next() {
		if d == today {
			continue
		}
		if !s.Has(region, d) {
			return &DataGapError{Region: region, Missing: d}
		}
	}
	return nil
}
