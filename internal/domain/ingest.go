package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FeedColumns is the leading-column contract of the daily feed. Columns after
// these are ignored.
var FeedColumns = []string{"date", "state", "positive", "negative"}

const (
	colDate = iota
	colRegion
	colPositive
	colNegative
)

// IngestOptions controls parsing and validation of one feed.
type IngestOptions struct {
	// Strict rejects empty count fields instead of reading them as zero.
	Strict bool

	// Today is exempt from gap validation because its data may still be arriving.
	Today Date
}

// IngestStats summarizes a successful ingestion.
type IngestStats struct {
	Rows    int
	Regions int
	First   Date
	Last    Date
}

// Ingest parses a CSV feed, validates every region for gaps, builds the
// aggregate series, and then replaces the contents of store. On any error the
// store is left untouched, so a run never sees partially ingested data.
//
// Empty count fields are read as zero unless opts.Strict is set. Upstream
// feeds leave fields blank for "not reported", and zero is the conservative
// reading for a cumulative count that is only ever plotted and compared.
func Ingest(r io.Reader, store *Store, opts IngestOptions) (IngestStats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return IngestStats{}, &SchemaMismatchError{Want: FeedColumns}
	}
	if err != nil {
		return IngestStats{}, fmt.Errorf("read feed header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return IngestStats{}, err
	}

	scratch := NewStore()
	var stats IngestStats
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return IngestStats{}, fmt.Errorf("read feed line %d: %w", line, err)
		}
		if isBlank(row) {
			continue
		}

		obs, region, err := parseRow(row, line, opts.Strict)
		if err != nil {
			return IngestStats{}, err
		}
		scratch.Put(region, obs.Date, obs.Positive, obs.Negative)

		if stats.Rows == 0 || obs.Date < stats.First {
			stats.First = obs.Date
		}
		if stats.Rows == 0 || obs.Date > stats.Last {
			stats.Last = obs.Date
		}
		stats.Rows++
	}

	if err := Validate(scratch, opts.Today); err != nil {
		return IngestStats{}, err
	}
	stats.Regions = len(scratch.Regions())

	BuildAggregate(scratch)
	store.replaceWith(scratch)
	return stats, nil
}

func checkHeader(header []string) error {
	got := make([]string, len(header))
	for i, h := range header {
		got[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	if len(got) < len(FeedColumns) {
		return &SchemaMismatchError{Got: got, Want: FeedColumns}
	}
	for i, want := range FeedColumns {
		if got[i] != want {
			return &SchemaMismatchError{Got: got, Want: FeedColumns}
		}
	}
	return nil
}

func parseRow(row []string, line int, strict bool) (Observation, string, error) {
	if len(row) < len(FeedColumns) {
		return Observation{}, "", &RowError{Line: line, Field: "row", Err: ErrShortRow}
	}

	region := strings.ToUpper(strings.TrimSpace(row[colRegion]))
	switch region {
	case "":
		return Observation{}, "", &RowError{Line: line, Field: FeedColumns[colRegion], Err: ErrEmptyField}
	case TotalRegion:
		return Observation{}, "", &RowError{Line: line, Field: FeedColumns[colRegion], Err: ErrReservedRegion}
	}

	date, err := ParseDate(row[colDate])
	if err != nil {
		return Observation{}, "", &RowError{Line: line, Field: FeedColumns[colDate], Err: err}
	}

	positive, err := parseCount(row[colPositive], strict)
	if err != nil {
		return Observation{}, "", &RowError{Line: line, Field: FeedColumns[colPositive], Err: err}
	}
	negative, err := parseCount(row[colNegative], strict)
	if err != nil {
		return Observation{}, "", &RowError{Line: line, Field: FeedColumns[colNegative], Err: err}
	}

	return Observation{Date: date, Positive: positive, Negative: negative}, region, nil
}

// parseCount reads a non-negative integer. Empty means zero unless strict.
func parseCount(s string, strict bool) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if strict {
			return 0, ErrEmptyField
		}
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedCount, s)
	}
	return v, nil
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
