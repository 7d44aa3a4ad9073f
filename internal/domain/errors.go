package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchemaMismatch means the feed header no longer matches the expected columns.
	ErrSchemaMismatch = errors.New("feed schema mismatch")

	// ErrDataGap means a region is missing a calendar day inside its observed range.
	ErrDataGap = errors.New("data gap")

	// ErrMalformedCount means a count field is not a non-negative integer.
	ErrMalformedCount = errors.New("malformed count")

	// ErrEmptyField is only returned in strict mode, where empty counts are not defaulted to zero.
	ErrEmptyField = errors.New("empty field")

	// ErrInsufficientWindow means a series is shorter than the fit window.
	ErrInsufficientWindow = errors.New("insufficient window")

	// ErrDivisionByZero means the fit window starts at a zero count.
	ErrDivisionByZero = errors.New("division by zero")
)

// SchemaMismatchError reports the header actually seen in the feed.
type SchemaMismatchError struct {
	Got  []string
	Want []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("feed schema mismatch: header [%s], want leading columns [%s]",
		strings.Join(e.Got, ","), strings.Join(e.Want, ","))
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }

// DataGapError names the first missing day found in a region's series.
type DataGapError struct {
	Region  string
	Missing Date
}

func (e *DataGapError) Error() string {
	return fmt.Sprintf("data gap: region %s has no observation for %s", e.Region, e.Missing)
}

func (e *DataGapError) Unwrap() error { return ErrDataGap }

// RowError locates a row-level parse failure. Line is 1-based and counts the header.
type RowError struct {
	Line  int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("feed line %d, field %s: %v", e.Line, e.Field, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

var (
	// ErrShortRow means a data row has fewer columns than the header contract.
	ErrShortRow = errors.New("short row")

	// ErrReservedRegion means the feed uses the code reserved for the aggregate series.
	ErrReservedRegion = errors.New("reserved region code")
)

// ErrFetchTransient marks a single failed fetch attempt that is worth retrying.
var ErrFetchTransient = errors.New("transient fetch failure")

// FetchExhaustedError is returned once the retry cap is reached.
type FetchExhaustedError struct {
	Attempts int
	Last     error
}

func (e *FetchExhaustedError) Error() string {
	return fmt.Sprintf("feed fetch gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *FetchExhaustedError) Unwrap() error { return e.Last }
