package pipeline

import (
	"errors"

	"github.com/couchcryptid/case-growth-etl/internal/domain"
)

// Process exit codes for one-shot commands.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitSchemaMismatch = 2
	ExitDataGap        = 3
	ExitFetchExhausted = 4
	ExitMalformedRow   = 5
)

// ExitCode maps a run error to its process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var exhausted *domain.FetchExhaustedError
	var row *domain.RowError
	switch {
	case errors.As(err, &exhausted):
		return ExitFetchExhausted
	case errors.Is(err, domain.ErrSchemaMismatch):
		return ExitSchemaMismatch
	case errors.Is(err, domain.ErrDataGap):
		return ExitDataGap
	case errors.As(err, &row):
		return ExitMalformedRow
	default:
		return ExitFailure
	}
}
