package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedDate is returned when a date string is not a valid calendar
// date in YYYY-MM-DD or YYYYMMDD form.
var ErrMalformedDate = errors.New("malformed date")

// Date is a calendar day counted from 1970-01-01. It carries no time zone and
// no wall-clock component, so adding 1 always yields the following day.
type Date int32

// DateOf builds a Date from calendar components. Out-of-range components are
// normalized the way time.Date normalizes them.
func DateOf(year int, month time.Month, day int) Date {
	// Midnight UTC is always a whole multiple of a day, so the division is exact.
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// DateAt returns the calendar date of t in t's own location.
func DateAt(t time.Time) Date {
	return DateOf(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts "2020-03-15" or "20200315".
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)

	var ys, ms, ds string
	switch {
	case len(s) == 10 && s[4] == '-' && s[7] == '-':
		ys, ms, ds = s[:4], s[5:7], s[8:]
	case len(s) == 8:
		ys, ms, ds = s[:4], s[4:6], s[6:]
	default:
		return 0, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}

	y, errY := parseDigits(ys)
	m, errM := parseDigits(ms)
	d, errD := parseDigits(ds)
	if errY != nil || errM != nil || errD != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	if m < 1 || m > 12 || d < 1 || d > daysIn(y, time.Month(m)) {
		return 0, fmt.Errorf("%w: %q is not a calendar date", ErrMalformedDate, s)
	}
	return DateOf(y, time.Month(m), d), nil
}

// parseDigits rejects signs and spaces that strconv.Atoi would tolerate.
func parseDigits(s string) (int, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time().Format(time.DateOnly)
}

// Label formats the date as MM/DD for chart axes.
func (d Date) Label() string {
	return d.Time().Format("01/02")
}

// Next returns the following calendar day.
func (d Date) Next() Date {
	return d + 1
}

// DaysUntil returns the number of days from d to other (negative if other is earlier).
func (d Date) DaysUntil(other Date) int {
	return int(other - d)
}
