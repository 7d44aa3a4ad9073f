// Package domain models daily per-region cumulative case counts and the
// growth signals derived from them.
//
// # Feed
//
// The upstream feed is a CSV file, one row per (region, date):
//
//	date,state,positive,negative,...
//	20200315,NY,729,4543,...
//
// Only the four leading columns are read; any further columns are ignored.
// Dates may be written as YYYYMMDD or YYYY-MM-DD. Counts are cumulative and
// non-negative. Blank counts are read as zero unless strict ingestion is on.
// A header whose leading columns differ is rejected as a schema change.
//
// # Completeness
//
// Every region must have one row for every day between its first and last
// date. The current day is exempt because it may still be filling in. A gap
// fails the whole run: the aggregate and the rankings are only meaningful
// over complete series. See [Validate].
//
// # Aggregate
//
// The TOTAL series sums all regions per date and stops at the first date
// whose sum is zero. It is rebuilt from scratch on every ingestion. See
// [BuildAggregate].
//
// # Regimes and fits
//
// A series with at least six observations of 100 or more is shown in growth
// mode: leading observations under 100 are dropped, and an exponential curve
// fitted over the last six days is drawn alongside it:
//
//	factor   = (v[N-1] / v[N-7]) ^ (1/6)
//	doubling = ln 2 / ln factor
//
// A series too short for the window, or whose window starts at zero, keeps
// its classification but is displayed raw with no curve. See [Analyze].
package domain
