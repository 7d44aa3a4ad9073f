package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedHeader = "date,state,positive,negative,pending,death"

func feedOf(rows ...string) *strings.Reader {
	return strings.NewReader(feedHeader + "\n" + strings.Join(rows, "\n") + "\n")
}

// dailyRows emits one row per day starting at start with the given positives.
func dailyRows(t *testing.T, region, start string, positives ...int64) []string {
	t.Helper()
	d := mustDate(t, start)
	rows := make([]string, 0, len(positives))
	for _, p := range positives {
		rows = append(rows, fmt.Sprintf("%s,%s,%d,%d,,", d, region, p, p*10))
		d = d.Next()
	}
	return rows
}

func farFuture(t *testing.T) IngestOptions {
	t.Helper()
	return IngestOptions{Today: mustDate(t, "2030-01-01")}
}

func TestIngest_PopulatesStore(t *testing.T) {
	rows := append(dailyRows(t, "NY", "2020-03-10", 10, 20, 30), dailyRows(t, "CA", "2020-03-11", 5, 7)...)
	store := NewStore()

	stats, err := Ingest(feedOf(rows...), store, farFuture(t))
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Rows)
	assert.Equal(t, 2, stats.Regions)
	assert.Equal(t, "2020-03-10", stats.First.String())
	assert.Equal(t, "2020-03-12", stats.Last.String())

	assert.Equal(t, []string{"CA", "NY", TotalRegion}, store.Regions())
	assert.Equal(t, int64(30), store.Latest("NY"))
	assert.Equal(t, int64(7), store.Latest("CA"))
	assert.Equal(t, int64(300), store.Get("NY")[2].Negative)
}

func TestIngest_CompactDatesAndExtraColumns(t *testing.T) {
	feed := strings.NewReader("\ufeffDate, State ,Positive,NEGATIVE,hospitalized\n" +
		"20200310,ny,10,1,3\n" +
		"20200311,ny,15,2,4\n")
	store := NewStore()

	_, err := Ingest(feed, store, farFuture(t))
	require.NoError(t, err)

	got := store.Get("NY")
	require.Len(t, got, 2)
	assert.Equal(t, "2020-03-11", got[1].Date.String())
	assert.Equal(t, int64(15), got[1].Positive)
}

func TestIngest_SchemaMismatch(t *testing.T) {
	cases := map[string]string{
		"reordered": "state,date,positive,negative\nNY,20200310,1,1\n",
		"renamed":   "date,state,cases,negative\n20200310,NY,1,1\n",
		"truncated": "date,state,positive\n20200310,NY,1\n",
		"empty":     "",
	}
	for name, feed := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Ingest(strings.NewReader(feed), NewStore(), farFuture(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchemaMismatch)

			var sm *SchemaMismatchError
			require.True(t, errors.As(err, &sm))
			assert.Equal(t, FeedColumns, sm.Want)
		})
	}
}

func TestIngest_EmptyCountsDefaultToZero(t *testing.T) {
	store := NewStore()
	_, err := Ingest(feedOf("20200310,NY,,", "20200311,NY,4,"), store, farFuture(t))
	require.NoError(t, err)

	got := store.Get("NY")
	require.Len(t, got, 2)
	assert.Zero(t, got[0].Positive)
	assert.Zero(t, got[0].Negative)
	assert.Equal(t, int64(4), got[1].Positive)
}

func TestIngest_StrictRejectsEmptyCounts(t *testing.T) {
	opts := farFuture(t)
	opts.Strict = true

	_, err := Ingest(feedOf("20200310,NY,3,1", "20200311,NY,4,"), NewStore(), opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyField)

	var re *RowError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 3, re.Line)
	assert.Equal(t, "negative", re.Field)
}

func TestIngest_RowErrors(t *testing.T) {
	cases := []struct {
		name  string
		row   string
		field string
		want  error
	}{
		{"bad date", "2020-02-30,NY,1,1", "date", ErrMalformedDate},
		{"garbage date", "yesterday,NY,1,1", "date", ErrMalformedDate},
		{"non-numeric count", "20200310,NY,abc,1", "positive", ErrMalformedCount},
		{"negative count", "20200310,NY,1,-5", "negative", ErrMalformedCount},
		{"fractional count", "20200310,NY,1.5,1", "positive", ErrMalformedCount},
		{"missing region", "20200310,,1,1", "state", ErrEmptyField},
		{"reserved region", "20200310,total,1,1", "state", ErrReservedRegion},
		{"short row", "20200310,NY", "row", ErrShortRow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Ingest(feedOf("20200309,NY,1,1", tc.row), NewStore(), farFuture(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var re *RowError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, 3, re.Line)
			assert.Equal(t, tc.field, re.Field)
		})
	}
}

func TestIngest_GapAbortsAndLeavesStoreUntouched(t *testing.T) {
	store := NewStore()
	store.Put("OLD", mustDate(t, "2020-01-01"), 1, 0)

	rows := []string{
		"20200310,NY,1,0",
		"20200311,NY,2,0",
		"20200313,NY,4,0",
	}
	_, err := Ingest(feedOf(rows...), store, farFuture(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataGap)

	var gap *DataGapError
	require.True(t, errors.As(err, &gap))
	assert.Equal(t, "NY", gap.Region)
	assert.Equal(t, "2020-03-12", gap.Missing.String())

	assert.Equal(t, []string{"OLD"}, store.Regions())
}

func TestIngest_GapOnTodayIsExempt(t *testing.T) {
	rows := []string{
		"20200310,NY,1,0",
		"20200311,NY,2,0",
		"20200313,NY,4,0",
	}
	_, err := Ingest(feedOf(rows...), NewStore(), IngestOptions{Today: mustDate(t, "2020-03-12")})
	require.NoError(t, err)
}

func TestIngest_CompleteFeedPassesAndAnyInteriorGapFails(t *testing.T) {
	positives := []int64{1, 2, 3, 5, 8, 13, 21, 34, 55, 89}
	rows := dailyRows(t, "TX", "2020-02-25", positives...)

	_, err := Ingest(feedOf(rows...), NewStore(), farFuture(t))
	require.NoError(t, err)

	for i := 1; i < len(rows)-1; i++ {
		missing := mustDate(t, "2020-02-25") + Date(i)
		t.Run(missing.String(), func(t *testing.T) {
			holed := append(append([]string{}, rows[:i]...), rows[i+1:]...)
			_, err := Ingest(feedOf(holed...), NewStore(), farFuture(t))

			var gap *DataGapError
			require.True(t, errors.As(err, &gap), "expected a data gap, got %v", err)
			assert.Equal(t, "TX", gap.Region)
			assert.Equal(t, missing, gap.Missing)
		})
	}
}

func TestIngest_Idempotent(t *testing.T) {
	rows := append(dailyRows(t, "NY", "2020-03-10", 10, 20, 30), dailyRows(t, "CA", "2020-03-10", 1, 2, 3)...)
	raw := feedHeader + "\n" + strings.Join(rows, "\n") + "\n"

	store := NewStore()
	_, err := Ingest(strings.NewReader(raw), store, farFuture(t))
	require.NoError(t, err)
	first := snapshot(store)

	_, err = Ingest(strings.NewReader(raw), store, farFuture(t))
	require.NoError(t, err)

	if diff := cmp.Diff(first, snapshot(store)); diff != "" {
		t.Fatalf("store changed on re-ingestion (-first +second):\n%s", diff)
	}
}

func TestIngest_DuplicateRowsOverwrite(t *testing.T) {
	store := NewStore()
	_, err := Ingest(feedOf("20200310,NY,1,0", "20200310,NY,7,2"), store, farFuture(t))
	require.NoError(t, err)

	got := store.Get("NY")
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].Positive)
}

func snapshot(s *Store) map[string][]Observation {
	out := make(map[string][]Observation)
	for _, r := range s.Regions() {
		out[r] = s.Get(r)
	}
	return out
}
