package feed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/case-growth-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = "date,state,positive,negative\n20200310,NY,10,1\n"

func testFetcher(t *testing.T, url string, ttl time.Duration) *Fetcher {
	t.Helper()
	return &Fetcher{
		url:        url,
		cachePath:  filepath.Join(t.TempDir(), "feed", "daily.csv"),
		cacheTTL:   ttl,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		clock:      clockwork.NewRealClock(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func serve(body string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetcher_Success(t *testing.T) {
	srv := serve(sampleFeed, http.StatusOK)
	defer srv.Close()

	f := testFetcher(t, srv.URL, 0)
	res, err := f.Fetch(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Cached)
	assert.Equal(t, int64(len(sampleFeed)), res.Bytes)
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, sampleFeed, string(data))
}

func TestFetcher_TransientFailures(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"server error", "boom", http.StatusInternalServerError},
		{"empty body", "", http.StatusOK},
		{"whitespace body", "\n  \n", http.StatusOK},
		{"error body", "error: state not found", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := serve(tc.body, tc.status)
			defer srv.Close()

			f := testFetcher(t, srv.URL, 0)
			_, err := f.Fetch(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrFetchTransient)

			_, statErr := os.Stat(f.cachePath)
			assert.True(t, os.IsNotExist(statErr), "failed download must not create the cache file")
		})
	}
}

func TestFetcher_FailureKeepsPreviousCache(t *testing.T) {
	srv := serve("error", http.StatusOK)
	defer srv.Close()

	f := testFetcher(t, srv.URL, 0)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.cachePath), 0o755))
	require.NoError(t, os.WriteFile(f.cachePath, []byte(sampleFeed), 0o644))

	_, err := f.Fetch(context.Background())
	require.Error(t, err)

	data, err := os.ReadFile(f.cachePath)
	require.NoError(t, err)
	assert.Equal(t, sampleFeed, string(data))
}

func TestFetcher_ConnectionRefused(t *testing.T) {
	srv := serve(sampleFeed, http.StatusOK)
	url := srv.URL
	srv.Close()

	_, err := testFetcher(t, url, 0).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchTransient)
}

func TestFetcher_FreshCacheSkipsDownload(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	f := testFetcher(t, srv.URL, time.Hour)
	fake := clockwork.NewFakeClockAt(time.Now())
	f.clock = fake

	_, err := f.Fetch(context.Background())
	require.NoError(t, err)

	res, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, 1, calls)

	fake.Advance(2 * time.Hour)
	res, err = f.Fetch(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 2, calls)
}
