package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/case-growth-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// errorPrefix marks a body the upstream API returns instead of CSV.
var errorPrefix = []byte("error")

// Fetcher downloads the daily feed into a cache file. It implements
// pipeline.Fetcher; one call is one attempt.
type Fetcher struct {
	url        string
	cachePath  string
	cacheTTL   time.Duration
	httpClient *http.Client
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewFetcher creates a feed fetcher. A zero cacheTTL always downloads.
func NewFetcher(url, cachePath string, cacheTTL, timeout time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		url:       url,
		cachePath: cachePath,
		cacheTTL:  cacheTTL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		clock:  clockwork.NewRealClock(),
		logger: logger,
	}
}

// Fetch returns the cached feed if it is fresh, otherwise downloads it.
// Empty bodies, non-200 responses, bodies starting with "error", and
// transport failures all return an error wrapping domain.ErrFetchTransient.
// A failed download never replaces or removes the existing cache file.
func (f *Fetcher) Fetch(ctx context.Context) (domain.FeedFile, error) {
	if res, ok := f.fresh(); ok {
		f.logger.Debug("using cached feed", "path", f.cachePath, "bytes", res.Bytes)
		return res, nil
	}

	body, err := f.download(ctx)
	if err != nil {
		return domain.FeedFile{}, err
	}

	if err := writeAtomic(f.cachePath, body); err != nil {
		return domain.FeedFile{}, fmt.Errorf("write feed cache: %w", err)
	}
	f.logger.Info("feed downloaded", "url", f.url, "path", f.cachePath, "bytes", len(body))
	return domain.FeedFile{Path: f.cachePath, Bytes: int64(len(body))}, nil
}

func (f *Fetcher) fresh() (domain.FeedFile, bool) {
	if f.cacheTTL <= 0 {
		return domain.FeedFile{}, false
	}
	info, err := os.Stat(f.cachePath)
	if err != nil || info.Size() == 0 {
		return domain.FeedFile{}, false
	}
	if f.clock.Since(info.ModTime()) > f.cacheTTL {
		return domain.FeedFile{}, false
	}
	return domain.FeedFile{Path: f.cachePath, Cached: true, Bytes: info.Size()}, true
}

func (f *Fetcher) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrFetchTransient, err)
	}

	switch {
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrFetchTransient, resp.StatusCode, truncate(body))
	case len(bytes.TrimSpace(body)) == 0:
		return nil, fmt.Errorf("%w: empty body", domain.ErrFetchTransient)
	case bytes.HasPrefix(body, errorPrefix):
		return nil, fmt.Errorf("%w: upstream error body: %s", domain.ErrFetchTransient, truncate(body))
	}
	return body, nil
}

// writeAtomic writes to a temp file in the same directory and renames it into
// place, so readers never see a partial file.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func truncate(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
