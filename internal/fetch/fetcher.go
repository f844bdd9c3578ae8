// Package fetch retrieves search-result and job-detail pages. Unavailable
// pages (non-200, network failure, empty body) come back as nil content so
// callers can skip them; errors are reserved for request construction and
// context cancellation.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	guestDetailURL = "https://www.linkedin.com/jobs-guest/jobs/api/jobPosting/%d"

	// Served a desktop page instead of a bot challenge.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/90.0.4430.212 Safari/537.36"

	maxBodyBytes = 5 * 1024 * 1024
)

// HTTPFetcher fetches pages over HTTP with a minimum delay between requests
// to stay under the listing site's rate limits.
type HTTPFetcher struct {
	client *http.Client
	pacer  *Pacer
	logger *slog.Logger
}

// NewHTTPFetcher creates a fetcher. minDelay is the gap enforced between
// consecutive requests; zero disables pacing.
func NewHTTPFetcher(client *http.Client, minDelay time.Duration, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: client,
		pacer:  NewPacer(minDelay),
		logger: logger,
	}
}

// Fetch retrieves url. Returns (nil, nil) when the page is unavailable.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Debug("fetch failed", "url", url, "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Debug("fetch returned non-200", "url", url, "status", resp.StatusCode)
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		f.logger.Debug("fetch body read failed", "url", url, "error", err)
		return nil, nil
	}
	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}

// FetchGuest retrieves the guest detail document for a job ID. Same
// unavailable-means-nil contract as Fetch.
func (f *HTTPFetcher) FetchGuest(ctx context.Context, jobID int64) ([]byte, error) {
	return f.Fetch(ctx, fmt.Sprintf(guestDetailURL, jobID))
}
