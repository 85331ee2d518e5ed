package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Fetcher issues one bounded-timeout GET per account against an upstream
// timeline endpoint. It never returns an error: every call resolves to a
// tagged FetchResult.
type Fetcher struct {
	httpClient       *http.Client
	syndicationURL   string
	rssURL           string
	userAgent        string
	timeout          time.Duration
	rateLimitRetries int
	retryBackoff     time.Duration
}

func NewFetcher(httpClient *http.Client, syndicationURL, rssURL, userAgent string,
	timeout time.Duration, rateLimitRetries int, retryBackoff time.Duration) *Fetcher {
	return &Fetcher{
		httpClient:       httpClient,
		syndicationURL:   syndicationURL,
		rssURL:           rssURL,
		userAgent:        userAgent,
		timeout:          timeout,
		rateLimitRetries: rateLimitRetries,
		retryBackoff:     retryBackoff,
	}
}

// Fetch retrieves the account's timeline document. On HTTP 429 it retries per
// the configured schedule; any other failure is terminal immediately.
func (f *Fetcher) Fetch(ctx context.Context, handle string, variant Variant) FetchResult {
	timelineURL := f.timelineURL(handle, variant)
	schedule := f.RetrySchedule()

	attempt := 0
	for {
		result := f.attempt(ctx, timelineURL)
		if result.Reason != ReasonRateLimited || attempt >= len(schedule) {
			return result
		}

		delay := schedule[attempt]
		attempt++
		slog.Debug("Rate limited, backing off", "handle", handle, "attempt", attempt, "delay", delay.String())

		select {
		case <-ctx.Done():
			return FetchResult{Reason: ReasonTimeout}
		case <-time.After(delay):
		}
	}
}

// RetrySchedule returns the backoff delays applied between rate-limited
// attempts, linear in the attempt number.
func (f *Fetcher) RetrySchedule() []time.Duration {
	schedule := make([]time.Duration, f.rateLimitRetries)
	for i := range schedule {
		schedule[i] = time.Duration(i+1) * f.retryBackoff
	}
	return schedule
}

func (f *Fetcher) attempt(ctx context.Context, timelineURL string) FetchResult {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, timelineURL, nil)
	if err != nil {
		return FetchResult{Reason: ReasonTransportError}
	}

	// Browser-profile headers, required for the upstream to serve the page.
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return FetchResult{Reason: ReasonTimeout}
		}
		return FetchResult{Reason: ReasonTransportError}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return FetchResult{StatusCode: resp.StatusCode, Reason: ReasonRateLimited}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return FetchResult{StatusCode: resp.StatusCode, Reason: HTTPErrorReason(resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return FetchResult{StatusCode: resp.StatusCode, Reason: ReasonTimeout}
		}
		return FetchResult{StatusCode: resp.StatusCode, Reason: ReasonTransportError}
	}

	return FetchResult{Body: body, StatusCode: resp.StatusCode}
}

func (f *Fetcher) timelineURL(handle string, variant Variant) string {
	switch variant {
	case VariantRSS:
		return fmt.Sprintf("%s/%s/rss", f.rssURL, url.PathEscape(handle))
	default:
		return fmt.Sprintf("%s/srv/timeline-profile/screen-name/%s?lang=en", f.syndicationURL, url.PathEscape(handle))
	}
}
