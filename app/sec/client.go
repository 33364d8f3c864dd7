package sec

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pancak3lullz/SECurityTr8Ker/app/cfg"
	"github.com/pancak3lullz/SECurityTr8Ker/app/metrics"
)

// Cache freshness windows. The feed listing changes constantly; company
// submissions and filed documents rarely do.
const (
	FeedCacheMaxAge        = 5 * time.Minute
	SubmissionsCacheMaxAge = 24 * time.Hour
	DocumentCacheMaxAge    = 24 * time.Hour
)

const (
	requestTimeout = 10 * time.Second
	backoffCap     = 60 * time.Second
)

// FetchError is returned when a request could not be completed after all
// retries were exhausted.
type FetchError struct {
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch %s failed after %d attempts: HTTP %d", e.URL, e.Attempts, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Stats is a snapshot of the client's request counters.
type Stats struct {
	Requests  int64 `json:"requests"`
	CacheHits int64 `json:"cache_hits"`
	Retries   int64 `json:"retries"`
}

// Client fetches SEC endpoints with on-disk caching, a process-global rate
// limit on request issuance, and retries with jittered exponential backoff.
type Client struct {
	httpClient *http.Client
	feedParser *gofeed.Parser
	metrics    *metrics.Metrics

	rssURL          string
	userAgent       string
	cacheDir        string
	requestInterval time.Duration
	maxRetries      int

	mu              sync.Mutex
	lastRequestTime time.Time

	requestCount atomic.Int64
	cacheHits    atomic.Int64
	retryCount   atomic.Int64
}

func NewClient(c *cfg.Cfg, m *metrics.Metrics) *Client {
	if err := os.MkdirAll(c.CacheDir, 0o755); err != nil {
		slog.Warn("Failed to create cache directory", "dir", c.CacheDir, "error", err)
	}

	return &Client{
		httpClient:      &http.Client{},
		feedParser:      gofeed.NewParser(),
		metrics:         m,
		rssURL:          c.RSSURL,
		userAgent:       c.UserAgent,
		cacheDir:        c.CacheDir,
		requestInterval: time.Duration(c.RequestInterval * float64(time.Second)),
		maxRetries:      c.MaxRetries,
	}
}

// Stats returns a snapshot of the client's counters.
func (c *Client) Stats() Stats {
	return Stats{
		Requests:  c.requestCount.Load(),
		CacheHits: c.cacheHits.Load(),
		Retries:   c.retryCount.Load(),
	}
}

// fetchURL returns the response body for url, consulting the on-disk cache
// first. A cache hit short-circuits both the network call and the rate
// limiter. On 429, 5xx or timeout the request is retried with backoff; any
// other failure is returned immediately.
func (c *Client) fetchURL(ctx context.Context, url string, maxAge time.Duration) ([]byte, error) {
	if data, ok := c.readCache(url, maxAge); ok {
		c.cacheHits.Add(1)
		if c.metrics != nil {
			c.metrics.SECCacheHitsTotal.Inc()
		}
		slog.Debug("Cache hit", "url", url)
		return data, nil
	}

	var lastStatus int
	var lastErr error

	for attempt := 0; ; attempt++ {
		if err := c.waitForRateLimit(ctx); err != nil {
			return nil, &FetchError{URL: url, Attempts: attempt, Err: err}
		}

		data, status, err := c.doRequest(ctx, url)

		switch {
		case err == nil && status == http.StatusOK:
			c.writeCache(url, data)
			return data, nil
		case err == nil && status != http.StatusTooManyRequests && status < 500:
			return nil, &FetchError{URL: url, StatusCode: status, Attempts: attempt + 1}
		}

		lastStatus = status
		lastErr = err

		if attempt >= c.maxRetries {
			slog.Error("Request failed, max retries exceeded", "url", url, "status", lastStatus, "error", lastErr)
			return nil, &FetchError{URL: url, StatusCode: lastStatus, Attempts: attempt + 1, Err: lastErr}
		}

		c.retryCount.Add(1)
		if c.metrics != nil {
			c.metrics.SECRetriesTotal.Inc()
		}

		backoff := c.backoff(attempt)
		slog.Warn("Request failed, retrying", "url", url, "status", status, "error", err, "backoff", backoff)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &FetchError{URL: url, Attempts: attempt + 1, Err: ctx.Err()}
		case <-timer.C:
		}
	}
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.requestCount.Add(1)
	if c.metrics != nil {
		c.metrics.SECRequestsTotal.Inc()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, resp.StatusCode, nil
}

// waitForRateLimit blocks until the minimum inter-request interval has
// elapsed since the previous request. The mutex is held for the duration of
// the wait so that request starts are serialized process-wide.
func (c *Client) waitForRateLimit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	wait := c.requestInterval - time.Since(c.lastRequestTime)
	if wait > 0 {
		slog.Debug("Rate limiting", "wait", wait)
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	c.lastRequestTime = time.Now()
	return nil
}

func (c *Client) backoff(attempt int) time.Duration {
	base := c.requestInterval * (1 << uint(attempt))
	if base > backoffCap {
		base = backoffCap
	}
	jitter := time.Duration(rand.Int63n(int64(base)/2 + 1))
	return base + jitter
}

type cacheEntry struct {
	CachedAt time.Time `json:"cached_at"`
	Payload  string    `json:"payload"`
}

func (c *Client) cachePath(url string) string {
	var b strings.Builder
	for _, r := range url {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	name := b.String()
	if len(name) > 100 {
		name = name[:100]
	}
	return filepath.Join(c.cacheDir, name+".json")
}

func (c *Client) readCache(url string, maxAge time.Duration) ([]byte, bool) {
	path := c.cachePath(url)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		slog.Warn("Corrupted cache entry, removing", "url", url, "error", err)
		if rmErr := os.Remove(path); rmErr != nil {
			slog.Warn("Failed to remove corrupted cache entry", "path", path, "error", rmErr)
		}
		return nil, false
	}

	if time.Since(entry.CachedAt) > maxAge {
		slog.Debug("Cache expired", "url", url)
		return nil, false
	}

	return []byte(entry.Payload), true
}

func (c *Client) writeCache(url string, payload []byte) {
	path := c.cachePath(url)

	data, err := json.Marshal(cacheEntry{CachedAt: time.Now(), Payload: string(payload)})
	if err != nil {
		slog.Warn("Failed to encode cache entry", "url", url, "error", err)
		return
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		slog.Warn("Failed to write cache entry", "url", url, "error", err)
		return
	}

	if err := os.Rename(tempPath, path); err != nil {
		slog.Warn("Failed to replace cache entry", "url", url, "error", err)
		os.Remove(tempPath)
	}
}
