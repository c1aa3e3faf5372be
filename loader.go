package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// PageLoader retrieves the rendered HTML of a course page. Implementations
// own session handling, so a headless browser can sit behind the same seam.
type PageLoader interface {
	LoadPage(ctx context.Context, pageURL string) (string, error)
}

var debugEnabled bool

// SetDebugMode enables or disables debug logging
func SetDebugMode(enabled bool) {
	debugEnabled = enabled
}

func debugLog(format string, args ...interface{}) {
	if debugEnabled {
		log.Printf("[DEBUG] "+format, args...)
	}
}

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// HTTPPageLoader loads pages over plain HTTP with a courtesy rate limit
// toward the course site
type HTTPPageLoader struct {
	client *resty.Client
}

// NewHTTPPageLoader creates a loader limited to one request every two seconds
func NewHTTPPageLoader() *HTTPPageLoader {
	limiter := rate.NewLimiter(rate.Every(2*time.Second), 1)

	client := resty.New()
	client.SetHeader("user-agent", browserUserAgent)
	client.SetTimeout(30 * time.Second)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return &HTTPPageLoader{client: client}
}

// LoadPage fetches a page and returns its HTML body
func (l *HTTPPageLoader) LoadPage(ctx context.Context, pageURL string) (string, error) {
	res, err := l.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}

	debugLog("Loaded %s: status=%d bytes=%d", pageURL, res.StatusCode(), len(res.Body()))

	if res.StatusCode() != http.StatusOK {
		return "", &HTTPError{StatusCode: res.StatusCode(), URL: pageURL}
	}

	return res.String(), nil
}
