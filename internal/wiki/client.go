package wiki

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"factoriowiki/internal/config"
)

// Fetcher returns the raw HTML of a wiki page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// NetworkError covers timeouts, connection failures and non-2xx responses.
// StatusCode is 0 when no response was received.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

type Client struct {
	base *url.URL
	http *resty.Client
}

func NewClient(cfg config.Config) (*Client, error) {
	base, err := url.Parse(cfg.WikiBaseURL)
	if err != nil {
		return nil, fmt.Errorf("wiki base url: %w", err)
	}

	httpClient := resty.New()
	httpClient.SetTimeout(time.Duration(cfg.FetchTimeoutMs) * time.Millisecond)
	if cfg.UserAgent != "" {
		httpClient.SetHeader("user-agent", cfg.UserAgent)
	}
	httpClient.SetHeader("accept", "text/html")

	if cfg.FetchRateLimitRPS > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.FetchRateLimitRPS), cfg.FetchRateLimitRPS)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	return &Client{base: base, http: httpClient}, nil
}

// Resolve turns a page path such as "Iron_plate/ja" into an absolute URL.
func (c *Client) Resolve(ref string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	return c.base.ResolveReference(u).String(), nil
}

// Fetch performs a single GET. There is no retry.
func (c *Client) Fetch(ctx context.Context, pageURL string) (string, error) {
	target, err := c.Resolve(pageURL)
	if err != nil {
		return "", &NetworkError{URL: pageURL, Err: err}
	}

	started := time.Now()
	res, err := c.http.R().SetContext(ctx).Get(target)
	if err != nil {
		slog.WarnContext(ctx, "fetch failed", "url", target, "err", err)
		return "", &NetworkError{URL: target, Err: err}
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		slog.WarnContext(ctx, "fetch returned error status", "url", target, "status", res.StatusCode())
		return "", &NetworkError{
			URL:        target,
			StatusCode: res.StatusCode(),
			Err:        fmt.Errorf("unexpected status %s", res.Status()),
		}
	}

	slog.DebugContext(ctx, "fetched page", "url", target, "bytes", len(res.Body()), "elapsed", time.Since(started))
	return string(res.Body()), nil
}
