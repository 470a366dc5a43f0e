package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ppiankov/fibs/internal/util"
	"github.com/ppiankov/fibs/internal/worker"
)

// ErrDisallowed is returned when robots.txt forbids the request
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Fetcher performs rate-limited GET requests against the page source
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
}

// FetcherOptions configures a Fetcher
type FetcherOptions struct {
	Timeout        time.Duration
	UserAgent      string
	MaxBytes       int64
	RequestsPerSec float64
	Burst          int
	RespectRobots  bool
	HTTPProxy      string
	HTTPSProxy     string
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(opts FetcherOptions) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: proxyFunc(opts.HTTPProxy, opts.HTTPSProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
	}
	if opts.RequestsPerSec > 0 {
		f.limiter = worker.NewLimiter(opts.RequestsPerSec, opts.Burst)
	}
	if opts.RespectRobots {
		f.robots = util.NewRobotsChecker(util.NormalizeUserAgent(opts.UserAgent), f.httpClient)
	}
	return f
}

// Get retrieves the body of rawURL. Non-2xx responses are errors.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var crawlDelay time.Duration
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("check robots: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
		crawlDelay = delay
	}
	if f.limiter != nil {
		if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, host(rawURL))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// proxyFunc routes requests through the configured proxies by scheme.
// Empty settings defer to the environment.
func proxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		configured := httpProxy
		if req.URL.Scheme == "https" && httpsProxy != "" {
			configured = httpsProxy
		}
		if configured == "" {
			return http.ProxyFromEnvironment(req)
		}
		proxy, err := url.Parse(configured)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", configured, err)
		}
		return proxy, nil
	}
}

func host(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return parsed.Host
}
