package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"gamecal/internal/config"
	"gamecal/internal/logging"
	"gamecal/internal/pagecache"
	"gamecal/internal/services"
)

const (
	defaultUserAgent = "gamecal/dev"
	defaultTimeout   = 30 * time.Second
	maxBodyBytes     = 16 << 20
)

// ErrBodyTooLarge reports a response body over the configured size limit.
var ErrBodyTooLarge = errors.New("response body too large")

// Page is a fetched document.
type Page struct {
	URL       string
	Status    int
	Body      []byte
	FetchedAt time.Time
	FromCache bool
}

// PageStore persists fetched pages between runs.
type PageStore interface {
	Get(ctx context.Context, url string, maxAge time.Duration) (pagecache.Page, bool, error)
	Put(ctx context.Context, page pagecache.Page) error
}

// Options configures a Client.
type Options struct {
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	// RetryBase is the first retry delay; later attempts double it.
	RetryBase time.Duration
	// MaxBodyBytes caps a response body. Zero means 16 MiB.
	MaxBodyBytes int64
	Cache        PageStore
	CacheTTL     time.Duration
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Client fetches pages.
type Client struct {
	userAgent  string
	http       *http.Client
	limit      rate.Limit
	burst      int
	maxRetries int
	retryBase  time.Duration
	maxBody    int64
	cache      PageStore
	cacheTTL   time.Duration
	logger     *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Client from opts.
func New(opts Options) *Client {
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = maxBodyBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		userAgent:  userAgent,
		http:       client,
		limit:      limit,
		burst:      burst,
		maxRetries: max(opts.MaxRetries, 0),
		retryBase:  opts.RetryBase,
		maxBody:    maxBody,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		logger:     logging.NewComponentLogger(logger, "fetch"),
		limiters:   make(map[string]*rate.Limiter),
	}
}

// NewFromConfig builds a Client from the fetch section of cfg. cache may be nil.
func NewFromConfig(cfg *config.Config, cache PageStore, logger *slog.Logger) *Client {
	opts := Options{
		UserAgent:         cfg.Fetch.UserAgent,
		Timeout:           cfg.FetchTimeout(),
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		Burst:             cfg.Fetch.Burst,
		MaxRetries:        cfg.Fetch.MaxRetries,
		CacheTTL:          cfg.CacheTTL(),
		Logger:            logger,
	}
	if cache != nil && cfg.Fetch.CacheEnabled {
		opts.Cache = cache
	}
	return New(opts)
}

// Get returns the body of rawURL, serving from the cache when a fresh copy
// exists. Transient failures are retried with exponential backoff.
func (c *Client) Get(ctx context.Context, rawURL string) (Page, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return Page{}, services.Wrap(services.ErrValidation, "fetch", "parse url", rawURL, err)
	}
	logger := logging.WithContext(ctx, c.logger)

	if page, ok := c.lookup(ctx, rawURL, logger); ok {
		return page, nil
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := services.Backoff(c.retryBase, attempt)
			logger.Info("retrying fetch",
				logging.String("url", rawURL),
				logging.Int("attempt", attempt),
				logging.Duration("delay", delay),
				logging.Error(lastErr))
			if err := services.SleepWithContext(ctx, delay); err != nil {
				return Page{}, err
			}
		}
		page, err := c.do(ctx, parsed)
		if err == nil {
			c.store(ctx, page, logger)
			return page, nil
		}
		lastErr = err
		if !services.IsRetriable(err) {
			break
		}
	}
	return Page{}, lastErr
}

func (c *Client) do(ctx context.Context, target *url.URL) (Page, error) {
	if err := c.limiter(target.Host).Wait(ctx); err != nil {
		return Page{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Page{}, services.Wrap(services.ErrValidation, "fetch", "build request", target.String(), err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Page{}, err
		}
		return Page{}, services.Wrap(services.ErrTransient, "fetch", "request", target.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Page{}, statusError(target.String(), resp.Status, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return Page{}, services.Wrap(services.ErrTransient, "fetch", "read body", target.String(), err)
	}
	if int64(len(body)) > c.maxBody {
		detail := fmt.Sprintf("%s exceeds %d bytes", target.String(), c.maxBody)
		return Page{}, services.Wrap(services.ErrExternalTool, "fetch", "read body", detail, ErrBodyTooLarge)
	}
	return Page{
		URL:       target.String(),
		Status:    resp.StatusCode,
		Body:      body,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func statusError(target, status string, code int, snippet string) error {
	message := fmt.Sprintf("%s returned %s", target, status)
	if snippet != "" {
		message += ": " + snippet
	}
	switch {
	case code == http.StatusNotFound || code == http.StatusGone:
		return services.Wrap(services.ErrNotFound, "fetch", "status", message, nil)
	case code == http.StatusTooManyRequests || code >= 500:
		return services.Wrap(services.ErrTransient, "fetch", "status", message, nil)
	default:
		return services.Wrap(services.ErrExternalTool, "fetch", "status", message, nil)
	}
}

func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	limiter, ok := c.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(c.limit, c.burst)
		c.limiters[host] = limiter
	}
	return limiter
}

func (c *Client) lookup(ctx context.Context, rawURL string, logger *slog.Logger) (Page, bool) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return Page{}, false
	}
	cached, ok, err := c.cache.Get(ctx, rawURL, c.cacheTTL)
	if err != nil {
		logging.WarnWithContext(logger, "page cache lookup failed", "pagecache_read_failed",
			logging.String("url", rawURL),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'gamecal cache clear' if the cache is corrupt"),
			logging.String(logging.FieldImpact, "page will be fetched from the network"))
		return Page{}, false
	}
	if !ok {
		return Page{}, false
	}
	logger.Debug("serving page from cache", logging.String("url", rawURL))
	return Page{
		URL:       cached.URL,
		Status:    cached.Status,
		Body:      cached.Body,
		FetchedAt: cached.FetchedAt,
		FromCache: true,
	}, true
}

func (c *Client) store(ctx context.Context, page Page, logger *slog.Logger) {
	if c.cache == nil {
		return
	}
	source, _ := services.SourceFromContext(ctx)
	err := c.cache.Put(ctx, pagecache.Page{
		URL:       page.URL,
		Source:    source,
		Status:    page.Status,
		Body:      page.Body,
		FetchedAt: page.FetchedAt,
	})
	if err != nil {
		logging.WarnWithContext(logger, "page cache write failed", "pagecache_write_failed",
			logging.String("url", page.URL),
			logging.Error(err),
			logging.String(logging.FieldImpact, "next run will fetch this page again"))
	}
}
