// Package source fetches pages of artworks from the Art Institute of Chicago
// collection API, with retries, rate limiting and an optional Redis response cache.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/artwork-select/pkg/cache"
	"github.com/Sternrassler/artwork-select/pkg/logging"
	"github.com/Sternrassler/artwork-select/pkg/ratelimit"
	"github.com/Sternrassler/artwork-select/pkg/record"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the public collection API.
	DefaultBaseURL = "https://api.artic.edu"

	// ArtworksPath is the paginated artworks endpoint.
	ArtworksPath = "/api/v1/artworks"

	// MaxPageSize is the largest limit the API accepts.
	MaxPageSize = 100

	resourceName = "artworks"
)

// DefaultFields are the attributes requested for every record.
var DefaultFields = []string{
	"id", "title", "place_of_origin", "artist_display", "inscriptions", "date_start", "date_end",
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API, without the /api/v1 path
	BaseURL string

	// UserAgent is sent as User-Agent and AIC-User-Agent (REQUIRED)
	// Format: "AppName (contact@example.com)"
	UserAgent string

	// PageSize is the limit query parameter, 1..MaxPageSize
	PageSize int

	// Fields requested per record; DefaultFields when empty
	Fields []string

	// Timeout per HTTP attempt
	Timeout time.Duration

	// Retry
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Redis enables the response cache and shares rate limit state; optional
	Redis *redis.Client

	// CacheStaleGrace is how long expired pages are kept for revalidation
	CacheStaleGrace time.Duration

	// HTTPClient replaces the underlying transport client (for testing)
	HTTPClient *http.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		UserAgent:       userAgent,
		PageSize:        12,
		Fields:          DefaultFields,
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		InitialBackoff:  1 * time.Second,
		MaxBackoff:      30 * time.Second,
		CacheStaleGrace: cache.DefaultStaleGrace,
	}
}

// Client fetches artwork pages. It implements pagination.PageFetcher.
type Client struct {
	http        *retryablehttp.Client
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	config      Config
	logger      zerolog.Logger
}

// New creates a new artworks API client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.PageSize < 1 || cfg.PageSize > MaxPageSize {
		return nil, fmt.Errorf("page size must be between 1 and %d (got %d)", MaxPageSize, cfg.PageSize)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if len(cfg.Fields) == 0 {
		cfg.Fields = DefaultFields
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must be >= 0 (got %d)", cfg.MaxRetries)
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}

	logger := logging.NewLogger("source")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.InitialBackoff
	retryClient.RetryWaitMax = cfg.MaxBackoff
	retryClient.CheckRetry = checkRetry
	retryClient.Backoff = backoff
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = retryLogger{logger: logger}
	retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logger.Warn().
				Str("url", req.URL.String()).
				Int("attempt", attempt).
				Msg("Retrying artworks request")
		}
	}

	c := &Client{
		http:        retryClient,
		rateLimiter: ratelimit.NewTracker(cfg.Redis, logger),
		config:      cfg,
		logger:      logger,
	}
	if cfg.Redis != nil {
		c.cache = cache.NewManager(cfg.Redis).WithStaleGrace(cfg.CacheStaleGrace)
	}

	return c, nil
}

// PageSize returns the number of records requested per page.
func (c *Client) PageSize() int {
	return c.config.PageSize
}

// FetchPage fetches the 1-based page pageNum.
// Every failure is a *record.FetchError and matches record.ErrFetchFailed.
func (c *Client) FetchPage(ctx context.Context, pageNum int) (record.Page, error) {
	if pageNum < 1 {
		return record.Page{}, &record.FetchError{Page: pageNum, Err: fmt.Errorf("page must be >= 1")}
	}

	body, err := c.get(ctx, pageNum)
	if err != nil {
		return record.Page{}, &record.FetchError{Page: pageNum, Err: err}
	}

	page, err := decodePage(body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		c.logger.Warn().Err(err).Int("page", pageNum).Msg("Undecodable artworks page")
		return record.Page{}, &record.FetchError{Page: pageNum, Err: &APIError{
			StatusCode: http.StatusOK,
			Class:      ErrorClassDecode,
			Message:    "invalid page body",
			Err:        err,
		}}
	}
	page.Index = pageNum

	return page, nil
}

// get returns the body of the page, from the cache when fresh.
func (c *Client) get(ctx context.Context, pageNum int) ([]byte, error) {
	start := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(start).Seconds())
	}()

	key := c.cacheKey(pageNum)
	var cached *cache.CacheEntry
	if c.cache != nil {
		entry, err := c.cache.Get(ctx, key)
		switch {
		case err == nil && !entry.IsExpired():
			c.logger.Debug().Int("page", pageNum).Dur("ttl", entry.TTL()).Msg("Cache hit")
			return entry.Data, nil
		case err == nil:
			cached = entry
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Int("page", pageNum).Msg("Cache get error")
		}
	}

	allowed, err := c.rateLimiter.ShouldAllowRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if !allowed {
		requestsTotal.WithLabelValues("rate_limited").Inc()
		errorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
		return nil, &APIError{Class: ErrorClassRateLimit, Message: "blocked locally", Err: ErrRateLimited}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(pageNum), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("AIC-User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	if cache.ShouldMakeConditionalRequest(cached) {
		cache.AddConditionalHeaders(req.Request, cached)
		c.logger.Debug().Int("page", pageNum).Str("etag", cached.ETag).Msg("Making conditional request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		requestsTotal.WithLabelValues("network_error").Inc()
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		c.logger.Error().Err(err).Int("page", pageNum).Msg("Artworks request failed")
		return nil, &APIError{Class: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if err := c.rateLimiter.UpdateFromHeaders(ctx, resp.Header); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
	}

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		cache.NotModifiedResponses.Inc()
		c.logger.Debug().Int("page", pageNum).Msg("304 Not Modified - using cache")
		if err := c.cache.Touch(ctx, key, cached, cache.Freshness(resp.Header)); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to refresh cache entry")
		}
		return cached.Data, nil
	}

	if resp.StatusCode != http.StatusOK {
		class := classifyStatus(resp.StatusCode)
		if class == "" {
			class = ErrorClassServer
		}
		errorsTotal.WithLabelValues(string(class)).Inc()

		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn().
			Int("page", pageNum).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Artworks request error")

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	entry, err := cache.ResponseToEntry(resp)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{StatusCode: resp.StatusCode, Class: ErrorClassNetwork, Message: "read body", Err: err}
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			c.logger.Debug().Int("page", pageNum).Dur("ttl", entry.TTL()).Msg("Cached response")
		}
	}

	return entry.Data, nil
}

func (c *Client) cacheKey(pageNum int) cache.CacheKey {
	return cache.CacheKey{
		Resource: resourceName,
		Page:     pageNum,
		Limit:    c.config.PageSize,
		Fields:   c.config.Fields,
	}
}

func (c *Client) pageURL(pageNum int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(pageNum))
	q.Set("limit", strconv.Itoa(c.config.PageSize))
	q.Set("fields", strings.Join(c.config.Fields, ","))
	return c.config.BaseURL + ArtworksPath + "?" + q.Encode()
}
