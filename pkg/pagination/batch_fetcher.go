// Package pagination provides page navigation and parallel batch fetching for the artworks collection
package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/artwork-select/pkg/logging"
	"github.com/Sternrassler/artwork-select/pkg/record"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of page requests in flight
	// Recommendation: keep it low, the public API throttles at 60 req/min
	MaxConcurrency int
	// Timeout per page fetch
	Timeout time.Duration
}

// DefaultConfig returns safe default configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 10,
		Timeout:        15 * time.Second,
	}
}

// PageFetcher is the interface a record source must implement for single-page fetching
type PageFetcher interface {
	// FetchPage fetches the 1-based page pageNum and returns its records plus the collection total
	FetchPage(ctx context.Context, pageNum int) (record.Page, error)
}

// PageFetcherFunc adapts a plain function to PageFetcher
type PageFetcherFunc func(ctx context.Context, pageNum int) (record.Page, error)

// FetchPage implements PageFetcher.
func (f PageFetcherFunc) FetchPage(ctx context.Context, pageNum int) (record.Page, error) {
	return f(ctx, pageNum)
}

// BatchFetcher handles parallel fetching of a contiguous run of pages
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
	logger  zerolog.Logger
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
		logger:  logging.NewLogger("batch_fetcher"),
	}
}

// FetchPages fetches pages first..first+count-1 concurrently.
// The returned slice is ordered by page index regardless of completion order.
// Any failed page fails the whole batch and no pages are returned.
func (bf *BatchFetcher) FetchPages(ctx context.Context, first, count int) ([]record.Page, error) {
	if count <= 0 {
		return nil, nil
	}
	if first < 1 {
		return nil, fmt.Errorf("first page must be >= 1 (got %d)", first)
	}

	start := time.Now()
	last := first + count - 1

	bf.logger.Debug().
		Int("first_page", first).
		Int("last_page", last).
		Int("max_concurrency", bf.config.MaxConcurrency).
		Msg("Starting parallel page fetch")

	// Each goroutine owns exactly one slot, so no lock is needed
	pages := make([]record.Page, count)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(bf.config.MaxConcurrency)

	for i := 0; i < count; i++ {
		pageNum := first + i
		g.Go(func() error {
			page, err := bf.fetchOne(gCtx, pageNum)
			if err != nil {
				return err
			}
			pages[i] = page
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		batchFetchesTotal.WithLabelValues("failed").Inc()
		bf.logger.Warn().
			Err(err).
			Int("first_page", first).
			Int("last_page", last).
			Msg("Batch fetch failed - discarding all pages")
		return nil, err
	}

	batchFetchesTotal.WithLabelValues("ok").Inc()
	batchFetchDuration.Observe(time.Since(start).Seconds())

	bf.logger.Debug().
		Int("first_page", first).
		Int("pages", count).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return pages, nil
}

// fetchOne fetches a single page with its own timeout
func (bf *BatchFetcher) fetchOne(ctx context.Context, pageNum int) (record.Page, error) {
	// A sibling already failed
	if err := ctx.Err(); err != nil {
		return record.Page{}, &record.FetchError{Page: pageNum, Err: err}
	}

	pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()

	page, err := bf.fetcher.FetchPage(pageCtx, pageNum)
	if err != nil {
		bf.logger.Warn().
			Err(err).
			Int("page", pageNum).
			Msg("Page fetch failed")

		var fe *record.FetchError
		if errors.As(err, &fe) {
			return record.Page{}, err
		}
		return record.Page{}, &record.FetchError{Page: pageNum, Err: err}
	}

	page.Index = pageNum
	return page, nil
}
