package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Sternrassler/artwork-select/pkg/logging"
	"github.com/Sternrassler/artwork-select/pkg/record"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidPage is returned for a negative page index or one past the last page.
	ErrInvalidPage = errors.New("invalid page index")

	// ErrInvalidPageSize is returned when the controller is created with a non-positive page size.
	ErrInvalidPageSize = errors.New("page size must be > 0")
)

// Controller owns the pagination position and the page cache.
// It converts page change events into record source requests.
type Controller struct {
	fetcher  PageFetcher
	cache    *PageCache
	pageSize int
	logger   zerolog.Logger

	mu         sync.Mutex
	pageIndex  int
	loading    bool
	err        error
	generation uint64
	onNavigate []func()
}

// NewController creates a controller positioned before the first page.
// Nothing is fetched until GoToPage is called.
func NewController(fetcher PageFetcher, pageSize int) (*Controller, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("page fetcher is required")
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidPageSize, pageSize)
	}

	return &Controller{
		fetcher:  fetcher,
		cache:    &PageCache{},
		pageSize: pageSize,
		logger:   logging.NewLogger("pagination"),
	}, nil
}

// OnNavigate registers fn to run whenever a page change starts, before its fetch is issued.
func (c *Controller) OnNavigate(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onNavigate = append(c.onNavigate, fn)
}

// GoToPage fetches the page with the given 0-based index and makes it current.
//
// On failure the previous page stays cached, the error is recorded in the state
// and returned. If a newer GoToPage starts before this one completes, this
// result is dropped and nil is returned.
func (c *Controller) GoToPage(ctx context.Context, index int) error {
	c.mu.Lock()
	if err := c.validateIndex(index); err != nil {
		c.mu.Unlock()
		pageChangesTotal.WithLabelValues("invalid").Inc()
		return err
	}
	c.generation++
	gen := c.generation
	c.loading = true
	hooks := append([]func(){}, c.onNavigate...)
	c.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	c.logger.Debug().Int("page_index", index).Msg("Fetching page")

	page, err := c.fetcher.FetchPage(ctx, index+1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		pageChangesTotal.WithLabelValues("stale").Inc()
		c.logger.Debug().
			Int("page_index", index).
			Uint64("generation", gen).
			Msg("Discarding superseded page change")
		return nil
	}
	c.loading = false

	if err != nil {
		var fe *record.FetchError
		if !errors.As(err, &fe) {
			err = &record.FetchError{Page: index + 1, Err: err}
		}
		c.err = err
		pageChangesTotal.WithLabelValues("failed").Inc()
		c.logger.Warn().
			Err(err).
			Int("page_index", index).
			Msg("Page change failed - keeping previous page")
		return err
	}

	page.Index = index + 1
	c.cache.Replace(page)
	c.pageIndex = index
	c.err = nil
	pageChangesTotal.WithLabelValues("ok").Inc()

	c.logger.Info().
		Int("page_index", index).
		Int("records", page.Len()).
		Int("total", page.Total).
		Msg("Page changed")

	return nil
}

// validateIndex must be called with c.mu held.
func (c *Controller) validateIndex(index int) error {
	if index < 0 {
		return fmt.Errorf("%w: %d is negative", ErrInvalidPage, index)
	}
	total, known := c.cache.Total()
	if !known {
		return nil
	}
	if index > 0 && index*c.pageSize >= total {
		return fmt.Errorf("%w: %d is past the last page (total %d)", ErrInvalidPage, index, total)
	}
	return nil
}

// State returns the current pagination state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Page returns a copy of the cached page.
func (c *Controller) Page() record.Page {
	return c.cache.Page()
}

// Snapshot returns the state together with the cached page, taken atomically.
func (c *Controller) Snapshot() (State, record.Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked(), c.cache.Page()
}

func (c *Controller) stateLocked() State {
	total, known := c.cache.Total()
	return State{
		PageSize:   c.pageSize,
		PageIndex:  c.pageIndex,
		Total:      total,
		TotalKnown: known,
		Loading:    c.loading,
		Err:        c.err,
	}
}
