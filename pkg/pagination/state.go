package pagination

import (
	"sync"

	"github.com/Sternrassler/artwork-select/pkg/record"
)

// State is a snapshot of the pagination position.
type State struct {
	// PageSize is fixed for the session.
	PageSize int `json:"page_size"`

	// PageIndex is the 0-based index of the page on display.
	PageIndex int `json:"page_index"`

	// Total is the last known collection size. Only meaningful when TotalKnown.
	Total      int  `json:"total"`
	TotalKnown bool `json:"total_known"`

	// Loading is true while a page change fetch is in flight.
	Loading bool `json:"loading"`

	// Err is the failure of the most recent page change, nil after a success.
	Err error `json:"-"`
}

// Offset returns the collection position of the first record on the current page.
func (s State) Offset() int {
	return s.PageIndex * s.PageSize
}

// TotalPages returns the number of pages in the collection, 0 while the total is unknown.
func (s State) TotalPages() int {
	if !s.TotalKnown || s.PageSize <= 0 {
		return 0
	}
	return (s.Total + s.PageSize - 1) / s.PageSize
}

// Available returns how many records exist from the current page onward.
// Returns -1 while the total is unknown.
func (s State) Available() int {
	if !s.TotalKnown {
		return -1
	}
	if n := s.Total - s.Offset(); n > 0 {
		return n
	}
	return 0
}

// PageCache holds the records of the page on display and the last known total.
// The page is replaced wholesale, never merged.
type PageCache struct {
	mu    sync.RWMutex
	page  record.Page
	total int
	known bool
}

// Replace swaps in a freshly fetched page.
func (c *PageCache) Replace(page record.Page) {
	records := make([]record.Record, len(page.Records))
	copy(records, page.Records)
	page.Records = records

	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = page
	c.total = page.Total
	c.known = true
}

// Page returns a copy of the cached page.
func (c *PageCache) Page() record.Page {
	c.mu.RLock()
	defer c.mu.RUnlock()

	page := c.page
	page.Records = make([]record.Record, len(c.page.Records))
	copy(page.Records, c.page.Records)
	return page
}

// Total returns the last known total and whether any page has been loaded yet.
func (c *PageCache) Total() (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total, c.known
}
