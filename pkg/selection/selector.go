package selection

import (
	"context"
	"fmt"
	"sync"

	"github.com/Sternrassler/artwork-select/pkg/logging"
	"github.com/Sternrassler/artwork-select/pkg/pagination"
	"github.com/Sternrassler/artwork-select/pkg/record"
	"github.com/rs/zerolog"
)

// View exposes the pagination position and the cached page, read atomically.
// *pagination.Controller implements it.
type View interface {
	Snapshot() (pagination.State, record.Page)
}

// PageBatchFetcher fetches a contiguous run of pages in page order, all or nothing.
// *pagination.BatchFetcher implements it.
type PageBatchFetcher interface {
	FetchPages(ctx context.Context, first, count int) ([]record.Page, error)
}

// Result describes the outcome of one SelectFirstK call.
type Result struct {
	// Generation tags the call; 0 for a no-op.
	Generation uint64 `json:"generation"`

	// Requested is the k the caller asked for.
	Requested int `json:"requested"`

	// Selected is the size of the committed selection.
	Selected int `json:"selected"`

	// PagesFetched counts the additional pages requested from the source.
	PagesFetched int `json:"pages_fetched"`

	// Committed is true when the result replaced the selection.
	Committed bool `json:"committed"`

	// Stale is true when a newer operation superseded this one and its result was dropped.
	Stale bool `json:"stale"`
}

// plan is the fetch plan for one bulk selection.
type plan struct {
	want      int // records to select after capping
	have      int // records taken from the cached page
	remaining int // records to take from fetched pages
	first     int // first 1-based page to fetch
	pages     int // number of pages to fetch
}

// planSelection computes which records come from the cache and which pages to fetch.
func planSelection(state pagination.State, page record.Page, k int) plan {
	p := plan{want: k}

	if available := state.Available(); available >= 0 && p.want > available {
		p.want = available
	}

	// Without the current page in cache, start fetching at the current page itself
	cached := page.Records
	p.first = state.PageIndex + 2
	if page.Index != state.PageIndex+1 {
		cached = nil
		p.first = state.PageIndex + 1
	}

	p.have = min(p.want, len(cached))
	p.remaining = p.want - p.have
	if p.remaining <= 0 || state.PageSize <= 0 {
		return p
	}

	p.pages = (p.remaining + state.PageSize - 1) / state.PageSize
	if last := state.TotalPages(); state.TotalKnown {
		if limit := last - p.first + 1; p.pages > limit {
			p.pages = max(limit, 0)
		}
	}
	return p
}

// Selector implements bulk range selection: select the first K records of the
// collection starting at the page on display, fetching following pages as needed.
//
// Every call is tagged with a generation. Only the most recently initiated
// operation may commit; an older one completing later is discarded.
type Selector struct {
	view    View
	fetcher PageBatchFetcher
	store   *Store
	logger  zerolog.Logger

	mu         sync.Mutex
	generation uint64
}

// NewSelector creates a selector committing into store.
func NewSelector(view View, fetcher PageBatchFetcher, store *Store) *Selector {
	return &Selector{
		view:    view,
		fetcher: fetcher,
		store:   store,
		logger:  logging.NewLogger("selector"),
	}
}

// Supersede invalidates every operation in flight and returns the new generation.
func (s *Selector) Supersede() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// Generation returns the generation of the most recently initiated operation.
func (s *Selector) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// SelectFirstK replaces the selection with the first k records starting at the
// current page, capped at the records that exist.
//
// k <= 0 is a no-op. If any page fetch fails the selection is left untouched
// and an error matching record.ErrFetchFailed is returned. A call superseded
// before it completes returns Result{Stale: true} and a nil error.
func (s *Selector) SelectFirstK(ctx context.Context, k int) (Result, error) {
	if k <= 0 {
		bulkSelectionsTotal.WithLabelValues("noop").Inc()
		return Result{Requested: k}, nil
	}

	gen := s.Supersede()
	res := Result{Generation: gen, Requested: k}
	logger := s.logger.With().Uint64("generation", gen).Int("k", k).Logger()

	state, page := s.view.Snapshot()

	// Without the current page and its total the fetch cannot be sized; load that page first
	if !state.TotalKnown || page.Index != state.PageIndex+1 {
		current, err := s.fetcher.FetchPages(ctx, state.PageIndex+1, 1)
		if err != nil {
			return s.fail(logger, res, err)
		}
		page = current[0]
		state.Total, state.TotalKnown = page.Total, true
		res.PagesFetched = 1
		logger.Debug().Int("page", page.Index).Int("total", page.Total).Msg("Loaded current page for bulk selection")
	}

	p := planSelection(state, page, k)

	logger.Debug().
		Int("page_index", state.PageIndex).
		Int("from_cache", p.have).
		Int("first_page", p.first).
		Int("pages_to_fetch", p.pages).
		Msg("Planned bulk selection")

	var fetched []record.Page
	if p.pages > 0 {
		res.PagesFetched += p.pages

		var err error
		fetched, err = s.fetcher.FetchPages(ctx, p.first, p.pages)
		if err != nil {
			return s.fail(logger, res, err)
		}
	}
	if res.PagesFetched > 0 {
		bulkPagesFetched.Observe(float64(res.PagesFetched))
	}

	n := p.have
	for _, pg := range fetched {
		n += len(pg.Records)
	}
	selected := make([]record.Record, 0, min(n, p.want))
	selected = append(selected, page.Records[:p.have]...)
	for _, pg := range fetched {
		for _, r := range pg.Records {
			if len(selected) == p.want {
				break
			}
			selected = append(selected, r)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return s.discard(logger, res), nil
	}
	s.store.ReplaceAll(selected)

	res.Selected = s.store.Len()
	res.Committed = true
	bulkSelectionsTotal.WithLabelValues("committed").Inc()

	logger.Info().
		Int("selected", res.Selected).
		Int("pages_fetched", res.PagesFetched).
		Msg("Bulk selection committed")

	return res, nil
}

// fail reports a failed fetch, unless the operation was superseded meanwhile.
func (s *Selector) fail(logger zerolog.Logger, res Result, err error) (Result, error) {
	if s.Generation() != res.Generation {
		return s.discard(logger, res), nil
	}
	bulkSelectionsTotal.WithLabelValues("failed").Inc()
	logger.Error().Err(err).Msg("Bulk selection failed - selection unchanged")
	return res, fmt.Errorf("select first %d rows: %w", res.Requested, err)
}

func (s *Selector) discard(logger zerolog.Logger, res Result) Result {
	bulkSelectionsTotal.WithLabelValues("stale").Inc()
	logger.Debug().Msg("Discarding superseded bulk selection")
	res.Stale = true
	return res
}
