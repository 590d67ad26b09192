// Package session ties page navigation, the selection store and bulk range
// selection together for one user of the artworks table.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/artwork-select/pkg/pagination"
	"github.com/Sternrassler/artwork-select/pkg/record"
	"github.com/Sternrassler/artwork-select/pkg/selection"
)

// DefaultPageSize is the number of rows shown per page.
const DefaultPageSize = 12

// ErrNotOnPage is returned when toggling a record that is not on the page on display.
var ErrNotOnPage = errors.New("record is not on the current page")

// Config holds session configuration.
type Config struct {
	// PageSize is fixed for the lifetime of the session.
	PageSize int

	// Fetch configures the concurrent page fetches behind bulk selection.
	Fetch pagination.Config
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		PageSize: DefaultPageSize,
		Fetch:    pagination.DefaultConfig(),
	}
}

// Row is a record of the current page together with its selection flag.
type Row struct {
	record.Record
	Selected bool `json:"selected"`
}

// View is what a table renders: the pagination state and the rows of the current page.
type View struct {
	State         pagination.State `json:"state"`
	Error         string           `json:"error,omitempty"`
	Rows          []Row            `json:"rows"`
	SelectedCount int              `json:"selected_count"`
}

// Session is one table: current page, selection and bulk selector.
type Session struct {
	controller *pagination.Controller
	store      *selection.Store
	selector   *selection.Selector
}

// New creates a session reading from source. Nothing is fetched until GoToPage.
func New(source pagination.PageFetcher, cfg Config) (*Session, error) {
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}

	controller, err := pagination.NewController(source, cfg.PageSize)
	if err != nil {
		return nil, fmt.Errorf("create controller: %w", err)
	}

	store := selection.NewStore()
	selector := selection.NewSelector(controller, pagination.NewBatchFetcher(source, cfg.Fetch), store)

	// A page change abandons any bulk selection still in flight
	controller.OnNavigate(func() { selector.Supersede() })

	return &Session{
		controller: controller,
		store:      store,
		selector:   selector,
	}, nil
}

// GoToPage shows the page with the given 0-based index.
func (s *Session) GoToPage(ctx context.Context, index int) error {
	return s.controller.GoToPage(ctx, index)
}

// State returns the pagination state.
func (s *Session) State() pagination.State {
	return s.controller.State()
}

// SelectFirstK replaces the selection with the first k records from the current page on.
func (s *Session) SelectFirstK(ctx context.Context, k int) (selection.Result, error) {
	return s.selector.SelectFirstK(ctx, k)
}

// Toggle flips the selection of the record with id on the current page.
// Returns true if the record is selected afterwards.
func (s *Session) Toggle(id record.ID) (bool, error) {
	for _, r := range s.controller.Page().Records {
		if r.ID == id {
			return s.store.Toggle(r), nil
		}
	}
	return false, fmt.Errorf("%w: id %d", ErrNotOnPage, id)
}

// ToggleRecord flips the selection of r, wherever it came from.
func (s *Session) ToggleRecord(r record.Record) bool {
	return s.store.Toggle(r)
}

// Selection returns the current selection.
func (s *Session) Selection() selection.Snapshot {
	return s.store.Current()
}

// ClearSelection empties the selection and abandons any bulk selection in flight.
func (s *Session) ClearSelection() {
	s.selector.Supersede()
	s.store.Clear()
}

// View returns the current page rows with their selection flags.
func (s *Session) View() View {
	state, page := s.controller.Snapshot()

	rows := make([]Row, len(page.Records))
	for i, r := range page.Records {
		rows[i] = Row{Record: r, Selected: s.store.Contains(r.ID)}
	}

	v := View{
		State:         state,
		Rows:          rows,
		SelectedCount: s.store.Len(),
	}
	if state.Err != nil {
		v.Error = state.Err.Error()
	}
	return v
}
