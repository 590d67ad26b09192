package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Sternrassler/artwork-select/pkg/pagination"
	"github.com/Sternrassler/artwork-select/pkg/record"
	"github.com/Sternrassler/artwork-select/pkg/selection"
	"github.com/Sternrassler/artwork-select/pkg/session"
	"github.com/go-chi/chi/v5"
)

// RowNumberField names the input a failed bulk selection is reported against.
const RowNumberField = "rowNumber"

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// SelectionResponse describes the current selection.
type SelectionResponse struct {
	Count   int             `json:"count"`
	Records []record.Record `json:"records"`
}

// SelectFirstResponse is returned by a bulk selection.
type SelectFirstResponse struct {
	Result    selection.Result  `json:"result"`
	Selection SelectionResponse `json:"selection"`
}

// ToggleResponse is returned by a row toggle.
type ToggleResponse struct {
	ID       record.ID `json:"id"`
	Selected bool      `json:"selected"`
	Count    int       `json:"count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// GET /api/page
func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sess.View())
}

// POST /api/page/{index}
func (s *Server) handleGoToPage(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "page index must be an integer"})
		return
	}

	if err := s.sess.GoToPage(r.Context(), index); err != nil {
		switch {
		case errors.Is(err, pagination.ErrInvalidPage):
			s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, record.ErrFetchFailed):
			s.writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		default:
			s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	s.writeJSON(w, http.StatusOK, s.sess.View())
}

// GET /api/selection
func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.selection())
}

// DELETE /api/selection
func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.sess.ClearSelection()
	s.writeJSON(w, http.StatusOK, s.selection())
}

// POST /api/selection/first/{k}
// A k that is not a positive integer selects nothing and changes nothing.
func (s *Server) handleSelectFirst(w http.ResponseWriter, r *http.Request) {
	k, err := strconv.Atoi(chi.URLParam(r, "k"))
	if err != nil {
		k = 0
	}

	res, err := s.sess.SelectFirstK(r.Context(), k)
	if err != nil {
		s.logger.Warn().Err(err).Int("k", k).Msg("Bulk selection failed")
		s.writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error: "Failed to fetch rows: " + err.Error(),
			Field: RowNumberField,
		})
		return
	}

	s.writeJSON(w, http.StatusOK, SelectFirstResponse{
		Result:    res,
		Selection: s.selection(),
	})
}

// POST /api/selection/toggle/{id}
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "id must be an integer"})
		return
	}

	selected, err := s.sess.Toggle(record.ID(id))
	if errors.Is(err, session.ErrNotOnPage) {
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, ToggleResponse{
		ID:       record.ID(id),
		Selected: selected,
		Count:    s.sess.Selection().Len(),
	})
}

func (s *Server) selection() SelectionResponse {
	snap := s.sess.Selection()
	records := snap.Records
	if records == nil {
		records = []record.Record{}
	}
	return SelectionResponse{Count: snap.Len(), Records: records}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write response")
	}
}
