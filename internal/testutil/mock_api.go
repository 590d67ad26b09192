package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/artwork-select/pkg/record"
)

// ArtworksPath is the collection endpoint served by MockAPI.
const ArtworksPath = "/api/v1/artworks"

// mockFailure makes a page answer with status for the next times requests (forever if times < 0).
type mockFailure struct {
	status int
	times  int
}

// MockAPI is a configurable artworks API for testing the HTTP record source.
// Pages are 1-based and sized by the limit query parameter.
type MockAPI struct {
	server *httptest.Server

	mu        sync.Mutex
	records   []record.Record
	failures  map[int]*mockFailure
	delays    map[int]time.Duration
	rawBodies map[int]string
	headers   map[string]string
	etags     bool

	requests          map[int]int
	conditionalCount  int
	lastRequestHeader http.Header
	lastQuery         map[string]string
}

// NewMockAPI starts a server over total synthetic records (see Records).
func NewMockAPI(total int) *MockAPI {
	m := &MockAPI{
		records:   Records(total),
		failures:  make(map[int]*mockFailure),
		delays:    make(map[int]time.Duration),
		rawBodies: make(map[int]string),
		headers:   make(map[string]string),
		requests:  make(map[int]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(ArtworksPath, m.handleArtworks)
	m.server = httptest.NewServer(mux)

	return m
}

// URL returns the server base URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// FailPage makes page answer with status for the next times requests.
// times < 0 fails forever, status 0 clears the failure.
func (m *MockAPI) FailPage(page, status, times int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status == 0 {
		delete(m.failures, page)
		return
	}
	m.failures[page] = &mockFailure{status: status, times: times}
}

// SetDelay delays every answer for page by d.
func (m *MockAPI) SetDelay(page int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[page] = d
}

// SetRawBody makes page answer 200 with body verbatim.
func (m *MockAPI) SetRawBody(page int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawBodies[page] = body
}

// SetHeader adds a header to every response.
func (m *MockAPI) SetHeader(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headers[key] = value
}

// EnableETags makes responses carry an ETag and answer 304 to a matching If-None-Match.
func (m *MockAPI) EnableETags() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.etags = true
}

// RequestCount returns the number of requests for page.
func (m *MockAPI) RequestCount(page int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[page]
}

// TotalRequests returns the number of requests for any page.
func (m *MockAPI) TotalRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.requests {
		n += c
	}
	return n
}

// ConditionalCount returns the number of requests that carried a validator.
func (m *MockAPI) ConditionalCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conditionalCount
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockAPI) LastRequestHeader() http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequestHeader
}

// LastQuery returns the query parameters of the most recent request.
func (m *MockAPI) LastQuery() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastQuery
}

// Reset clears the request counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = make(map[int]int)
	m.conditionalCount = 0
	m.lastRequestHeader = nil
	m.lastQuery = nil
}

func (m *MockAPI) handleArtworks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	limit := atoiDefault(q.Get("limit"), 12)

	m.mu.Lock()
	m.requests[page]++
	m.lastRequestHeader = r.Header.Clone()
	m.lastQuery = map[string]string{
		"page":   q.Get("page"),
		"limit":  q.Get("limit"),
		"fields": q.Get("fields"),
	}
	conditional := r.Header.Get("If-None-Match")
	if conditional != "" || r.Header.Get("If-Modified-Since") != "" {
		m.conditionalCount++
	}

	delay := m.delays[page]
	failStatus := 0
	if f, ok := m.failures[page]; ok {
		failStatus = f.status
		if f.times > 0 {
			f.times--
			if f.times == 0 {
				delete(m.failures, page)
			}
		}
	}
	raw, hasRaw := m.rawBodies[page]
	for k, v := range m.headers {
		w.Header().Set(k, v)
	}
	etags := m.etags
	records := m.records
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if failStatus != 0 {
		w.WriteHeader(failStatus)
		fmt.Fprintf(w, `{"status":%d,"error":"mock failure","detail":"page %d failed"}`, failStatus, page)
		return
	}

	if hasRaw {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(raw))
		return
	}

	if etags {
		etag := fmt.Sprintf(`"page-%d-limit-%d"`, page, limit)
		if conditional == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}

	from := (page - 1) * limit
	to := min(from+limit, len(records))
	if from > len(records) || from < 0 {
		from, to = len(records), len(records)
	}

	data := make([]map[string]any, 0, to-from)
	for _, rec := range records[from:to] {
		data = append(data, artworkJSON(rec))
	}

	totalPages := 0
	if limit > 0 {
		totalPages = (len(records) + limit - 1) / limit
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"pagination": map[string]any{
			"total":        len(records),
			"limit":        limit,
			"offset":       from,
			"total_pages":  totalPages,
			"current_page": page,
		},
		"data": data,
	})
}

// artworkJSON renders empty strings as null, as the real API does for missing attributes.
func artworkJSON(r record.Record) map[string]any {
	nullable := func(s string) any {
		if s == "" {
			return nil
		}
		return s
	}
	return map[string]any{
		"id":              r.ID,
		"title":           nullable(r.Title),
		"place_of_origin": nullable(r.PlaceOfOrigin),
		"artist_display":  nullable(r.ArtistDisplay),
		"inscriptions":    nullable(r.Inscriptions),
		"date_start":      r.DateStart,
		"date_end":        r.DateEnd,
	}
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
