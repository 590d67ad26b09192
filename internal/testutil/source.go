// Package testutil provides fake record sources and a mock artworks API for tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Sternrassler/artwork-select/pkg/record"
)

// Records builds n synthetic artworks with IDs 1..n in collection order.
func Records(n int) []record.Record {
	out := make([]record.Record, n)
	for i := range out {
		out[i] = record.Record{
			ID:            record.ID(i + 1),
			Title:         fmt.Sprintf("Artwork %d", i+1),
			PlaceOfOrigin: "Chicago",
			ArtistDisplay: fmt.Sprintf("Artist %d", i%7),
			DateStart:     1900 + i,
			DateEnd:       1901 + i,
		}
	}
	return out
}

// FakeSource is an in-memory record source with per-page delays, failures and gates.
type FakeSource struct {
	mu       sync.Mutex
	records  []record.Record
	pageSize int
	delays   map[int]time.Duration
	failures map[int]error
	gates    map[int]chan struct{}
	calls    []int
}

// NewFakeSource creates a source over total synthetic records.
func NewFakeSource(total, pageSize int) *FakeSource {
	return &FakeSource{
		records:  Records(total),
		pageSize: pageSize,
		delays:   make(map[int]time.Duration),
		failures: make(map[int]error),
		gates:    make(map[int]chan struct{}),
	}
}

// SetDelay makes every fetch of page wait d before answering.
func (f *FakeSource) SetDelay(page int, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[page] = d
}

// FailPage makes every fetch of page return err. A nil err clears the failure.
func (f *FakeSource) FailPage(page int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, page)
		return
	}
	f.failures[page] = err
}

// Block holds fetches of page until the returned release func is called.
func (f *FakeSource) Block(page int) (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[page] = gate
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.gates, page)
			f.mu.Unlock()
			close(gate)
		})
	}
}

// SetRecord replaces the record at collection position i.
func (f *FakeSource) SetRecord(i int, r record.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[i] = r
}

// Calls returns the pages requested so far, sorted.
func (f *FakeSource) Calls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]int(nil), f.calls...)
	sort.Ints(out)
	return out
}

// CallCount returns the number of fetches issued so far.
func (f *FakeSource) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// ResetCalls clears the call log.
func (f *FakeSource) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// FetchPage implements pagination.PageFetcher.
func (f *FakeSource) FetchPage(ctx context.Context, page int) (record.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, page)
	delay := f.delays[page]
	failure := f.failures[page]
	gate := f.gates[page]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return record.Page{}, ctx.Err()
		}
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return record.Page{}, ctx.Err()
		}
	}

	if failure != nil {
		return record.Page{}, failure
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	start := (page - 1) * f.pageSize
	end := start + f.pageSize
	if start > len(f.records) {
		start = len(f.records)
	}
	if end > len(f.records) {
		end = len(f.records)
	}
	records := make([]record.Record, end-start)
	copy(records, f.records[start:end])

	return record.Page{Index: page, Records: records, Total: len(f.records)}, nil
}
