// Package record defines the artwork records served by the collection API
// and the page envelope every fetch returns.
package record

import (
	"errors"
	"fmt"
)

// ID is the stable identifier of a record. Membership and equality of
// records are decided by ID alone.
type ID int64

// Record is a single artwork row.
type Record struct {
	ID            ID     `json:"id"`
	Title         string `json:"title"`
	PlaceOfOrigin string `json:"place_of_origin"`
	ArtistDisplay string `json:"artist_display"`
	Inscriptions  string `json:"inscriptions"`
	DateStart     int    `json:"date_start"`
	DateEnd       int    `json:"date_end"`
}

// Page is one window of the collection as returned by a single fetch.
type Page struct {
	// Index is the 1-based page number the page was fetched for.
	Index int `json:"index"`

	// Records are in collection order; len(Records) <= page size.
	Records []Record `json:"records"`

	// Total is the collection size reported alongside the page.
	Total int `json:"total"`
}

// Len returns the number of records on the page.
func (p Page) Len() int {
	return len(p.Records)
}

// ErrFetchFailed is the error kind for any failed page fetch
// (network, timeout, non-success status, undecodable body).
var ErrFetchFailed = errors.New("page fetch failed")

// FetchError records which page could not be fetched.
type FetchError struct {
	Page int
	Err  error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page %d: %v", e.Page, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports every FetchError as ErrFetchFailed.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}
