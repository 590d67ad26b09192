package source

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Sternrassler/artwork-select/pkg/record"
)

// pageResponse is the JSON envelope of GET /api/v1/artworks.
type pageResponse struct {
	Pagination struct {
		Total       int `json:"total"`
		Limit       int `json:"limit"`
		TotalPages  int `json:"total_pages"`
		CurrentPage int `json:"current_page"`
	} `json:"pagination"`
	Data *[]artwork `json:"data"`
}

// artwork mirrors one element of data. Every attribute but id may be null.
type artwork struct {
	ID            *int64  `json:"id"`
	Title         *string `json:"title"`
	PlaceOfOrigin *string `json:"place_of_origin"`
	ArtistDisplay *string `json:"artist_display"`
	Inscriptions  *string `json:"inscriptions"`
	DateStart     *int    `json:"date_start"`
	DateEnd       *int    `json:"date_end"`
}

// decodePage parses a page body into records.
func decodePage(body []byte) (record.Page, error) {
	var resp pageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return record.Page{}, fmt.Errorf("parse page: %w", err)
	}
	if resp.Data == nil {
		return record.Page{}, errors.New("parse page: missing data array")
	}

	records := make([]record.Record, 0, len(*resp.Data))
	for i, a := range *resp.Data {
		if a.ID == nil {
			return record.Page{}, fmt.Errorf("parse page: record %d has no id", i)
		}
		records = append(records, record.Record{
			ID:            record.ID(*a.ID),
			Title:         deref(a.Title),
			PlaceOfOrigin: deref(a.PlaceOfOrigin),
			ArtistDisplay: deref(a.ArtistDisplay),
			Inscriptions:  deref(a.Inscriptions),
			DateStart:     deref(a.DateStart),
			DateEnd:       deref(a.DateEnd),
		})
	}

	return record.Page{
		Index:   resp.Pagination.CurrentPage,
		Records: records,
		Total:   resp.Pagination.Total,
	}, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
