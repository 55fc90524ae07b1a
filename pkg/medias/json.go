package medias

import (
	"encoding/json"
	"fmt"
)

// Page is the envelope wrapping every collection response.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Entity constrains the record types that travel in a Page.
type Entity interface {
	Media | Personne | Organisation
}

// ParsePage parses a collection envelope from JSON.
// A missing data array yields an empty, non-nil slice.
func ParsePage[T Entity](data []byte) (*Page[T], error) {
	var p Page[T]
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	if p.Data == nil {
		p.Data = []T{}
	}
	return &p, nil
}

// ToJSON converts a collection envelope to JSON.
func ToJSON[T Entity](p *Page[T], pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(p, "", "  ")
	}
	return json.Marshal(p)
}

// NewPage wraps a full collection in a single-page envelope.
func NewPage[T Entity](items []T) *Page[T] {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	pages := 1
	if n == 0 {
		pages = 0
	}
	return &Page[T]{
		Data: items,
		Pagination: Pagination{
			Page:  1,
			Limit: n,
			Total: n,
			Pages: pages,
		},
	}
}
