package store

import "fmt"

// DefaultLimit is the page size used when a caller does not choose one.
const DefaultLimit = 100

// Page selects a window of a listing: the first Skip entities are skipped
// and at most Limit are returned.
type Page struct {
	Skip  int
	Limit int
}

// DefaultPage is the first page of DefaultLimit entities.
var DefaultPage = Page{Skip: 0, Limit: DefaultLimit}

// Validate rejects negative bounds.
func (p Page) Validate() error {
	if p.Skip < 0 {
		return fmt.Errorf("%w: skip must be non-negative, got %d", ErrInvalidPage, p.Skip)
	}
	if p.Limit < 0 {
		return fmt.Errorf("%w: limit must be non-negative, got %d", ErrInvalidPage, p.Limit)
	}
	return nil
}
