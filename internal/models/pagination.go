package models

import "math"

// Pager carries page/limit query parameters. Pagination is stateless;
// repeated reads during concurrent writes may show minor skew.
type Pager struct {
	Page  int
	Limit int
}

// Normalize clamps the pager to sane defaults.
func (p Pager) Normalize() Pager {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 50 {
		p.Limit = 10
	}
	return p
}

// Skip returns the number of records to skip for the current page.
func (p Pager) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

// PageMeta describes a page of results.
type PageMeta struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPageMeta builds pagination metadata for a normalized pager and total count.
func NewPageMeta(p Pager, total int64) PageMeta {
	totalPages := int(math.Ceil(float64(total) / float64(p.Limit)))
	return PageMeta{
		CurrentPage:     p.Page,
		TotalPages:      totalPages,
		TotalItems:      total,
		ItemsPerPage:    p.Limit,
		HasNextPage:     p.Page < totalPages,
		HasPreviousPage: p.Page > 1,
	}
}
