// Package shared holds the building blocks every bounded context uses:
// entity bases, paging, and the domain error types.
package shared

import (
	"fmt"
	"math"
)

// Page size bounds accepted by every listing
const (
	MinPageSize = 1
	MaxPageSize = 100
)

// Filter is a listing request: one page, an optional sort, a search term.
// Repositories ignore sort columns they do not whitelist.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// Offset returns the number of rows to skip for the filter's page.
// It saturates at math.MaxInt, so a page far past the end stays empty.
func (f Filter) Offset() int {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PageSize
}

// NewPageFilter builds a filter from raw paging input.
// A zero pageSize selects defaultSize; pages below 1 are clamped to 1.
// A page size outside [MinPageSize, MaxPageSize] is a validation error.
func NewPageFilter(page, pageSize, defaultSize int) (Filter, error) {
	if pageSize == 0 {
		pageSize = defaultSize
	}
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		return Filter{}, NewValidationError("per_page",
			fmt.Sprintf("must be between %d and %d", MinPageSize, MaxPageSize))
	}
	return Filter{Page: max(page, 1), PageSize: pageSize}, nil
}

// Paginated is one page of a listing plus the totals needed to navigate it
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated wraps items; a nil slice becomes empty so it encodes as []
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	p := Paginated[T]{Items: items, Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		p.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return p
}

// MapPaginated converts the items of a page, keeping its metadata
func MapPaginated[T, U any](p Paginated[T], fn func(T) U) Paginated[U] {
	out := make([]U, len(p.Items))
	for i, item := range p.Items {
		out[i] = fn(item)
	}
	return Paginated[U]{
		Items:      out,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}
