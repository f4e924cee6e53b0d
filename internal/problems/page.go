package problems

import (
	"fmt"
	"slices"

	"github.com/mcncl/kyopro/internal/errors"
)

// PageSizes are the page sizes a listing may use.
var PageSizes = []int{20, 50, 100}

// DefaultPageSize is used when no page size is given.
const DefaultPageSize = 50

// Page is one page of a problem listing.
type Page struct {
	Records      []Problem
	Page         int
	PerPage      int
	TotalRecords int
	TotalPages   int
}

// ValidatePageSize checks that n is one of PageSizes.
func ValidatePageSize(n int) error {
	if slices.Contains(PageSizes, n) {
		return nil
	}
	return errors.NewValidationError(fmt.Sprintf("page size must be one of %v, got %d", PageSizes, n), nil)
}

// Paginate slices ps into pages of perPage records and returns the requested
// 1-based page. Out-of-range pages are clamped to the first or last page. A
// perPage of zero selects DefaultPageSize.
func Paginate(ps []Problem, page, perPage int) (Page, error) {
	if perPage == 0 {
		perPage = DefaultPageSize
	}
	if err := ValidatePageSize(perPage); err != nil {
		return Page{}, err
	}

	total := len(ps)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	page = max(1, min(page, totalPages))

	start := min((page-1)*perPage, total)
	end := min(page*perPage, total)

	return Page{
		Records:      slices.Clone(ps[start:end]),
		Page:         page,
		PerPage:      perPage,
		TotalRecords: total,
		TotalPages:   totalPages,
	}, nil
}
