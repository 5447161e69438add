// Package pagination normalizes page/page_size parameters for paged
// listings.
package pagination

import "fmt"

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Params selects one page of a listing.
type Params struct {
	Page     int
	PageSize int
}

// Normalize fills in defaults and clamps the page size to MaxPageSize.
func Normalize(params Params) Params {
	if params.Page < 1 {
		params.Page = 1
	}

	if params.PageSize <= 0 {
		params.PageSize = DefaultPageSize
	}
	if params.PageSize > MaxPageSize {
		params.PageSize = MaxPageSize
	}

	return params
}

// Validate rejects parameters that Normalize would have to guess at.
func Validate(params Params) error {
	if params.Page < 0 {
		return fmt.Errorf("page cannot be negative")
	}
	if params.PageSize < 0 {
		return fmt.Errorf("page size cannot be negative")
	}
	if params.PageSize > MaxPageSize {
		return fmt.Errorf("page size %d exceeds maximum %d", params.PageSize, MaxPageSize)
	}
	return nil
}

// PageCount returns the number of pages needed to show total items.
func PageCount(total int64, pageSize int) int64 {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + int64(pageSize) - 1) / int64(pageSize)
}
