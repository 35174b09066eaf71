package shared

import "math"

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// LastPage returns the zero-based page holding the final row of a table,
// so that appending a row lands the view on the page containing it.
func LastPage(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = 10
	}
	if count <= 0 {
		return 0
	}
	return (count - 1) / pageSize
}

// ClampPage keeps a zero-based page index within the table after rows
// were removed.
func ClampPage(page, count, pageSize int) int {
	last := LastPage(count, pageSize)
	if page > last {
		return last
	}
	if page < 0 {
		return 0
	}
	return page
}
