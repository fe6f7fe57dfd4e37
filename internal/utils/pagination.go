// Package utils provides small helpers shared by the HTTP layer and the
// operator CLI. They carry no check-in semantics.
package utils

import "strconv"

// Page size limits for listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AtoiDefault parses s, returning def when s is empty or not an integer.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampPage parses page and page_size strings and bounds them: page >= 1,
// 1 <= pageSize <= MaxPageSize, defaulting to 1 and DefaultPageSize.
func ClampPage(pageRaw, sizeRaw string) (page, pageSize int) {
	page = AtoiDefault(pageRaw, 1)
	if page < 1 {
		page = 1
	}
	pageSize = AtoiDefault(sizeRaw, DefaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// PageBounds returns the half-open slice window [start, end) of page over
// total items, plus the number of pages. Pages past the end yield an empty
// window at total.
func PageBounds(total, page, pageSize int) (start, end, totalPages int) {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}
	totalPages = (total + pageSize - 1) / pageSize
	start = (page - 1) * pageSize
	if start > total {
		start = total
	}
	end = start + pageSize
	if end > total {
		end = total
	}
	return start, end, totalPages
}
