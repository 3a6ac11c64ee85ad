// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
)

// PageSize is the default number of rows returned by paged lists.
const PageSize = 50

// LimitPlusOne returns PageSize+1 as int64 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func LimitPlusOne() int64 { return int64(PageSize + 1) }

// ParsePage extracts the 1-based "page" query parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	s := r.URL.Query().Get("page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Offset returns the skip count for a 1-based page number.
func Offset(page int) int64 {
	return int64(page-1) * PageSize
}

// TrimPage trims a slice fetched with LimitPlusOne down to PageSize.
// It modifies the slice in place and reports whether a next page exists.
func TrimPage[T any](rows *[]T) (hasNext bool) {
	if len(*rows) > PageSize {
		*rows = (*rows)[:PageSize]
		return true
	}
	return false
}
