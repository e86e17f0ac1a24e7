package webutil

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
)

// ListParams carries the pagination and sorting query parameters of the
// list endpoints. Sort holds the column name as requested by the caller;
// it is echoed back in responses and only checked against the allow-list
// when building the ORDER BY clause.
type ListParams struct {
	Page    int
	PerPage int
	Sort    string
	Order   string // "asc" or "desc"
}

// ParseListParams reads page, per_page, sort and order from the query.
// Out-of-range numbers fall back to page 1 / size 10; order defaults to asc.
func ParseListParams(q url.Values) ListParams {
	page := intParam(q, "page", defaultPage)
	if page < 1 {
		page = defaultPage
	}
	perPage := intParam(q, "per_page", defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}

	sort := q.Get("sort")
	if sort == "" {
		sort = "id"
	}

	order := strings.ToLower(q.Get("order"))
	if order != "desc" {
		order = "asc"
	}

	return ListParams{Page: page, PerPage: perPage, Sort: sort, Order: order}
}

// Offset returns the row offset of the requested page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// OrderClause builds an "column direction" clause for the requested sort.
// A column outside the allow-list silently falls back to the default column,
// never an error.
func (p ListParams) OrderClause(allowed []string, fallback string) string {
	col := p.Sort
	if !slices.Contains(allowed, col) {
		col = fallback
	}
	return col + " " + p.Order
}

// TotalPages returns how many pages of size perPage the total rows span.
func TotalPages(total int64, perPage int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

func intParam(q url.Values, key string, fallback int) int {
	raw := q.Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
