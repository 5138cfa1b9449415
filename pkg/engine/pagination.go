package engine

import "strconv"

// Pagination bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is a normalized page/limit pair.
type Page struct {
	Number int
	Limit  int
}

// NewPage normalizes raw page/limit values: pages below 1 become 1, limits
// below 1 fall back to defaultLimit, limits above MaxLimit are capped.
func NewPage(page, limit, defaultLimit int) Page {
	if defaultLimit < 1 {
		defaultLimit = DefaultLimit
	}
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Number: page, Limit: limit}
}

// ParsePage normalizes raw query-string values. Non-numeric input falls back
// to the defaults.
func ParsePage(pageStr, limitStr string, defaultLimit int) Page {
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		page = DefaultPage
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		limit = 0
	}
	return NewPage(page, limit, defaultLimit)
}

// Skip returns the store-level offset for this page.
func (p Page) Skip() int64 {
	return int64(p.Number-1) * int64(p.Limit)
}

// TotalPages computes the page count for a total row count. An empty result
// set still has one (empty) page.
func (p Page) TotalPages(total int64) int64 {
	if total <= 0 {
		return 1
	}
	limit := int64(p.Limit)
	return (total + limit - 1) / limit
}
