// Package pagination implements offset pagination with the standard
// {total, page, page_size, pages} metadata envelope used by all list
// endpoints.
package pagination

const (
	// DefaultPageSize is applied when the client omits page_size or sends
	// a non-positive value.
	DefaultPageSize = 10

	// MaxPageSize caps page_size to keep result sets bounded.
	MaxPageSize = 200
)

// Params carries normalized pagination input. Use Normalize to build one
// from raw query values.
type Params struct {
	Page     int
	PageSize int
}

// Normalize clamps raw page/page_size values into valid ranges.
// Non-positive pages become 1; non-positive or oversized page sizes
// fall back to DefaultPageSize / MaxPageSize.
func Normalize(page, pageSize int) Params {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Params{Page: page, PageSize: pageSize}
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Metadata describes one page of a larger result set.
type Metadata struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Pages    int `json:"pages"`
}

// NewMetadata computes page counts for a total row count. An empty result
// set has zero pages.
func NewMetadata(total int, p Params) Metadata {
	pages := 0
	if total > 0 {
		pages = (total + p.PageSize - 1) / p.PageSize
	}
	return Metadata{
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
		Pages:    pages,
	}
}

// Page slices one page out of an already-loaded result set. Used where the
// full set is small or already in memory; database-backed lists push
// LIMIT/OFFSET into the query instead.
func Page[T any](items []T, p Params) ([]T, Metadata) {
	meta := NewMetadata(len(items), p)

	start := p.Offset()
	if start >= len(items) {
		return []T{}, meta
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}
