package pagination

const (
	// DefaultLimit applies when the caller does not ask for a page size.
	DefaultLimit = 50
	// MaxLimit caps a single page.
	MaxLimit = 1000
)

// Page is an offset/limit window over an id-ordered result set.
type Page struct {
	Limit  int
	Offset int
}

// Normalize fills defaults and clamps out-of-range values.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Window returns the slice of items covered by the page. Items must already be filtered and ordered.
func Window[T any](items []T, page Page) []T {
	page = page.Normalize()
	if page.Offset >= len(items) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}

// FromQuery builds a page from optional query values; nil means the default.
func FromQuery(limit, offset *int) Page {
	var page Page
	if limit != nil {
		page.Limit = *limit
	}
	if offset != nil {
		page.Offset = *offset
	}
	return page.Normalize()
}
