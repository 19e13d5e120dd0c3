package models

// MaxPageSize caps the number of rows any list endpoint returns.
const MaxPageSize = 100

// Page is a validated 1-based page request.
type Page struct {
	Number int
	Limit  int
}

// NewPage validates a page request. Zero or negative values are rejected
// rather than coerced; limits above MaxPageSize are clamped.
func NewPage(number, limit int) (Page, error) {
	fields := map[string]string{}
	if number <= 0 {
		fields["page"] = "page must be a positive integer"
	}
	if limit <= 0 {
		fields["limit"] = "limit must be a positive integer"
	}
	if len(fields) > 0 {
		return Page{}, NewFieldValidationError(fields)
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Page{Number: number, Limit: limit}, nil
}

// Offset returns the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// PageMeta describes a page of results.
type PageMeta struct {
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
}

// NewPageMeta builds metadata for page p of total rows.
func NewPageMeta(p Page, total int64) PageMeta {
	last := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	if last < 1 {
		last = 1
	}
	return PageMeta{Total: total, PerPage: p.Limit, CurrentPage: p.Number, LastPage: last}
}

// Paged is a page of items plus its metadata.
type Paged[T any] struct {
	Items []T
	Meta  PageMeta
}
