package paginator

import "strconv"

// DefaultPageSize 列表页统一每页条数
const DefaultPageSize = 10

// Page describes one resolved page of a listing.
type Page struct {
	Number   int   `json:"number"`
	Size     int   `json:"size"`
	Total    int64 `json:"total"`
	NumPages int   `json:"num_pages"`
	HasNext  bool  `json:"has_next"`
	HasPrev  bool  `json:"has_prev"`
}

// Resolve clamps a requested page number against the total item count:
// pages below 1 become 1, pages past the end become the last non-empty
// page. An empty listing still reports one (empty) page.
func Resolve(requested, size int, total int64) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}
	n := requested
	if n < 1 {
		n = 1
	}
	if n > numPages {
		n = numPages
	}
	return Page{
		Number:   n,
		Size:     size,
		Total:    total,
		NumPages: numPages,
		HasNext:  n < numPages,
		HasPrev:  n > 1,
	}
}

// ParsePage reads a page query value, tolerating garbage.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Offset returns the DB offset for the resolved page.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }
