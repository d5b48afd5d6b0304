// Package paging slices ordered lists into pages.
package paging

// Page is one window over a list. Items aliases the input slice.
type Page[T any] struct {
	Items     []T  `json:"items"`
	Page      int  `json:"page"`
	PageCount int  `json:"pageCount"`
	Total     int  `json:"total"`
	HasPrev   bool `json:"hasPrev"`
	HasNext   bool `json:"hasNext"`
}

// Paginate never fails: perPage below 1 is treated as 1 and page is clamped
// into [1, PageCount].
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage < 1 {
		perPage = 1
	}
	total := len(items)
	pageCount := PageCount(total, perPage)
	page = Clamp(page, pageCount)

	start := (page - 1) * perPage
	end := min(start+perPage, total)

	window := items[start:end:end]
	if window == nil {
		window = []T{}
	}
	return Page[T]{
		Items:     window,
		Page:      page,
		PageCount: pageCount,
		Total:     total,
		HasPrev:   page > 1,
		HasNext:   page < pageCount,
	}
}

// PageCount is max(1, ceil(total/perPage)) with perPage floored at 1.
func PageCount(total, perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	n := (total + perPage - 1) / perPage
	if n < 1 {
		return 1
	}
	return n
}

// Clamp maps any page number into [1, pageCount].
func Clamp(page, pageCount int) int {
	if pageCount < 1 {
		pageCount = 1
	}
	switch {
	case page < 1:
		return 1
	case page > pageCount:
		return pageCount
	}
	return page
}
