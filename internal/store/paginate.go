package store

// LandlordPageSize is the client-side page size of the landlord booking list
const LandlordPageSize = 5

// PageView is one client-side page of an already fetched list
type PageView[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// Paginate slices items for display. There is always at least one page and
// page is clamped into [1, TotalPages].
func Paginate[T any](items []T, page, size int) PageView[T] {
	if size <= 0 {
		size = LandlordPageSize
	}
	totalPages := (len(items) + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	out := make([]T, end-start)
	copy(out, items[start:end])
	return PageView[T]{
		Items:      out,
		Page:       page,
		PageSize:   size,
		Total:      len(items),
		TotalPages: totalPages,
	}
}
