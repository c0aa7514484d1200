package store

import "github.com/aryan0dhankhar/rentdesk/internal/domain"

// DefaultPageLimit is the admin list page size before the first fetch
const DefaultPageLimit = 10

// Identifiable is any cached entity keyed by id
type Identifiable interface {
	GetID() string
}

// PagedList is one server-paginated list with its metadata
type PagedList[T Identifiable] struct {
	Items      []T
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

func newPagedList[T Identifiable](limit int) PagedList[T] {
	return PagedList[T]{
		Items:      []T{},
		Page:       1,
		Limit:      limit,
		Total:      0,
		TotalPages: 1,
	}
}

// replace installs a fetched page; items and every metadata field change together
func (l *PagedList[T]) replace(p *domain.Page[T]) {
	items := make([]T, len(p.Data))
	copy(items, p.Data)
	l.Items = items
	l.Page = p.Meta.Page
	l.Limit = p.Meta.Limit
	l.Total = p.Meta.Total()
	l.TotalPages = p.Meta.TotalPages
}

// remove drops the first item with id, decrements the total (never below
// zero), recomputes the page count and clamps the current page into it.
// The total is decremented even when the id is not on the cached page,
// since the server has already deleted it.
func (l *PagedList[T]) remove(id string) bool {
	found := false
	for i, it := range l.Items {
		if it.GetID() == id {
			l.Items = append(l.Items[:i:i], l.Items[i+1:]...)
			found = true
			break
		}
	}

	l.Total--
	if l.Total < 0 {
		l.Total = 0
	}
	l.TotalPages = pageCount(l.Total, l.Limit)
	if l.Page > l.TotalPages {
		l.Page = l.TotalPages
	}
	if l.Page < 1 {
		l.Page = 1
	}
	return found
}

// update replaces the cached item with the same id; absent ids are ignored
func (l *PagedList[T]) update(item T) bool {
	for i, it := range l.Items {
		if it.GetID() == item.GetID() {
			items := make([]T, len(l.Items))
			copy(items, l.Items)
			items[i] = item
			l.Items = items
			return true
		}
	}
	return false
}

func (l PagedList[T]) clone(cloneItem func(T) T) PagedList[T] {
	items := make([]T, len(l.Items))
	for i, it := range l.Items {
		if cloneItem != nil {
			it = cloneItem(it)
		}
		items[i] = it
	}
	l.Items = items
	return l
}

func pageCount(total, limit int) int {
	if limit <= 0 {
		return 1
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		return 1
	}
	return pages
}
