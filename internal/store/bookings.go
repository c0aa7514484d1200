package store

import (
	"sync"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
)

// BookingsState is the signed-in landlord's booking requests
type BookingsState struct {
	Items   []domain.Booking
	Loading bool
	Error   string
}

// BookingsContainer owns BookingsState. It is written both by request
// actions and by realtime pushes.
type BookingsContainer struct {
	mu     sync.RWMutex
	state  BookingsState
	notify func(Change)
}

func newBookingsContainer(notify func(Change)) *BookingsContainer {
	return &BookingsContainer{state: BookingsState{Items: []domain.Booking{}}, notify: notify}
}

// Snapshot returns a copy safe to read without locks
func (c *BookingsContainer) Snapshot() BookingsState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.state
	out.Items = cloneBookings(c.state.Items)
	return out
}

// Get returns a copy of the cached booking with id
func (c *BookingsContainer) Get(id string) (domain.Booking, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := indexOf(c.state.Items, id); i >= 0 {
		return c.state.Items[i].Clone(), true
	}
	return domain.Booking{}, false
}

func (c *BookingsContainer) mutate(fn func(s *BookingsState) bool) bool {
	c.mu.Lock()
	changed := fn(&c.state)
	c.mu.Unlock()
	if changed {
		c.notify(ChangeBookings)
	}
	return changed
}

func (c *BookingsContainer) Pending() {
	c.mutate(func(s *BookingsState) bool {
		s.Loading = true
		s.Error = ""
		return true
	})
}

// Rejected ends a failed request without touching the cached items
func (c *BookingsContainer) Rejected(message string) {
	c.mutate(func(s *BookingsState) bool {
		s.Loading = false
		s.Error = message
		return true
	})
}

// ReplaceAll installs a freshly fetched list
func (c *BookingsContainer) ReplaceAll(items []domain.Booking) {
	fresh := cloneBookings(items)
	c.mutate(func(s *BookingsState) bool {
		s.Items = fresh
		s.Loading = false
		return true
	})
}

// Replace swaps in the authoritative record returned by the API.
// Unknown ids are ignored.
func (c *BookingsContainer) Replace(b domain.Booking) bool {
	b = b.Clone()
	return c.mutate(func(s *BookingsState) bool {
		s.Loading = false
		i := indexOf(s.Items, b.ID)
		if i < 0 {
			return true
		}
		s.Items = withItem(s.Items, i, b)
		return true
	})
}

// UpsertBooking merges a pushed booking into the cached one with the same id,
// keeping fields the push omitted, or prepends it when the id is new.
// It reports whether the booking was inserted.
func (c *BookingsContainer) UpsertBooking(b domain.Booking) (inserted bool) {
	if b.ID == "" {
		return false
	}
	b = b.Clone()
	c.mutate(func(s *BookingsState) bool {
		if i := indexOf(s.Items, b.ID); i >= 0 {
			s.Items = withItem(s.Items, i, s.Items[i].Merge(b))
			return true
		}
		items := make([]domain.Booking, 0, len(s.Items)+1)
		items = append(items, b)
		items = append(items, s.Items...)
		s.Items = items
		inserted = true
		return true
	})
	return inserted
}

// ApplyBookingPatch applies a partial update to the cached booking with id.
// It returns the booking as it was before the patch; ok is false when the
// id is not cached or the patch is empty.
func (c *BookingsContainer) ApplyBookingPatch(id string, p domain.BookingPatch) (before domain.Booking, ok bool) {
	if p.Empty() {
		return domain.Booking{}, false
	}
	c.mutate(func(s *BookingsState) bool {
		i := indexOf(s.Items, id)
		if i < 0 {
			return false
		}
		before = s.Items[i].Clone()
		s.Items = withItem(s.Items, i, s.Items[i].Apply(p))
		ok = true
		return true
	})
	return before, ok
}

// SetStatus optimistically moves a cached booking to status and returns the
// status it had before.
func (c *BookingsContainer) SetStatus(id string, status domain.BookingStatus) (domain.BookingStatus, bool) {
	before, ok := c.ApplyBookingPatch(id, domain.StatusPatch(status))
	return before.Status, ok
}

// Count returns the number of cached bookings
func (c *BookingsContainer) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.state.Items)
}

func indexOf(items []domain.Booking, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// withItem copies items with position i replaced so published snapshots stay immutable
func withItem(items []domain.Booking, i int, b domain.Booking) []domain.Booking {
	out := make([]domain.Booking, len(items))
	copy(out, items)
	out[i] = b
	return out
}

func cloneBookings(items []domain.Booking) []domain.Booking {
	out := make([]domain.Booking, len(items))
	for i, b := range items {
		out[i] = b.Clone()
	}
	return out
}
