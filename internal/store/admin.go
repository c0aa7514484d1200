package store

import (
	"sync"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
)

// AdminState backs the admin dashboard
type AdminState struct {
	Users      PagedList[domain.User]
	Properties PagedList[domain.Property]
	Bookings   PagedList[domain.Booking]
	Reviews    PagedList[domain.Review]
	Metrics    *domain.Metrics
	Loading    bool
	Error      string
}

// AdminContainer owns AdminState
type AdminContainer struct {
	mu     sync.RWMutex
	state  AdminState
	notify func(Change)
}

func newAdminContainer(limit int, notify func(Change)) *AdminContainer {
	return &AdminContainer{
		state: AdminState{
			Users:      newPagedList[domain.User](limit),
			Properties: newPagedList[domain.Property](limit),
			Bookings:   newPagedList[domain.Booking](limit),
			Reviews:    newPagedList[domain.Review](limit),
		},
		notify: notify,
	}
}

// Snapshot returns a copy safe to read without locks
func (c *AdminContainer) Snapshot() AdminState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.state
	out.Users = c.state.Users.clone(domain.User.Clone)
	out.Properties = c.state.Properties.clone(nil)
	out.Bookings = c.state.Bookings.clone(domain.Booking.Clone)
	out.Reviews = c.state.Reviews.clone(nil)
	if c.state.Metrics != nil {
		m := *c.state.Metrics
		out.Metrics = &m
	}
	return out
}

func (c *AdminContainer) mutate(fn func(s *AdminState)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
	c.notify(ChangeAdmin)
}

// Pending marks a request as in flight and clears the previous error
func (c *AdminContainer) Pending() {
	c.mutate(func(s *AdminState) {
		s.Loading = true
		s.Error = ""
	})
}

// Rejected ends a failed request without touching any cached data
func (c *AdminContainer) Rejected(message string) {
	c.mutate(func(s *AdminState) {
		s.Loading = false
		s.Error = message
	})
}

func (c *AdminContainer) ClearError() {
	c.mutate(func(s *AdminState) {
		s.Error = ""
	})
}

func (c *AdminContainer) ReplaceUsers(p *domain.Page[domain.User]) {
	c.mutate(func(s *AdminState) {
		s.Loading = false
		s.Users.replace(p)
	})
}

func (c *AdminContainer) ReplaceProperties(p *domain.Page[domain.Property]) {
	c.mutate(func(s *AdminState) {
		s.Loading = false
		s.Properties.replace(p)
	})
}

func (c *AdminContainer) ReplaceBookings(p *domain.Page[domain.Booking]) {
	c.mutate(func(s *AdminState) {
		s.Loading = false
		s.Bookings.replace(p)
	})
}

func (c *AdminContainer) ReplaceReviews(p *domain.Page[domain.Review]) {
	c.mutate(func(s *AdminState) {
		s.Loading = false
		s.Reviews.replace(p)
	})
}

func (c *AdminContainer) RemoveUser(id string) {
	c.mutate(func(s *AdminState) {
		s.Loading = false
		s.Users.remove(id)
	})
}

func (c *AdminContainer) RemoveProperty(id string) {
	c.mutate(func(s *AdminState) {
		s.Loading = false
		s.Properties.remove(id)
	})
}

func (c *AdminContainer) RemoveReview(id string) {
	c.mutate(func(s *AdminState) {
		s.Loading = false
		s.Reviews.remove(id)
	})
}

// UpdateUser replaces the listed user with the same id, as after a role change
func (c *AdminContainer) UpdateUser(u domain.User) {
	u = u.Clone()
	c.mutate(func(s *AdminState) {
		s.Loading = false
		s.Users.update(u)
	})
}

// UpdateBooking replaces the listed booking with the same id
func (c *AdminContainer) UpdateBooking(b domain.Booking) {
	b = b.Clone()
	c.mutate(func(s *AdminState) {
		s.Loading = false
		s.Bookings.update(b)
	})
}

func (c *AdminContainer) SetMetrics(m domain.Metrics) {
	c.mutate(func(s *AdminState) {
		s.Loading = false
		s.Metrics = &m
	})
}
