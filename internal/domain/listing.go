package domain

import (
	"context"
	"time"
)

// Property mirrors the backend property record as listed by admins
type Property struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	City         string    `json:"city"`
	RentPerMonth float64   `json:"rentPerMonth"`
	LandlordID   string    `json:"landlordId"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (p Property) GetID() string { return p.ID }

// ReviewTenant is the author reference embedded in a review
type ReviewTenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReviewProperty is the property reference embedded in a review
type ReviewProperty struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Review mirrors the backend review record
type Review struct {
	ID        string         `json:"id"`
	Rating    int            `json:"rating"`
	Title     string         `json:"title"`
	Comment   string         `json:"comment"`
	CreatedAt time.Time      `json:"createdAt"`
	Tenant    ReviewTenant   `json:"tenant"`
	Property  ReviewProperty `json:"property"`
}

func (r Review) GetID() string { return r.ID }

// Metrics are the admin dashboard totals
type Metrics struct {
	TotalUsers      int     `json:"totalUsers"`
	TotalProperties int     `json:"totalProperties"`
	TotalBookings   int     `json:"totalBookings"`
	TotalReviews    int     `json:"totalReviews"`
	TotalRevenue    float64 `json:"totalRevenue"`
}

// PageMeta is the meta half of the {data, meta} envelope.
// The backend names the total after the entity, so every variant is decoded
// and Total reports whichever one was set.
type PageMeta struct {
	Page            int `json:"page"`
	Limit           int `json:"limit"`
	TotalPages      int `json:"totalPages"`
	TotalUsers      int `json:"totalUsers,omitempty"`
	TotalProperties int `json:"totalProperties,omitempty"`
	TotalBookings   int `json:"totalBookings,omitempty"`
	TotalReviews    int `json:"totalReviews,omitempty"`
}

func (m PageMeta) Total() int {
	switch {
	case m.TotalUsers != 0:
		return m.TotalUsers
	case m.TotalProperties != 0:
		return m.TotalProperties
	case m.TotalBookings != 0:
		return m.TotalBookings
	default:
		return m.TotalReviews
	}
}

// Page is one page of records plus its pagination metadata
type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// Notification level
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient user-facing message (a toast)
type Notification struct {
	Level   Level
	Message string
}

// Notifier surfaces notifications to whoever is watching
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// SessionStore persists the authenticated session between runs
type SessionStore interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// PushEvent is a received realtime event as kept by the journal
type PushEvent struct {
	ID         int64
	Event      string
	BookingID  string
	Payload    []byte
	ReceivedAt time.Time
}

// EventJournal records push events for later review
type EventJournal interface {
	Record(ctx context.Context, ev *PushEvent) error
	Recent(ctx context.Context, limit int) ([]*PushEvent, error)
}
