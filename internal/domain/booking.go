package domain

import "time"

// BookingStatus is the lifecycle state of a booking request
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingRejected  BookingStatus = "REJECTED"
	BookingCancelled BookingStatus = "CANCELLED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingRejected, BookingCancelled:
		return true
	}
	return false
}

// PaymentStatus is the state of the payment attached to a booking
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentSuccess, PaymentFailed:
		return true
	}
	return false
}

// Payment is the payment sub-record of a booking
type Payment struct {
	Status        PaymentStatus `json:"status"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	PaidAt        *time.Time    `json:"paidAt"`
}

// BookingTenant is the tenant reference embedded in a booking
type BookingTenant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BookingProperty is the property reference embedded in a booking
type BookingProperty struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	City         string  `json:"city"`
	RentPerMonth float64 `json:"rentPerMonth"`
}

// Booking mirrors the backend booking record
type Booking struct {
	ID        string          `json:"id"`
	Status    BookingStatus   `json:"status"`
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
	CreatedAt time.Time       `json:"createdAt"`
	Tenant    BookingTenant   `json:"tenant"`
	Property  BookingProperty `json:"property"`
	Payment   *Payment        `json:"payment"`
}

func (b Booking) GetID() string { return b.ID }

// Clone returns a copy that shares no pointers with b
func (b Booking) Clone() Booking {
	if b.Payment != nil {
		p := *b.Payment
		if p.PaidAt != nil {
			t := *p.PaidAt
			p.PaidAt = &t
		}
		b.Payment = &p
	}
	return b
}

// PaymentPatch carries only the payment fields a push event actually knows.
// Nil fields are left untouched when applied.
type PaymentPatch struct {
	Status        *PaymentStatus
	Amount        *float64
	Currency      *string
	TransactionID *string
	PaidAt        *time.Time
}

// BookingPatch is a partial update for a cached booking
type BookingPatch struct {
	Status  *BookingStatus
	Payment *PaymentPatch
}

// PaymentStatusPatch builds the patch delivered by a paymentStatusUpdated push
func PaymentStatusPatch(status PaymentStatus) BookingPatch {
	return BookingPatch{Payment: &PaymentPatch{Status: &status}}
}

// StatusPatch builds a patch that only changes the booking status
func StatusPatch(status BookingStatus) BookingPatch {
	return BookingPatch{Status: &status}
}

// Empty reports whether the patch would change nothing
func (p BookingPatch) Empty() bool {
	if p.Status != nil {
		return false
	}
	if p.Payment == nil {
		return true
	}
	pp := p.Payment
	return pp.Status == nil && pp.Amount == nil && pp.Currency == nil && pp.TransactionID == nil && pp.PaidAt == nil
}

// Apply returns b with the fields present in p overwritten.
// A booking without a payment gets one created for the patched fields.
func (b Booking) Apply(p BookingPatch) Booking {
	out := b.Clone()
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Payment != nil {
		if out.Payment == nil {
			out.Payment = &Payment{}
		}
		pp := p.Payment
		if pp.Status != nil {
			out.Payment.Status = *pp.Status
		}
		if pp.Amount != nil {
			out.Payment.Amount = *pp.Amount
		}
		if pp.Currency != nil {
			out.Payment.Currency = *pp.Currency
		}
		if pp.TransactionID != nil {
			out.Payment.TransactionID = *pp.TransactionID
		}
		if pp.PaidAt != nil {
			t := *pp.PaidAt
			out.Payment.PaidAt = &t
		}
	}
	return out
}

// Merge overlays a pushed booking onto the cached one. Fields the push left
// empty keep their cached values, so a sparse payload never erases data.
func (b Booking) Merge(incoming Booking) Booking {
	out := b.Clone()
	in := incoming.Clone()
	if in.Status != "" {
		out.Status = in.Status
	}
	if !in.StartDate.IsZero() {
		out.StartDate = in.StartDate
	}
	if !in.EndDate.IsZero() {
		out.EndDate = in.EndDate
	}
	if !in.CreatedAt.IsZero() {
		out.CreatedAt = in.CreatedAt
	}
	if in.Tenant.ID != "" {
		out.Tenant = in.Tenant
	}
	if in.Property.ID != "" {
		out.Property = in.Property
	}
	if in.Payment != nil {
		patch := PaymentPatch{PaidAt: in.Payment.PaidAt}
		if in.Payment.Status != "" {
			patch.Status = &in.Payment.Status
		}
		if in.Payment.Amount != 0 {
			patch.Amount = &in.Payment.Amount
		}
		if in.Payment.Currency != "" {
			patch.Currency = &in.Payment.Currency
		}
		if in.Payment.TransactionID != "" {
			patch.TransactionID = &in.Payment.TransactionID
		}
		out = out.Apply(BookingPatch{Payment: &patch})
	}
	return out
}
