package domain

import (
	"testing"
	"time"
)

func sampleBooking() Booking {
	paid := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return Booking{
		ID:       "b1",
		Status:   BookingConfirmed,
		Tenant:   BookingTenant{ID: "t1", Name: "Tom", Email: "tom@example.com"},
		Property: BookingProperty{ID: "p1", Title: "Loft", City: "Lisbon", RentPerMonth: 1200},
		Payment: &Payment{
			Status:        PaymentPending,
			Amount:        1200,
			Currency:      "EUR",
			TransactionID: "tx-1",
			PaidAt:        &paid,
		},
	}
}

func TestApplyPaymentStatusKeepsKnownFields(t *testing.T) {
	b := sampleBooking()
	out := b.Apply(PaymentStatusPatch(PaymentSuccess))

	if out.Payment.Status != PaymentSuccess {
		t.Fatalf("expected SUCCESS, got %s", out.Payment.Status)
	}
	if out.Payment.Amount != 1200 || out.Payment.Currency != "EUR" || out.Payment.TransactionID != "tx-1" {
		t.Fatalf("patch erased payment fields: %+v", out.Payment)
	}
	if out.Status != BookingConfirmed || out.Property.Title != "Loft" {
		t.Fatalf("patch touched unrelated fields: %+v", out)
	}
	if b.Payment.Status != PaymentPending {
		t.Fatalf("apply must not mutate the receiver")
	}
}

func TestApplyCreatesPaymentWhenMissing(t *testing.T) {
	b := Booking{ID: "b2", Status: BookingPending}
	out := b.Apply(PaymentStatusPatch(PaymentFailed))
	if out.Payment == nil || out.Payment.Status != PaymentFailed {
		t.Fatalf("expected payment to be created, got %+v", out.Payment)
	}
	if b.Payment != nil {
		t.Fatalf("receiver must stay untouched")
	}
}

func TestStatusPatch(t *testing.T) {
	out := sampleBooking().Apply(StatusPatch(BookingCancelled))
	if out.Status != BookingCancelled || out.Payment.Status != PaymentPending {
		t.Fatalf("unexpected result %+v", out)
	}
}

func TestEmptyPatch(t *testing.T) {
	if !(BookingPatch{}).Empty() {
		t.Fatalf("zero patch should be empty")
	}
	if !(BookingPatch{Payment: &PaymentPatch{}}).Empty() {
		t.Fatalf("patch with empty payment should be empty")
	}
	if StatusPatch(BookingPending).Empty() {
		t.Fatalf("status patch should not be empty")
	}
}

func TestMergeKeepsFieldsMissingFromPush(t *testing.T) {
	cached := sampleBooking()
	pushed := Booking{ID: "b1", Status: BookingCancelled}

	out := cached.Merge(pushed)
	if out.Status != BookingCancelled {
		t.Fatalf("expected status from push, got %s", out.Status)
	}
	if out.Tenant.Name != "Tom" || out.Property.City != "Lisbon" || out.Payment.Amount != 1200 {
		t.Fatalf("merge erased cached fields: %+v", out)
	}
}

func TestMergeOverlaysPaymentFields(t *testing.T) {
	cached := sampleBooking()
	pushed := Booking{ID: "b1", Payment: &Payment{Status: PaymentSuccess}}

	out := cached.Merge(pushed)
	if out.Payment.Status != PaymentSuccess || out.Payment.Currency != "EUR" {
		t.Fatalf("unexpected payment %+v", out.Payment)
	}
}

func TestRoleAndStatusValid(t *testing.T) {
	if !RoleAdmin.Valid() || Role("OWNER").Valid() {
		t.Fatalf("role validation wrong")
	}
	if !BookingRejected.Valid() || BookingStatus("DONE").Valid() {
		t.Fatalf("booking status validation wrong")
	}
	if !PaymentSuccess.Valid() || PaymentStatus("REFUNDED").Valid() {
		t.Fatalf("payment status validation wrong")
	}
}

func TestPageMetaTotal(t *testing.T) {
	if (PageMeta{TotalReviews: 4}).Total() != 4 {
		t.Fatalf("expected reviews total")
	}
	if (PageMeta{TotalUsers: 9}).Total() != 9 {
		t.Fatalf("expected users total")
	}
}
