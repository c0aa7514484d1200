package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
)

// LandlordBookings returns every booking request on the signed-in landlord's properties
func (c *Client) LandlordBookings(ctx context.Context) ([]domain.Booking, error) {
	var out []domain.Booking
	if err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/api/bookings/landlord",
		path:   "/api/bookings/landlord",
	}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Booking{}
	}
	return out, nil
}

// ConfirmBooking accepts a pending booking request
func (c *Client) ConfirmBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return c.decideBooking(ctx, id, "confirm")
}

// RejectBooking declines a pending booking request
func (c *Client) RejectBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return c.decideBooking(ctx, id, "reject")
}

func (c *Client) decideBooking(ctx context.Context, id, decision string) (*domain.Booking, error) {
	var b domain.Booking
	if err := c.do(ctx, request{
		method: http.MethodPut,
		route:  "/api/bookings/:id/" + decision,
		path:   "/api/bookings/" + url.PathEscape(id) + "/" + decision,
	}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
