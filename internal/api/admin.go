package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
)

func listPage[T any](ctx context.Context, c *Client, resource string, page, limit int) (*domain.Page[T], error) {
	route := "/api/admin/" + resource
	var out domain.Page[T]
	if err := c.do(ctx, request{
		method: http.MethodGet,
		route:  route,
		path:   route,
		query:  pageQuery(page, limit),
	}, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []T{}
	}
	return &out, nil
}

func (c *Client) deleteAdmin(ctx context.Context, resource, id string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		route:  "/api/admin/" + resource + "/:id",
		path:   "/api/admin/" + resource + "/" + url.PathEscape(id),
	}, nil)
}

// ListUsers returns one page of users
func (c *Client) ListUsers(ctx context.Context, page, limit int) (*domain.Page[domain.User], error) {
	return listPage[domain.User](ctx, c, "users", page, limit)
}

// ListProperties returns one page of properties
func (c *Client) ListProperties(ctx context.Context, page, limit int) (*domain.Page[domain.Property], error) {
	return listPage[domain.Property](ctx, c, "properties", page, limit)
}

// ListBookings returns one page of bookings across all landlords
func (c *Client) ListBookings(ctx context.Context, page, limit int) (*domain.Page[domain.Booking], error) {
	return listPage[domain.Booking](ctx, c, "bookings", page, limit)
}

// ListReviews returns one page of reviews
func (c *Client) ListReviews(ctx context.Context, page, limit int) (*domain.Page[domain.Review], error) {
	return listPage[domain.Review](ctx, c, "reviews", page, limit)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.deleteAdmin(ctx, "users", id)
}

func (c *Client) DeleteProperty(ctx context.Context, id string) error {
	return c.deleteAdmin(ctx, "properties", id)
}

func (c *Client) DeleteReview(ctx context.Context, id string) error {
	return c.deleteAdmin(ctx, "reviews", id)
}

// UpdateBookingStatus overrides a booking's status as an admin
func (c *Client) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid booking status %q", status)
	}
	req, err := jsonRequest(http.MethodPut, "/api/admin/bookings/:id/status",
		"/api/admin/bookings/"+url.PathEscape(id)+"/status",
		map[string]domain.BookingStatus{"status": status})
	if err != nil {
		return nil, err
	}
	var b domain.Booking
	if err := c.do(ctx, req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Metrics returns the dashboard totals
func (c *Client) Metrics(ctx context.Context) (*domain.Metrics, error) {
	var m domain.Metrics
	if err := c.do(ctx, request{method: http.MethodGet, route: "/api/admin/metrics", path: "/api/admin/metrics"}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
