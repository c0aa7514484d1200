package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/rentdesk/internal/reliability/circuitbreaker"
)

func newTestClient(t *testing.T, h http.Handler, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{
		BaseURL:    srv.URL,
		Tokens:     TokenFunc(func() string { return token }),
		Logger:     logger.Discard(),
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}

func TestLoginSendsCredentialsAndDecodes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %s", ct)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("expected request id header")
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "ana@example.com" || body["password"] != "pw" {
			t.Errorf("unexpected body %v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-1",
			"user":  map[string]any{"id": "u1", "name": "Ana", "email": "ana@example.com", "role": "LANDLORD"},
		})
	})
	c := newTestClient(t, mux, "")

	res, err := c.Login(context.Background(), "ana@example.com", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token != "tok-1" || res.User.ID != "u1" || res.User.Role != domain.RoleLandlord {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBearerTokenAttached(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer header, got %q", got)
		}
		w.Write([]byte(`{"id":"u1","name":"Ana","email":"a@x.io","role":"TENANT"}`))
	})
	c := newTestClient(t, mux, "secret")
	u, err := c.CurrentUser(context.Background())
	if err != nil || u.ID != "u1" {
		t.Fatalf("unexpected user=%v err=%v", u, err)
	}
}

func TestErrorMessageFromBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/users", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"Admins only"}`))
	})
	c := newTestClient(t, mux, "")

	_, err := c.ListUsers(context.Background(), 1, 10)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsStatus(err, http.StatusForbidden) {
		t.Fatalf("expected 403 api error, got %v", err)
	}
	if msg := Message(err, "Failed to load users"); msg != "Admins only" {
		t.Fatalf("expected body message, got %q", msg)
	}
}

func TestErrorMessageFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	})
	c := newTestClient(t, mux, "")

	_, err := c.Metrics(context.Background())
	if msg := Message(err, "Failed to load metrics"); msg != "Failed to load metrics" {
		t.Fatalf("expected fallback, got %q", msg)
	}
	if msg := Message(errors.New("dial tcp: refused"), "Login failed"); msg != "Login failed" {
		t.Fatalf("expected fallback for transport error, got %q", msg)
	}
}

func TestListUsersPaging(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/users", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("limit") != "5" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"data":[{"id":"u6"},{"id":"u7"}],"meta":{"page":2,"limit":5,"totalUsers":7,"totalPages":2}}`))
	})
	c := newTestClient(t, mux, "")

	page, err := c.ListUsers(context.Background(), 2, 5)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page.Data) != 2 || page.Meta.Total() != 7 || page.Meta.TotalPages != 2 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestDeleteEscapesID(t *testing.T) {
	var gotPath string
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/admin/reviews/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.PathValue("id")
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux, "")
	if err := c.DeleteReview(context.Background(), "r 1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if gotPath != "r 1" {
		t.Fatalf("expected id round trip, got %q", gotPath)
	}
}

func TestSaveProfileMultipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("name") != "Ana Lopez" {
			t.Errorf("unexpected name %q", r.FormValue("name"))
		}
		f, hdr, err := r.FormFile("profilePhoto")
		if err != nil {
			t.Errorf("missing photo: %v", err)
		} else {
			data, _ := io.ReadAll(f)
			if string(data) != "png-bytes" || hdr.Filename != "me.png" {
				t.Errorf("unexpected photo %q %q", hdr.Filename, data)
			}
		}
		w.Write([]byte(`{"id":"u1","name":"Ana Lopez","email":"a@x.io","role":"TENANT"}`))
	})
	c := newTestClient(t, mux, "tok")

	form := ProfileForm("Ana Lopez", "a@x.io", &File{Name: "me.png", Content: strings.NewReader("png-bytes")})
	u, err := c.SaveProfile(context.Background(), form)
	if err != nil || u.Name != "Ana Lopez" {
		t.Fatalf("unexpected user=%v err=%v", u, err)
	}
}

func TestUpdateBookingStatusRejectsUnknownStatus(t *testing.T) {
	c := newTestClient(t, http.NewServeMux(), "")
	if _, err := c.UpdateBookingStatus(context.Background(), "b1", "ARCHIVED"); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/bookings/landlord", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(Config{
		BaseURL:    srv.URL,
		Breaker:    circuitbreaker.New(2, 1, time.Minute),
		Logger:     logger.Discard(),
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := c.LandlordBookings(context.Background()); err == nil {
			t.Fatalf("expected server error")
		}
	}
	if _, err := c.LandlordBookings(context.Background()); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected breaker to stop the third call, got %d calls", calls)
	}
}

func TestConfirmBookingPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/bookings/{id}/confirm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"` + r.PathValue("id") + `","status":"CONFIRMED"}`))
	})
	c := newTestClient(t, mux, "")
	b, err := c.ConfirmBooking(context.Background(), "b9")
	if err != nil || b.ID != "b9" || b.Status != domain.BookingConfirmed {
		t.Fatalf("unexpected booking=%v err=%v", b, err)
	}
}

func TestEndpointRoutes(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		reply   string
		call    func(c *Client) error
	}{
		{
			name:    "register",
			pattern: "POST /api/auth/register",
			call:    func(c *Client) error { return c.Register(context.Background(), "Ana", "a@b.c", "pw") },
		},
		{
			name:    "forgot password",
			pattern: "POST /api/auth/forgot-password",
			call:    func(c *Client) error { return c.ForgotPassword(context.Background(), "a@b.c") },
		},
		{
			name:    "reset password",
			pattern: "POST /api/auth/reset-password",
			call:    func(c *Client) error { return c.ResetPassword(context.Background(), "rt", "new") },
		},
		{
			name:    "verify email",
			pattern: "GET /api/auth/verify",
			call:    func(c *Client) error { return c.VerifyEmail(context.Background(), "vt") },
		},
		{
			name:    "apply for landlord",
			pattern: "POST /api/auth/apply-landlord",
			call: func(c *Client) error {
				return c.ApplyForLandlord(context.Background(), Form{Fields: map[string]string{"reason": "flats"}})
			},
		},
		{
			name:    "current user",
			pattern: "GET /api/users/me",
			reply:   `{"id":"u1"}`,
			call: func(c *Client) error {
				_, err := c.CurrentUser(context.Background())
				return err
			},
		},
		{
			name:    "change role",
			pattern: "PUT /api/users/{id}/role",
			reply:   `{"token":"t2","user":{"id":"u1","role":"LANDLORD"}}`,
			call: func(c *Client) error {
				_, err := c.ChangeUserRole(context.Background(), "u1", domain.RoleLandlord)
				return err
			},
		},
		{
			name:    "admin booking status",
			pattern: "PUT /api/admin/bookings/{id}/status",
			reply:   `{"id":"b1","status":"CANCELLED"}`,
			call: func(c *Client) error {
				_, err := c.UpdateBookingStatus(context.Background(), "b1", domain.BookingCancelled)
				return err
			},
		},
		{
			name:    "metrics",
			pattern: "GET /api/admin/metrics",
			reply:   `{"totalUsers":3}`,
			call: func(c *Client) error {
				_, err := c.Metrics(context.Background())
				return err
			},
		},
		{
			name:    "landlord bookings",
			pattern: "GET /api/bookings/landlord",
			reply:   `[]`,
			call: func(c *Client) error {
				_, err := c.LandlordBookings(context.Background())
				return err
			},
		},
		{
			name:    "reject booking",
			pattern: "PUT /api/bookings/{id}/reject",
			reply:   `{"id":"b1","status":"REJECTED"}`,
			call: func(c *Client) error {
				_, err := c.RejectBooking(context.Background(), "b1")
				return err
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hit := false
			mux := http.NewServeMux()
			mux.HandleFunc(tc.pattern, func(w http.ResponseWriter, r *http.Request) {
				hit = true
				if tc.reply != "" {
					w.Write([]byte(tc.reply))
				}
			})
			c := newTestClient(t, mux, "tok")
			if err := tc.call(c); err != nil {
				t.Fatalf("call failed: %v", err)
			}
			if !hit {
				t.Fatalf("%s was not requested", tc.pattern)
			}
		})
	}
}
