package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
)

// AuthResult is returned by login and by role changes, which reissue the token
type AuthResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// Register creates an account. The backend sends a verification mail; no session is returned.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	req, err := jsonRequest(http.MethodPost, "/api/auth/register", "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

// Login exchanges credentials for a user record and token
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	req, err := jsonRequest(http.MethodPost, "/api/auth/login", "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var out AuthResult
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword asks the backend to mail a reset link
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	req, err := jsonRequest(http.MethodPost, "/api/auth/forgot-password", "/api/auth/forgot-password", map[string]string{
		"email": email,
	})
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

// ResetPassword sets a new password using the mailed reset token
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	req, err := jsonRequest(http.MethodPost, "/api/auth/reset-password", "/api/auth/reset-password", map[string]string{
		"token":       token,
		"newPassword": newPassword,
	})
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

// VerifyEmail confirms an address with the mailed verification token
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	q := url.Values{}
	q.Set("token", token)
	return c.do(ctx, request{
		method: http.MethodGet,
		route:  "/api/auth/verify",
		path:   "/api/auth/verify",
		query:  q,
	}, nil)
}

// ApplyForLandlord uploads a landlord application with its documents
func (c *Client) ApplyForLandlord(ctx context.Context, form Form) error {
	req, err := formRequest(http.MethodPost, "/api/auth/apply-landlord", "/api/auth/apply-landlord", form)
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}
