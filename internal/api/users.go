package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
)

// CurrentUser fetches the signed-in user's profile
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, request{method: http.MethodGet, route: "/api/users/me", path: "/api/users/me"}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveProfile updates name, email and optional photo of the signed-in user
func (c *Client) SaveProfile(ctx context.Context, form Form) (*domain.User, error) {
	req, err := formRequest(http.MethodPut, "/api/users/me", "/api/users/me", form)
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := c.do(ctx, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ChangeUserRole sets a user's role. The backend answers with the updated
// user and a token reissued for that user.
func (c *Client) ChangeUserRole(ctx context.Context, userID string, role domain.Role) (*AuthResult, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	req, err := jsonRequest(http.MethodPut, "/api/users/:id/role", "/api/users/"+url.PathEscape(userID)+"/role", map[string]domain.Role{
		"role": role,
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
