package store

import (
	"sync"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
)

// AuthState is the signed-in user, their token and the shared request flags
type AuthState struct {
	User    *domain.User
	Token   string
	Status  Status
	Loading bool
	Error   string
}

// AuthContainer owns AuthState.
// Requests that drive the session (register, login, profile fetch/save)
// also move Status; the others (password reset, verification, landlord
// application, role change) only touch Loading and Error.
type AuthContainer struct {
	mu     sync.RWMutex
	state  AuthState
	notify func(Change)
}

func newAuthContainer(notify func(Change)) *AuthContainer {
	return &AuthContainer{state: AuthState{Status: StatusIdle}, notify: notify}
}

// Snapshot returns a copy safe to read without locks
func (c *AuthContainer) Snapshot() AuthState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.state
	if out.User != nil {
		u := out.User.Clone()
		out.User = &u
	}
	return out
}

// Token returns the current bearer token, or "" when signed out
func (c *AuthContainer) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Token
}

func (c *AuthContainer) mutate(fn func(s *AuthState)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
	c.notify(ChangeAuth)
}

// Pending marks a request as in flight and clears the previous error
func (c *AuthContainer) Pending(tracksStatus bool) {
	c.mutate(func(s *AuthState) {
		s.Loading = true
		s.Error = ""
		if tracksStatus {
			s.Status = StatusLoading
		}
	})
}

// Fulfilled ends a request that returned no user data
func (c *AuthContainer) Fulfilled(tracksStatus bool) {
	c.mutate(func(s *AuthState) {
		s.Loading = false
		if tracksStatus {
			s.Status = StatusSucceeded
		}
	})
}

// Rejected ends a failed request; user and token are left as they were
func (c *AuthContainer) Rejected(tracksStatus bool, message string) {
	c.mutate(func(s *AuthState) {
		s.Loading = false
		s.Error = message
		if tracksStatus {
			s.Status = StatusFailed
		}
	})
}

// SetAuth installs a user and token, as after login or a session restore
func (c *AuthContainer) SetAuth(user domain.User, token string) {
	u := user.Clone()
	c.mutate(func(s *AuthState) {
		s.User = &u
		s.Token = token
		s.Status = StatusSucceeded
		s.Loading = false
		s.Error = ""
	})
}

// SetUser replaces the profile of the signed-in user, keeping the token
func (c *AuthContainer) SetUser(user domain.User) {
	u := user.Clone()
	c.mutate(func(s *AuthState) {
		s.User = &u
		s.Status = StatusSucceeded
		s.Loading = false
	})
}

// Logout resets the container to its initial state
func (c *AuthContainer) Logout() {
	c.mutate(func(s *AuthState) {
		*s = AuthState{Status: StatusIdle}
	})
}

func (c *AuthContainer) ClearError() {
	c.mutate(func(s *AuthState) {
		s.Error = ""
	})
}
