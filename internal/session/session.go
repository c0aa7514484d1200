// Package session persists the signed-in user's token and profile between
// runs, the way a browser client keeps them in local storage.
package session

import (
	"errors"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
)

// ErrNoSession is returned by Load when nothing is stored
var ErrNoSession = errors.New("no stored session")

// FileName is the session file inside the session directory
const FileName = "session.json"

var (
	_ domain.SessionStore = (*FileStore)(nil)
	_ domain.SessionStore = (*RedisStore)(nil)
)
