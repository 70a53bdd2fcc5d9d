// Package session keeps authenticated users' state on the server. A session is
// created at login, looked up on every dashboard request through a signed
// cookie, and destroyed at logout or when it expires.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no live session matches: the id is unknown,
// the session has expired, or the cookie carrying it is missing or forged.
var ErrNotFound = errors.New("session not found")

// Session is the server-held state of one logged-in user. The display
// attributes are cached at login so the dashboard never touches the datastore.
type Session struct {
	ID         string
	UserID     int64
	Name       string
	Balance    float64
	CardNumber string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// HasProfile reports whether the display attributes were populated.
func (s *Session) HasProfile() bool {
	return s.Name != ""
}

// Attributes is what the login flow hands over when a session starts.
type Attributes struct {
	UserID     int64
	Name       string
	Balance    float64
	CardNumber string
}

// Store persists sessions. Get must not return expired sessions.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes every session that expired at or before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
