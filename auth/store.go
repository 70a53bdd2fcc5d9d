package auth

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound is returned when no user matches a lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when an insert hits the username or email unique constraint.
	ErrDuplicateUser = errors.New("username or email already registered")
)

// UserStore is the datastore the auth flows depend on. Every query is parameterized.
type UserStore interface {
	// ExistsByUsernameOrEmail reports whether any user has the username or the email.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// Create inserts the user and its account in one transaction and returns the new user id.
	Create(ctx context.Context, user *User, account *Account) (int64, error)
	// FindCredentials returns the id and password hash for username, or ErrUserNotFound.
	FindCredentials(ctx context.Context, username string) (*Credentials, error)
	// LoadProfile returns the display attributes for userID, or ErrUserNotFound.
	LoadProfile(ctx context.Context, userID int64) (*Profile, error)
}

func fullName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
