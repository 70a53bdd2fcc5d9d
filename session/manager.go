package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	// `jwt` signs the cookie so a forged or tampered session id is rejected before any store lookup.
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/user/banconova-go/config"
)

// cookieClaims is the payload of the session cookie.
type cookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager ties a Store to the HTTP cookie that carries the session id.
type Manager struct {
	store      Store
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

// NewManager creates a Manager from cfg. A nil clock defaults to time.Now.
func NewManager(store Store, cfg *config.SessionConfig, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store:      store,
		secret:     []byte(cfg.Secret),
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
		secure:     cfg.CookieSecure,
		now:        now,
	}
}

// Store exposes the underlying store, e.g. for the sweeper.
func (m *Manager) Store() Store {
	return m.store
}

// Start creates a session for attrs and writes its cookie. Any session referenced
// by a cookie already on the request is destroyed first so a pre-login id can
// never be promoted to an authenticated one.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, r *http.Request, attrs Attributes) (*Session, error) {
	if id, err := m.sessionID(r); err == nil {
		if err := m.store.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("destroy previous session: %w", err)
		}
	}

	now := m.now()
	s := &Session{
		ID:         uuid.NewString(),
		UserID:     attrs.UserID,
		Name:       attrs.Name,
		Balance:    attrs.Balance,
		CardNumber: attrs.CardNumber,
		CreatedAt:  now,
		ExpiresAt:  now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, err
	}

	token, err := m.sign(s)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, m.cookie(token, s.ExpiresAt))
	return s, nil
}

// Load returns the live session referenced by the request cookie, or an error
// wrapping ErrNotFound when there is none.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	id, err := m.sessionID(r)
	if err != nil {
		return nil, err
	}
	return m.store.Get(ctx, id)
}

// Destroy deletes the session referenced by the request (if any) and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if id, err := m.sessionID(r); err == nil {
		if err := m.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("destroy session: %w", err)
		}
	}
	c := m.cookie("", time.Unix(0, 0))
	c.MaxAge = -1
	http.SetCookie(w, c)
	return nil
}

func (m *Manager) sign(s *Session) (string, error) {
	claims := &cookieClaims{
		SessionID: s.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return token, nil
}

// sessionID extracts and verifies the session id carried by the request cookie.
func (m *Manager) sessionID(r *http.Request) (string, error) {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return "", ErrNotFound
	}

	claims := &cookieClaims{}
	_, err = jwt.ParseWithClaims(c.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if claims.SessionID == "" {
		return "", fmt.Errorf("%w: cookie carries no session id", ErrNotFound)
	}
	return claims.SessionID, nil
}

func (m *Manager) cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
