package client

import (
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what the stored token claims about its holder. It is decoded
// without verifying the signature and only drives what a client displays;
// the server re-checks every request.
type Identity struct {
	Username  string
	Roles     []string
	ExpiresAt time.Time
}

// IsAdmin accepts both the prefixed and the bare role name
func (i *Identity) IsAdmin() bool {
	return slices.ContainsFunc(i.Roles, func(r string) bool {
		r = strings.ToUpper(r)
		return r == "ROLE_ADMIN" || r == "ADMIN"
	})
}

type tokenClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Session is the explicit per-caller context handed to every Client call
type Session struct {
	store TokenStore
	now   func() time.Time
}

func NewSession(store TokenStore) *Session {
	if store == nil {
		store = NewMemoryTokenStore()
	}
	return &Session{store: store, now: time.Now}
}

func (s *Session) Token() (string, bool) {
	if s == nil {
		return "", false
	}
	return s.store.Token()
}

func (s *Session) SetToken(token string) error {
	return s.store.SetToken(token)
}

func (s *Session) Clear() error {
	return s.store.Clear()
}

// Identity decodes the stored token. ok is false without a token or when it
// cannot be parsed.
func (s *Session) Identity() (*Identity, bool) {
	token, ok := s.Token()
	if !ok {
		return nil, false
	}

	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}

	id := &Identity{Username: claims.Subject, Roles: claims.Roles}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, true
}

// IsAuthenticated reports a decodable token that has not expired locally
func (s *Session) IsAuthenticated() bool {
	id, ok := s.Identity()
	if !ok {
		return false
	}
	return id.ExpiresAt.IsZero() || s.now().Before(id.ExpiresAt)
}

func (s *Session) IsAdmin() bool {
	id, ok := s.Identity()
	return ok && id.IsAdmin()
}
