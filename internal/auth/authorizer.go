package auth

import (
	"errors"
	"fmt"
	"slices"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Principal is the identity and role set of a verified token
type Principal struct {
	UserID   string
	Username string
	Roles    []string
}

func (p *Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, models.NormalizeRole(role))
}

func (p *Principal) IsAdmin() bool {
	return p.HasRole(models.RoleAdmin)
}

// HasAnyRole reports whether the principal holds one of roles; an empty list matches any principal
func (p *Principal) HasAnyRole(roles ...string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

// CanAccessOwnedBy reports whether the principal may act on a resource owned by ownerID
func (p *Principal) CanAccessOwnedBy(ownerID string) bool {
	return p.IsAdmin() || (ownerID != "" && p.UserID == ownerID)
}

// Authorizer turns a raw token into an allow or deny decision
type Authorizer struct {
	codec *TokenCodec
}

func NewAuthorizer(codec *TokenCodec) *Authorizer {
	return &Authorizer{codec: codec}
}

// Authorize decodes token and checks it against requiredRoles.
// It fails with ErrUnauthenticated for missing, invalid or expired tokens and ErrForbidden when no role matches.
func (a *Authorizer) Authorize(token string, requiredRoles ...string) (*Principal, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthenticated)
	}

	claims, err := a.codec.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	principal := &Principal{
		UserID:   claims.UserID,
		Username: claims.Subject,
		Roles:    models.NormalizeRoles(claims.Roles),
	}

	if !principal.HasAnyRole(requiredRoles...) {
		return principal, fmt.Errorf("%w: requires one of %v", ErrForbidden, requiredRoles)
	}

	return principal, nil
}
