package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/gradebook-service/internal/auth"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
)

const (
	ctxPrincipal = "principal"
	ctxUserID    = "user_id"
	ctxUsername  = "username"
	ctxUserRoles = "user_roles"
)

// JWTAuthMiddleware authenticates requests with locally issued bearer tokens
type JWTAuthMiddleware struct {
	authorizer *auth.Authorizer
}

func NewJWTAuthMiddleware(authorizer *auth.Authorizer) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{authorizer: authorizer}
}

// AuthMiddleware rejects requests without a valid bearer token and stores the principal
func (m *JWTAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		principal, err := m.authorizer.Authorize(token)
		if err != nil {
			message := "invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				message = "token expired"
			}
			abortUnauthorized(c, message)
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

// RequireRoleMiddleware lets the request through when the principal holds any of requiredRoles
func (m *JWTAuthMiddleware) RequireRoleMiddleware(requiredRoles ...string) gin.HandlerFunc {
	normalized := make([]string, 0, len(requiredRoles))
	for _, r := range requiredRoles {
		normalized = append(normalized, models.NormalizeRole(r))
	}

	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			abortUnauthorized(c, "user not authenticated")
			return
		}

		if !principal.HasAnyRole(normalized...) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error:   errKindForbidden,
				Message: fmt.Sprintf("insufficient permissions, required role: %v", normalized),
			})
			return
		}

		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header missing")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error:   errKindUnauthorized,
		Message: message,
	})
}

func setPrincipal(c *gin.Context, p *auth.Principal) {
	c.Set(ctxPrincipal, p)
	c.Set(ctxUserID, p.UserID)
	c.Set(ctxUsername, p.Username)
	c.Set(ctxUserRoles, p.Roles)
}

// PrincipalFromContext returns the principal stored by AuthMiddleware
func PrincipalFromContext(c *gin.Context) (*auth.Principal, bool) {
	v, exists := c.Get(ctxPrincipal)
	if !exists {
		return nil, false
	}
	p, ok := v.(*auth.Principal)
	return p, ok && p != nil
}
