package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"

	rolePrefix = "ROLE_"
)

// KnownRoles is the fixed set of roles a user may hold
var KnownRoles = []string{RoleUser, RoleAdmin}

// NormalizeRole upper-cases a role name and adds the ROLE_ prefix when missing
func NormalizeRole(role string) string {
	r := strings.ToUpper(strings.TrimSpace(role))
	if r == "" {
		return ""
	}
	if !strings.HasPrefix(r, rolePrefix) {
		r = rolePrefix + r
	}
	return r
}

// IsKnownRole reports whether role (after normalisation) is one of KnownRoles
func IsKnownRole(role string) bool {
	return slices.Contains(KnownRoles, NormalizeRole(role))
}

// NormalizeRoles normalises, de-duplicates and sorts a role list
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		n := NormalizeRole(r)
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

type User struct {
	ID           string                      `json:"id" gorm:"primaryKey;type:uuid"`
	Username     string                      `json:"username" gorm:"uniqueIndex;not null;size:50"`
	PasswordHash string                      `json:"-" gorm:"column:password_hash;not null"`
	FirstName    *string                     `json:"firstName,omitempty" gorm:"size:100"`
	LastName     *string                     `json:"lastName,omitempty" gorm:"size:100"`
	Email        *string                     `json:"email,omitempty" gorm:"size:255"`
	DateOfBirth  *Date                       `json:"dateOfBirth,omitempty" gorm:"type:date"`
	Active       bool                        `json:"active" gorm:"not null"`
	Roles        datatypes.JSONSlice[string] `json:"roles" gorm:"type:jsonb;not null"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, NormalizeRole(role))
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// Summary returns the restricted projection used for selection lists
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Active:    u.Active,
	}
}

// UserSummary is the subset of a user visible to any authenticated caller
type UserSummary struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Active    bool    `json:"active"`
}
