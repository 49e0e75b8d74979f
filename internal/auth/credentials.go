package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserInactive = errors.New("user is inactive")
	ErrBadPassword  = errors.New("bad password")
)

// UserLookup is the read access the verifier needs
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// CredentialVerifier checks a username and password against the stored bcrypt hash
type CredentialVerifier struct {
	users UserLookup
}

func NewCredentialVerifier(users UserLookup) *CredentialVerifier {
	return &CredentialVerifier{users: users}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// absentUserHash is compared against when the user does not exist so both paths cost one bcrypt run
func absentUserHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("absent-user-placeholder"), bcrypt.DefaultCost)
	})
	return dummyHash
}

// Verify returns the user when the password matches; otherwise ErrUserNotFound, ErrUserInactive or ErrBadPassword
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := v.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(absentUserHash(), []byte(password))
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadPassword
	}

	if !user.Active {
		return nil, ErrUserInactive
	}

	return user, nil
}

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
