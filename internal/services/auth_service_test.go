package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/gradebook-service/internal/events"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
)

func TestAuthService_RegisterThenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.auth.Register(ctx, &models.RegisterRequest{
		Username:    "alice",
		Password:    testPassword,
		Email:       ptr("alice@example.com"),
		DateOfBirth: ptr("2004-05-17"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", registered.TokenType)
	assert.Equal(t, "alice", registered.Username)
	assert.Equal(t, []string{models.RoleUser}, registered.Roles)
	assert.EqualValues(t, 3600, registered.ExpiresIn)

	claims, err := f.codec.Decode(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, []string{models.RoleUser}, claims.Roles)

	stored, err := f.repo.User().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, stored.Active)
	require.NotNil(t, stored.DateOfBirth)
	assert.Equal(t, "2004-05-17", stored.DateOfBirth.String())
	assert.NotEqual(t, testPassword, stored.PasswordHash)

	assert.Equal(t, []string{events.UserRegistered}, f.publisher.EventTypes())

	loggedIn, err := f.auth.Login(ctx, &models.LoginRequest{Username: "alice", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleUser}, loggedIn.Roles)
	assert.NotEmpty(t, loggedIn.Token)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	f := newFixture(t)
	f.user(t, "alice")

	_, err := f.auth.Register(context.Background(), &models.RegisterRequest{Username: "alice", Password: testPassword})
	assert.True(t, IsConflict(err))
}

func TestAuthService_RegisterValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  models.RegisterRequest
	}{
		{name: "short password", req: models.RegisterRequest{Username: "alice", Password: "short"}},
		{name: "bad username", req: models.RegisterRequest{Username: "a b", Password: testPassword}},
		{name: "bad email", req: models.RegisterRequest{Username: "alice", Password: testPassword, Email: ptr("nope")}},
		{name: "bad date", req: models.RegisterRequest{Username: "alice", Password: testPassword, DateOfBirth: ptr("17.05.2004")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(context.Background(), &tt.req)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "alice")
	bob, _ := f.user(t, "bob")
	bob.Active = false
	require.NoError(t, f.repo.User().Update(ctx, bob))

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "unknown user", username: "nobody", password: testPassword},
		{name: "wrong password", username: "alice", password: "wrong-password"},
		{name: "inactive user", username: "bob", password: testPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Login(ctx, &models.LoginRequest{Username: tt.username, Password: tt.password})
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestAuthService_LoginCarriesCurrentRoles(t *testing.T) {
	f := newFixture(t)
	f.admin(t)

	resp, err := f.auth.Login(context.Background(), &models.LoginRequest{Username: "admin", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleAdmin, models.RoleUser}, resp.Roles)
}
