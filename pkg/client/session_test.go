package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, username string, roles []string, expiresAt time.Time) string {
	t.Helper()
	claims := tokenClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-secret"))
	require.NoError(t, err)
	return signed
}

func TestSession_Identity(t *testing.T) {
	expires := time.Now().Add(time.Hour).Truncate(time.Second)

	tests := []struct {
		name      string
		token     string
		wantOK    bool
		wantUser  string
		wantAdmin bool
		wantAuth  bool
	}{
		{name: "no token", wantOK: false},
		{name: "garbage", token: "not.a.jwt", wantOK: false},
		{name: "user", token: signToken(t, "alice", []string{"ROLE_USER"}, expires), wantOK: true, wantUser: "alice", wantAuth: true},
		{name: "prefixed admin", token: signToken(t, "root", []string{"ROLE_USER", "ROLE_ADMIN"}, expires), wantOK: true, wantUser: "root", wantAdmin: true, wantAuth: true},
		{name: "bare admin", token: signToken(t, "root", []string{"admin"}, expires), wantOK: true, wantUser: "root", wantAdmin: true, wantAuth: true},
		{name: "expired", token: signToken(t, "alice", []string{"ROLE_USER"}, time.Now().Add(-time.Minute)), wantOK: true, wantUser: "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(NewMemoryTokenStore())
			if tt.token != "" {
				require.NoError(t, s.SetToken(tt.token))
			}

			id, ok := s.Identity()
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantUser, id.Username)
			}
			assert.Equal(t, tt.wantAdmin, s.IsAdmin())
			assert.Equal(t, tt.wantAuth, s.IsAuthenticated())
		})
	}
}

func TestSession_ExpiryUsesClock(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	s := NewSession(nil)
	require.NoError(t, s.SetToken(signToken(t, "alice", nil, expires)))
	assert.True(t, s.IsAuthenticated())

	s.now = func() time.Time { return expires.Add(time.Second) }
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.Clear())
	_, ok := s.Token()
	assert.False(t, ok)
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := NewFileTokenStore(path)

	_, ok := store.Token()
	assert.False(t, ok)

	require.NoError(t, store.SetToken("abc.def.ghi"))
	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, ok = store.Token()
	assert.False(t, ok)
}

func TestSortState_Cycle(t *testing.T) {
	var s SortState
	s.Page = 3

	s.Toggle("value")
	assert.Equal(t, SortState{Field: "value", Direction: SortAsc, Page: 0}, s)
	assert.Equal(t, []string{"value,asc"}, s.Params())

	s.Page = 2
	s.Toggle("value")
	assert.Equal(t, SortState{Field: "value", Direction: SortDesc, Page: 2}, s)

	s.Toggle("value")
	assert.Equal(t, SortState{}, s)
	assert.Nil(t, s.Params())

	s.Toggle("value")
	s.Page = 4
	s.Toggle("createdOn")
	assert.Equal(t, SortState{Field: "createdOn", Direction: SortAsc, Page: 0}, s)

	opts := PageOptions{Size: 50}.WithSort(s)
	assert.Equal(t, PageOptions{Size: 50, Sort: []string{"createdOn,asc"}}, opts)
}
