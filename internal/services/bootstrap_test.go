package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
)

func TestBootstrapper_EnsureAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := NewBootstrapper(f.repo, f.logger)

	password, err := b.EnsureAdmin(ctx)
	require.NoError(t, err)
	assert.Len(t, password, 16)

	resp, err := f.auth.Login(ctx, &models.LoginRequest{Username: BootstrapAdminUsername, Password: password})
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleAdmin, models.RoleUser}, resp.Roles)

	again, err := b.EnsureAdmin(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestBootstrapper_SeedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := NewBootstrapper(f.repo, f.logger)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- username: tina
  password: tina-pass
  roles: [admin]
  firstName: Tina
- username: pupil
  password: pupil-pass
- username: ""
  password: ignored
`), 0o600))

	users, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, users, 3)

	created, err := b.Seed(ctx, users)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = b.Seed(ctx, users)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	tina, err := f.repo.User().GetByUsername(ctx, "tina")
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleAdmin}, []string(tina.Roles))
	require.NotNil(t, tina.FirstName)
	assert.Equal(t, "Tina", *tina.FirstName)

	pupil, err := f.repo.User().GetByUsername(ctx, "pupil")
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleUser}, []string(pupil.Roles))
}

func TestLoadSeedFile_Missing(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
