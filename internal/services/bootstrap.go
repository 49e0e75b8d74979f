package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
)

const BootstrapAdminUsername = "admin"

// SeedUser is one entry of the SEED_USERS_FILE list
type SeedUser struct {
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	Roles     []string `yaml:"roles"`
	FirstName *string  `yaml:"firstName"`
	LastName  *string  `yaml:"lastName"`
	Email     *string  `yaml:"email"`
}

// Bootstrapper creates the initial accounts of a fresh installation
type Bootstrapper struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewBootstrapper(repo repositories.Repository, logger utils.Logger) *Bootstrapper {
	return &Bootstrapper{repo: repo, logger: logger}
}

// EnsureAdmin creates the admin account when no user exists yet. The generated
// password is returned and logged once.
func (b *Bootstrapper) EnsureAdmin(ctx context.Context) (string, error) {
	count, err := b.repo.User().Count(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return "", nil
	}

	password, err := randomPassword()
	if err != nil {
		return "", err
	}
	user, err := newUser(BootstrapAdminUsername, password, nil, nil, nil, nil)
	if err != nil {
		return "", err
	}
	user.Roles = []string{models.RoleAdmin, models.RoleUser}
	user.Active = true

	if err := b.repo.User().Create(ctx, user); err != nil {
		return "", fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	b.logger.Warn("Bootstrap admin created, change this password", "username", BootstrapAdminUsername, "password", password)
	return password, nil
}

// LoadSeedFile reads a YAML list of users
func LoadSeedFile(path string) ([]SeedUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var users []SeedUser
	if err := yaml.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return users, nil
}

// Seed creates every listed user that does not exist yet and returns how many were created
func (b *Bootstrapper) Seed(ctx context.Context, users []SeedUser) (int, error) {
	created := 0
	for _, seed := range users {
		if seed.Username == "" || seed.Password == "" {
			b.logger.Warn("Skipping seed user without username or password", "username", seed.Username)
			continue
		}

		exists, err := b.repo.User().ExistsByUsername(ctx, seed.Username)
		if err != nil {
			return created, fmt.Errorf("failed to check seed user %s: %w", seed.Username, err)
		}
		if exists {
			continue
		}

		user, err := newUser(seed.Username, seed.Password, seed.FirstName, seed.LastName, seed.Email, nil)
		if err != nil {
			return created, err
		}
		user.Roles = models.NormalizeRoles(seed.Roles)
		if len(user.Roles) == 0 {
			user.Roles = []string{models.RoleUser}
		}
		user.Active = true

		if err := b.repo.User().Create(ctx, user); err != nil {
			return created, fmt.Errorf("failed to create seed user %s: %w", seed.Username, err)
		}
		created++
	}

	if created > 0 {
		b.logger.Info("Seed users created", "count", created)
	}
	return created, nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
