package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

var userComparators = comparators[models.User]{
	"username":  func(a, b *models.User) int { return strings.Compare(a.Username, b.Username) },
	"firstName": func(a, b *models.User) int { return compareStringPtr(a.FirstName, b.FirstName) },
	"lastName":  func(a, b *models.User) int { return compareStringPtr(a.LastName, b.LastName) },
	"email":     func(a, b *models.User) int { return compareStringPtr(a.Email, b.Email) },
	"active":    func(a, b *models.User) int { return compareBool(a.Active, b.Active) },
	"createdAt": func(a, b *models.User) int { return compareTime(a.CreatedAt, b.CreatedAt) },
}

type UserMemory struct {
	s *Store
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}

// usernameTaken must be called with the store lock held
func (r *UserMemory) usernameTaken(username, exceptID string) bool {
	for _, u := range r.s.users {
		if u.Username == username && u.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *UserMemory) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := user.BeforeCreate(nil); err != nil {
		return err
	}
	if _, ok := r.s.users[user.ID]; ok || r.usernameTaken(user.Username, "") {
		return duplicate("failed to create user")
	}

	now := r.s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserMemory) Update(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[user.ID]
	if !ok {
		return notFound("failed to update user")
	}
	if r.usernameTaken(user.Username, user.ID) {
		return duplicate("failed to update user")
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

// Delete removes the user together with the grades they own
func (r *UserMemory) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return notFound("failed to delete user")
	}
	delete(r.s.users, id)
	for gid, g := range r.s.grades {
		if g.StudentID == id {
			delete(r.s.grades, gid)
		}
	}
	return nil
}

func (r *UserMemory) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, notFound("failed to get user")
	}
	return cloneUser(u), nil
}

func (r *UserMemory) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, notFound("failed to get user by username")
}

func (r *UserMemory) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.TrimSpace(filters.Query)
	var out []*models.User
	for _, u := range r.s.users {
		if filters.Active != nil && u.Active != *filters.Active {
			continue
		}
		if q != "" && !containsFold(u.Username, q) && !containsFoldPtr(u.FirstName, q) &&
			!containsFoldPtr(u.LastName, q) && !containsFoldPtr(u.Email, q) {
			continue
		}
		out = append(out, cloneUser(u))
	}

	items, total := sortAndPage(out, filters.Page, userComparators, func(u *models.User) string { return u.ID })
	return items, total, nil
}

func (r *UserMemory) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.usernameTaken(username, ""), nil
}

func (r *UserMemory) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}
