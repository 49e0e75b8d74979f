package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

var userSortColumns = sortColumns{
	"username":  "username",
	"firstName": "first_name",
	"lastName":  "last_name",
	"email":     "email",
	"active":    "active",
	"createdAt": "created_at",
}

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	return translateError("failed to create user", u.db.WithContext(ctx).Create(user).Error)
}

func (u *UserPostgreSQL) Update(ctx context.Context, user *models.User) error {
	result := u.db.WithContext(ctx).
		Model(user).
		Select("*").
		Omit("id", "created_at").
		Updates(user)
	if result.Error != nil {
		return translateError("failed to update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError("failed to update user", gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete removes the user; owned grades go with it through ON DELETE CASCADE
func (u *UserPostgreSQL) Delete(ctx context.Context, id string) error {
	result := u.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return translateError("failed to delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError("failed to delete user", gorm.ErrRecordNotFound)
	}
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError("failed to get user", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, translateError("failed to get user by username", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	query := u.db.WithContext(ctx).Model(&models.User{})

	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := containsPattern(q)
		query = query.Where("username ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?",
			pattern, pattern, pattern, pattern)
	}
	if filters.Active != nil {
		query = query.Where("active = ?", *filters.Active)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError("failed to count users", err)
	}

	var users []*models.User
	err := ApplyPaginationAndSort(query, filters.Page, userSortColumns, "id").Find(&users).Error
	if err != nil {
		return nil, 0, translateError("failed to list users", err)
	}

	return users, total, nil
}

func (u *UserPostgreSQL) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		return false, translateError("failed to check username", err)
	}
	return count > 0, nil
}

func (u *UserPostgreSQL) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := u.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, translateError("failed to count users", err)
	}
	return count, nil
}
