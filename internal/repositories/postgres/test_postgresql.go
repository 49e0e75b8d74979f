package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/gradebook-service/internal/cache"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

var testSortColumns = sortColumns{
	"name":      "name",
	"date":      "date",
	"createdAt": "created_at",
}

type TestPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewTestPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.TestRepository {
	return &TestPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

type testListResult struct {
	Items []*models.Test `json:"items"`
	Total int64          `json:"total"`
}

// Create creates a new test and invalidates cached listings
func (t *TestPostgreSQL) Create(ctx context.Context, test *models.Test) error {
	if err := t.db.WithContext(ctx).Create(test).Error; err != nil {
		return translateError("failed to create test", err)
	}
	cache.InvalidateTestCache(ctx, t.cacheManager, "")
	return nil
}

func (t *TestPostgreSQL) Update(ctx context.Context, test *models.Test) error {
	result := t.db.WithContext(ctx).
		Model(test).
		Select("*").
		Omit("id", "created_at", "created_by").
		Updates(test)
	if result.Error != nil {
		return translateError("failed to update test", result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError("failed to update test", gorm.ErrRecordNotFound)
	}
	cache.InvalidateTestCache(ctx, t.cacheManager, test.ID)
	return nil
}

// Delete removes the test; grades referring to it keep existing with test_id set to NULL
func (t *TestPostgreSQL) Delete(ctx context.Context, id string) error {
	result := t.db.WithContext(ctx).Delete(&models.Test{}, "id = ?", id)
	if result.Error != nil {
		return translateError("failed to delete test", result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError("failed to delete test", gorm.ErrRecordNotFound)
	}
	cache.InvalidateTestCache(ctx, t.cacheManager, id)
	return nil
}

// GetByID retrieves a test by ID with caching
func (t *TestPostgreSQL) GetByID(ctx context.Context, id string) (*models.Test, error) {
	return cache.CacheOrExecute(ctx, t.cacheManager.Test, "id:"+id, func() (*models.Test, error) {
		var test models.Test
		if err := t.db.WithContext(ctx).First(&test, "id = ?", id).Error; err != nil {
			return nil, translateError("failed to get test", err)
		}
		return &test, nil
	})
}

// List returns one page of tests, cached per filter combination
func (t *TestPostgreSQL) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	result, err := cache.CacheOrExecute(ctx, t.cacheManager.Test, "list:"+filters.CacheKey(), func() (*testListResult, error) {
		query := t.db.WithContext(ctx).Model(&models.Test{})

		if name := strings.TrimSpace(filters.Name); name != "" {
			query = query.Where("name ILIKE ?", containsPattern(name))
		}
		if filters.SemesterSubjectID != nil {
			query = query.Where("semester_subject_id = ?", *filters.SemesterSubjectID)
		}
		if filters.ClassID != nil {
			query = query.Where("class_id = ?", *filters.ClassID)
		}
		query = query.Session(&gorm.Session{})

		var total int64
		if err := query.Count(&total).Error; err != nil {
			return nil, translateError("failed to count tests", err)
		}

		var tests []*models.Test
		if err := ApplyPaginationAndSort(query, filters.Page, testSortColumns, "id").Find(&tests).Error; err != nil {
			return nil, translateError("failed to list tests", err)
		}

		return &testListResult{Items: tests, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	return result.Items, result.Total, nil
}
