package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/gradebook-service/internal/cache"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

// CatalogPostgreSQL is the gorm implementation shared by the small catalog tables
type CatalogPostgreSQL[T any] struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	collection   string
	sortColumns  sortColumns

	// tests reference rows of this table with ON DELETE SET NULL
	linkedByTests bool
}

func newCatalogPostgreSQL[T any](db *gorm.DB, cm *cache.CacheManager, collection string, columns sortColumns) *CatalogPostgreSQL[T] {
	return &CatalogPostgreSQL[T]{
		db:           db,
		cacheManager: cm,
		collection:   collection,
		sortColumns:  columns,
	}
}

func NewSubjectPostgreSQL(db *gorm.DB, cm *cache.CacheManager) repositories.CatalogRepository[models.Subject] {
	return newCatalogPostgreSQL[models.Subject](db, cm, "subjects", sortColumns{
		"name":      "name",
		"createdAt": "created_at",
	})
}

func NewSemesterPostgreSQL(db *gorm.DB, cm *cache.CacheManager) repositories.CatalogRepository[models.Semester] {
	return newCatalogPostgreSQL[models.Semester](db, cm, "semesters", sortColumns{
		"name":      "name",
		"startDate": "start_date",
		"endDate":   "end_date",
	})
}

func NewSemesterSubjectPostgreSQL(db *gorm.DB, cm *cache.CacheManager) repositories.CatalogRepository[models.SemesterSubject] {
	r := newCatalogPostgreSQL[models.SemesterSubject](db, cm, "semester_subjects", sortColumns{
		"semesterId": "semester_id",
		"subjectId":  "subject_id",
		"createdAt":  "created_at",
	})
	r.linkedByTests = true
	return r
}

func NewSchoolClassPostgreSQL(db *gorm.DB, cm *cache.CacheManager) repositories.CatalogRepository[models.SchoolClass] {
	r := newCatalogPostgreSQL[models.SchoolClass](db, cm, "classes", sortColumns{
		"name":      "name",
		"createdAt": "created_at",
	})
	r.linkedByTests = true
	return r
}

type catalogListResult[T any] struct {
	Items []*T  `json:"items"`
	Total int64 `json:"total"`
}

func (r *CatalogPostgreSQL[T]) invalidate(ctx context.Context) {
	cache.InvalidateCatalogCache(ctx, r.cacheManager, r.collection)
}

func (r *CatalogPostgreSQL[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return translateError("failed to create "+r.collection, err)
	}
	r.invalidate(ctx)
	return nil
}

func (r *CatalogPostgreSQL[T]) Update(ctx context.Context, entity *T) error {
	result := r.db.WithContext(ctx).
		Model(entity).
		Select("*").
		Omit("id", "created_at").
		Updates(entity)
	if result.Error != nil {
		return translateError("failed to update "+r.collection, result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError("failed to update "+r.collection, gorm.ErrRecordNotFound)
	}
	r.invalidate(ctx)
	return nil
}

func (r *CatalogPostgreSQL[T]) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return translateError("failed to delete "+r.collection, result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError("failed to delete "+r.collection, gorm.ErrRecordNotFound)
	}
	r.invalidate(ctx)
	if r.linkedByTests {
		cache.InvalidateAllTests(ctx, r.cacheManager)
	}
	return nil
}

func (r *CatalogPostgreSQL[T]) GetByID(ctx context.Context, id string) (*T, error) {
	return cache.CacheOrExecute(ctx, r.cacheManager.Catalog, r.collection+":id:"+id, func() (*T, error) {
		entity := new(T)
		if err := r.db.WithContext(ctx).First(entity, "id = ?", id).Error; err != nil {
			return nil, translateError("failed to get "+r.collection, err)
		}
		return entity, nil
	})
}

func (r *CatalogPostgreSQL[T]) List(ctx context.Context, page repositories.PageRequest) ([]*T, int64, error) {
	key := r.collection + ":list:" + page.CacheKey()
	result, err := cache.CacheOrExecute(ctx, r.cacheManager.Catalog, key, func() (*catalogListResult[T], error) {
		query := r.db.WithContext(ctx).Model(new(T)).Session(&gorm.Session{})

		var total int64
		if err := query.Count(&total).Error; err != nil {
			return nil, translateError("failed to count "+r.collection, err)
		}

		var items []*T
		if err := ApplyPaginationAndSort(query, page, r.sortColumns, "id").Find(&items).Error; err != nil {
			return nil, translateError("failed to list "+r.collection, err)
		}

		return &catalogListResult[T]{Items: items, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result.Items, result.Total, nil
}
