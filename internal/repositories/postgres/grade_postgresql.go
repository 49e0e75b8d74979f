package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

var (
	gradeSortColumns = sortColumns{
		"value":     "g.value",
		"weight":    "g.weight",
		"comment":   "g.comment",
		"studentId": "g.student_id",
		"testId":    "g.test_id",
		"createdOn": "g.created_at",
	}

	gradeViewSortColumns = sortColumns{
		"value":           "g.value",
		"weight":          "g.weight",
		"comment":         "g.comment",
		"studentUsername": "u.username",
		"testName":        "t.name",
		"createdOn":       "g.created_at",
	}
)

const gradeViewColumns = "g.id, g.value, g.weight, g.comment, g.student_id, u.username AS student_username, " +
	"g.test_id, t.name AS test_name, g.created_by, g.created_at AS created_on"

type GradePostgreSQL struct {
	db *gorm.DB
}

func NewGradePostgreSQL(db *gorm.DB) repositories.GradeRepository {
	return &GradePostgreSQL{db: db}
}

func (g *GradePostgreSQL) Create(ctx context.Context, grade *models.Grade) error {
	return translateError("failed to create grade", g.db.WithContext(ctx).Create(grade).Error)
}

func (g *GradePostgreSQL) Update(ctx context.Context, grade *models.Grade) error {
	result := g.db.WithContext(ctx).
		Model(grade).
		Select("*").
		Omit("id", "student_id", "created_by", "created_at").
		Updates(grade)
	if result.Error != nil {
		return translateError("failed to update grade", result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError("failed to update grade", gorm.ErrRecordNotFound)
	}
	return nil
}

func (g *GradePostgreSQL) Delete(ctx context.Context, id string) error {
	result := g.db.WithContext(ctx).Delete(&models.Grade{}, "id = ?", id)
	if result.Error != nil {
		return translateError("failed to delete grade", result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError("failed to delete grade", gorm.ErrRecordNotFound)
	}
	return nil
}

func (g *GradePostgreSQL) GetByID(ctx context.Context, id string) (*models.Grade, error) {
	var grade models.Grade
	if err := g.db.WithContext(ctx).First(&grade, "id = ?", id).Error; err != nil {
		return nil, translateError("failed to get grade", err)
	}
	return &grade, nil
}

// baseQuery joins student and test so name filters work for both raw and view listings
func (g *GradePostgreSQL) baseQuery(ctx context.Context, filters repositories.GradeFilters) *gorm.DB {
	query := g.db.WithContext(ctx).
		Table("grades AS g").
		Joins("JOIN users u ON u.id = g.student_id").
		Joins("LEFT JOIN tests t ON t.id = g.test_id")

	if filters.StudentID != nil {
		query = query.Where("g.student_id = ?", *filters.StudentID)
	}
	if filters.TestID != nil {
		query = query.Where("g.test_id = ?", *filters.TestID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("g.created_by = ?", *filters.CreatedBy)
	}
	if name := strings.TrimSpace(filters.StudentUsername); name != "" {
		query = query.Where("u.username ILIKE ?", containsPattern(name))
	}
	if name := strings.TrimSpace(filters.TestName); name != "" {
		query = query.Where("t.name ILIKE ?", containsPattern(name))
	}
	if filters.ValueMin != nil {
		query = query.Where("g.value >= ?", *filters.ValueMin)
	}
	if filters.ValueMax != nil {
		query = query.Where("g.value <= ?", *filters.ValueMax)
	}

	return query.Session(&gorm.Session{})
}

func (g *GradePostgreSQL) List(ctx context.Context, filters repositories.GradeFilters) ([]*models.Grade, int64, error) {
	query := g.baseQuery(ctx, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError("failed to count grades", err)
	}

	var grades []*models.Grade
	err := ApplyPaginationAndSort(query.Select("g.*"), filters.Page, gradeSortColumns, "g.id").
		Scan(&grades).Error
	if err != nil {
		return nil, 0, translateError("failed to list grades", err)
	}

	return grades, total, nil
}

func (g *GradePostgreSQL) ListView(ctx context.Context, filters repositories.GradeFilters) ([]*models.GradeView, int64, error) {
	query := g.baseQuery(ctx, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError("failed to count grade views", err)
	}

	var views []*models.GradeView
	err := ApplyPaginationAndSort(query.Select(gradeViewColumns), filters.Page, gradeViewSortColumns, "g.id").
		Scan(&views).Error
	if err != nil {
		return nil, 0, translateError("failed to list grade views", err)
	}

	return views, total, nil
}

// SemesterRows resolves each grade through its test (directly or via the test's class) to a semester subject
func (g *GradePostgreSQL) SemesterRows(ctx context.Context, semesterID string, studentID *string) ([]models.SemesterGradeRow, error) {
	query := g.db.WithContext(ctx).
		Table("grades AS g").
		Select("g.student_id, u.username AS student_username, s.id AS subject_id, s.name AS subject_name, g.value, g.weight").
		Joins("JOIN users u ON u.id = g.student_id").
		Joins("JOIN tests t ON t.id = g.test_id").
		Joins("LEFT JOIN school_classes c ON c.id = t.class_id").
		Joins("JOIN semester_subjects ss ON ss.id = COALESCE(t.semester_subject_id, c.semester_subject_id)").
		Joins("JOIN subjects s ON s.id = ss.subject_id").
		Where("ss.semester_id = ?", semesterID)

	if studentID != nil {
		query = query.Where("g.student_id = ?", *studentID)
	}

	var rows []models.SemesterGradeRow
	if err := query.Order("u.username ASC, s.name ASC, g.created_at ASC").Scan(&rows).Error; err != nil {
		return nil, translateError("failed to load semester grades", err)
	}

	return rows, nil
}
