package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrReferenced = errors.New("record is still referenced")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// ===== PAGINATION & SORTING =====

const (
	DefaultPageSize = 20
	MaxPageSize     = 1000
	// MaxPage keeps Page*Size inside an int32 OFFSET
	MaxPage = math.MaxInt32 / MaxPageSize
)

type SortOrder struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// PageRequest is a zero-based page request with an ordered list of sort keys
type PageRequest struct {
	Page int         `json:"page"`
	Size int         `json:"size"`
	Sort []SortOrder `json:"sort"`
}

// Normalize clamps page and size into their valid ranges
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p PageRequest) Limit() int {
	return p.Normalize().Size
}

func (p PageRequest) Offset() int {
	n := p.Normalize()
	return n.Page * n.Size
}

// CacheKey renders the request as a stable cache key fragment
func (p PageRequest) CacheKey() string {
	n := p.Normalize()
	var b strings.Builder
	fmt.Fprintf(&b, "p%d:s%d", n.Page, n.Size)
	for _, s := range n.Sort {
		dir := "asc"
		if s.Desc {
			dir = "desc"
		}
		fmt.Fprintf(&b, ":%s,%s", s.Field, dir)
	}
	return b.String()
}

// ParseSort parses repeatable "field,direction" values; direction defaults to asc
func ParseSort(values []string) []SortOrder {
	var orders []SortOrder
	for _, raw := range values {
		parts := strings.Split(raw, ",")
		field := strings.TrimSpace(parts[0])
		if field == "" {
			continue
		}
		desc := false
		if len(parts) > 1 {
			desc = strings.EqualFold(strings.TrimSpace(parts[1]), "desc")
		}
		orders = append(orders, SortOrder{Field: field, Desc: desc})
	}
	return orders
}

// ===== FILTERS =====

type UserFilters struct {
	Query  string // username, name or email contains
	Active *bool
	Page   PageRequest
}

type TestFilters struct {
	Name              string
	SemesterSubjectID *string
	ClassID           *string
	Page              PageRequest
}

func (f TestFilters) CacheKey() string {
	return fmt.Sprintf("name=%s:ss=%s:class=%s:%s",
		strings.ToLower(f.Name), deref(f.SemesterSubjectID), deref(f.ClassID), f.Page.CacheKey())
}

type GradeFilters struct {
	StudentID       *string
	TestID          *string
	CreatedBy       *string
	StudentUsername string // contains, case-insensitive
	TestName        string // contains, case-insensitive
	ValueMin        *float64
	ValueMax        *float64
	Page            PageRequest
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ===== REPOSITORIES =====

type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	Update(ctx context.Context, test *models.Test) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Test, error)
	List(ctx context.Context, filters TestFilters) ([]*models.Test, int64, error)
}

type GradeRepository interface {
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Grade, error)

	// List returns raw grade rows
	List(ctx context.Context, filters GradeFilters) ([]*models.Grade, int64, error)
	// ListView returns grades joined with student username and test name
	ListView(ctx context.Context, filters GradeFilters) ([]*models.GradeView, int64, error)

	// SemesterRows returns every grade that counts towards a subject of the semester
	SemesterRows(ctx context.Context, semesterID string, studentID *string) ([]models.SemesterGradeRow, error)
}

// CatalogRepository is the CRUD surface shared by subjects, semesters, semester subjects and classes
type CatalogRepository[T any] interface {
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, page PageRequest) ([]*T, int64, error)
}
