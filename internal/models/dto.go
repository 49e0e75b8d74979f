package models

import "time"

// ===== AUTH DTOS =====

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=72"`
}

type RegisterRequest struct {
	Username    string  `json:"username" validate:"required,username"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	FirstName   *string `json:"firstName" validate:"omitempty,max=100"`
	LastName    *string `json:"lastName" validate:"omitempty,max=100"`
	DateOfBirth *string `json:"dateOfBirth" validate:"omitempty,date_ymd"`
}

type AuthResponse struct {
	Token     string   `json:"token"`
	TokenType string   `json:"tokenType"`
	ExpiresIn int64    `json:"expiresIn"`
	Username  string   `json:"username"`
	Roles     []string `json:"roles"`
}

// ===== USER DTOS =====

type CreateUserRequest struct {
	Username    string   `json:"username" validate:"required,username"`
	Password    string   `json:"password" validate:"required,min=8,max=72"`
	Email       *string  `json:"email" validate:"omitempty,email,max=255"`
	FirstName   *string  `json:"firstName" validate:"omitempty,max=100"`
	LastName    *string  `json:"lastName" validate:"omitempty,max=100"`
	DateOfBirth *string  `json:"dateOfBirth" validate:"omitempty,date_ymd"`
	Roles       []string `json:"roles" validate:"omitempty,max=10,dive,role_name"`
	Active      *bool    `json:"active"`
}

type SetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

type RoleRequest struct {
	Role string `json:"role" validate:"required,role_name"`
}

type ReplaceRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,max=10,dive,role_name"`
}

// ===== TEST DTOS =====

type CreateTestRequest struct {
	Name              string  `json:"name" validate:"required,max=255"`
	Comment           *string `json:"comment" validate:"omitempty,max=1000"`
	Date              *string `json:"date" validate:"omitempty,date_ymd"`
	SemesterSubjectID *string `json:"semesterSubjectId" validate:"omitempty,uuid"`
	ClassID           *string `json:"classId" validate:"omitempty,uuid"`
}

type UpdateTestRequest = CreateTestRequest

// ===== GRADE DTOS =====

type CreateGradeRequest struct {
	StudentID *string  `json:"studentId" validate:"omitempty,uuid"`
	TestID    *string  `json:"testId" validate:"omitempty,uuid"`
	Value     *float64 `json:"value" validate:"required,grade_value"`
	Weight    *float64 `json:"weight" validate:"omitempty,grade_weight"`
	Comment   *string  `json:"comment" validate:"omitempty,max=255"`
}

type UpdateGradeRequest struct {
	TestID  *string  `json:"testId" validate:"omitempty,uuid"`
	Value   *float64 `json:"value" validate:"omitempty,grade_value"`
	Weight  *float64 `json:"weight" validate:"omitempty,grade_weight"`
	Comment *string  `json:"comment" validate:"omitempty,max=255"`
}

// ===== CATALOG DTOS =====

type SubjectRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type SemesterRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	StartDate string `json:"startDate" validate:"required,date_ymd"`
	EndDate   string `json:"endDate" validate:"required,date_ymd"`
}

type SemesterSubjectRequest struct {
	SemesterID string `json:"semesterId" validate:"required,uuid"`
	SubjectID  string `json:"subjectId" validate:"required,uuid"`
}

type SchoolClassRequest struct {
	Name              string `json:"name" validate:"required,max=255"`
	SemesterSubjectID string `json:"semesterSubjectId" validate:"required,uuid"`
}

// ===== PAGINATION =====

// Page is one page of an ordered result set
type Page[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Size             int   `json:"size"`
	Number           int   `json:"number"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	NumberOfElements int   `json:"numberOfElements"`
	Empty            bool  `json:"empty"`
}

// NewPage builds a page for the zero-based page index and page size
func NewPage[T any](content []T, total int64, page, size int) *Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	return &Page[T]{
		Content:          content,
		TotalElements:    total,
		TotalPages:       totalPages,
		Size:             size,
		Number:           page,
		First:            page == 0,
		Last:             page >= totalPages-1,
		NumberOfElements: len(content),
		Empty:            len(content) == 0,
	}
}

// MapPage converts the content of a page, keeping its counters
func MapPage[T, U any](p *Page[T], fn func(T) U) *Page[U] {
	out := make([]U, len(p.Content))
	for i, item := range p.Content {
		out[i] = fn(item)
	}
	return &Page[U]{
		Content:          out,
		TotalElements:    p.TotalElements,
		TotalPages:       p.TotalPages,
		Size:             p.Size,
		Number:           p.Number,
		First:            p.First,
		Last:             p.Last,
		NumberOfElements: len(out),
		Empty:            len(out) == 0,
	}
}

// ===== RESPONSES =====

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
