package services

import (
	"context"

	"github.com/SAP-F-2025/gradebook-service/internal/auth"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

// ===== SERVICE INTERFACES =====

// AuthService is the session issuer: it turns credentials into signed tokens
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
}

type UserService interface {
	// Admin operations
	List(ctx context.Context, actor *auth.Principal, filters repositories.UserFilters) (*models.Page[*models.User], error)
	GetByUsername(ctx context.Context, actor *auth.Principal, username string) (*models.User, error)
	Create(ctx context.Context, actor *auth.Principal, req *models.CreateUserRequest) (*models.User, error)
	SetPassword(ctx context.Context, actor *auth.Principal, username string, req *models.SetPasswordRequest) error
	SetActive(ctx context.Context, actor *auth.Principal, username string, active bool) (*models.User, error)
	GrantRole(ctx context.Context, actor *auth.Principal, username, role string) (*models.User, error)
	RevokeRole(ctx context.Context, actor *auth.Principal, username, role string) (*models.User, error)
	ReplaceRoles(ctx context.Context, actor *auth.Principal, username string, req *models.ReplaceRolesRequest) (*models.User, error)
	Delete(ctx context.Context, actor *auth.Principal, username string) error

	// Any authenticated caller
	ListActive(ctx context.Context, actor *auth.Principal, page repositories.PageRequest) (*models.Page[models.UserSummary], error)
	Me(ctx context.Context, actor *auth.Principal) (*models.User, error)
	ChangePassword(ctx context.Context, actor *auth.Principal, req *models.ChangePasswordRequest) error
}

type TestService interface {
	List(ctx context.Context, actor *auth.Principal, filters repositories.TestFilters) (*models.Page[*models.Test], error)
	Get(ctx context.Context, actor *auth.Principal, id string) (*models.Test, error)
	Create(ctx context.Context, actor *auth.Principal, req *models.CreateTestRequest) (*models.Test, error)
	Update(ctx context.Context, actor *auth.Principal, id string, req *models.UpdateTestRequest) (*models.Test, error)
	Delete(ctx context.Context, actor *auth.Principal, id string) error
}

type GradeService interface {
	List(ctx context.Context, actor *auth.Principal, filters repositories.GradeFilters) (*models.Page[*models.Grade], error)
	ListView(ctx context.Context, actor *auth.Principal, filters repositories.GradeFilters) (*models.Page[*models.GradeView], error)
	// ListViewOwn lists the caller's grades; authored=true lets admins list the grades they recorded instead
	ListViewOwn(ctx context.Context, actor *auth.Principal, filters repositories.GradeFilters, authored bool) (*models.Page[*models.GradeView], error)
	Get(ctx context.Context, actor *auth.Principal, id string) (*models.Grade, error)
	Create(ctx context.Context, actor *auth.Principal, req *models.CreateGradeRequest) (*models.Grade, error)
	Update(ctx context.Context, actor *auth.Principal, id string, req *models.UpdateGradeRequest) (*models.Grade, error)
	Delete(ctx context.Context, actor *auth.Principal, id string) error
	SemesterResults(ctx context.Context, actor *auth.Principal, semesterID string, studentID *string) ([]models.StudentSemesterResult, error)
}

type CatalogService interface {
	ListSubjects(ctx context.Context, page repositories.PageRequest) (*models.Page[*models.Subject], error)
	GetSubject(ctx context.Context, id string) (*models.Subject, error)
	CreateSubject(ctx context.Context, actor *auth.Principal, req *models.SubjectRequest) (*models.Subject, error)
	UpdateSubject(ctx context.Context, actor *auth.Principal, id string, req *models.SubjectRequest) (*models.Subject, error)
	DeleteSubject(ctx context.Context, actor *auth.Principal, id string) error

	ListSemesters(ctx context.Context, page repositories.PageRequest) (*models.Page[*models.Semester], error)
	GetSemester(ctx context.Context, id string) (*models.Semester, error)
	CreateSemester(ctx context.Context, actor *auth.Principal, req *models.SemesterRequest) (*models.Semester, error)
	UpdateSemester(ctx context.Context, actor *auth.Principal, id string, req *models.SemesterRequest) (*models.Semester, error)
	DeleteSemester(ctx context.Context, actor *auth.Principal, id string) error

	ListSemesterSubjects(ctx context.Context, page repositories.PageRequest) (*models.Page[*models.SemesterSubject], error)
	GetSemesterSubject(ctx context.Context, id string) (*models.SemesterSubject, error)
	CreateSemesterSubject(ctx context.Context, actor *auth.Principal, req *models.SemesterSubjectRequest) (*models.SemesterSubject, error)
	UpdateSemesterSubject(ctx context.Context, actor *auth.Principal, id string, req *models.SemesterSubjectRequest) (*models.SemesterSubject, error)
	DeleteSemesterSubject(ctx context.Context, actor *auth.Principal, id string) error

	ListClasses(ctx context.Context, page repositories.PageRequest) (*models.Page[*models.SchoolClass], error)
	GetClass(ctx context.Context, id string) (*models.SchoolClass, error)
	CreateClass(ctx context.Context, actor *auth.Principal, req *models.SchoolClassRequest) (*models.SchoolClass, error)
	UpdateClass(ctx context.Context, actor *auth.Principal, id string, req *models.SchoolClassRequest) (*models.SchoolClass, error)
	DeleteClass(ctx context.Context, actor *auth.Principal, id string) error
}

// ReportService renders grade data as downloadable documents
type ReportService interface {
	// ExportGradeViews renders the rows of GradeService.ListView as an xlsx workbook
	ExportGradeViews(ctx context.Context, actor *auth.Principal, filters repositories.GradeFilters) ([]byte, error)
	// SemesterReport renders GradeService.SemesterResults as a PDF
	SemesterReport(ctx context.Context, actor *auth.Principal, semesterID string, studentID *string) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Users() UserService
	Tests() TestService
	Grades() GradeService
	Catalog() CatalogService
	Reports() ReportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
