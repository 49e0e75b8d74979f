package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/gradebook-service/internal/auth"
	"github.com/SAP-F-2025/gradebook-service/internal/events"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories/memory"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
	"github.com/SAP-F-2025/gradebook-service/internal/validator"
)

const testPassword = "password123"

func ptr[T any](v T) *T { return &v }

type fixture struct {
	repo      *memory.Repository
	publisher *events.MockEventPublisher
	codec     *auth.TokenCodec
	logger    utils.Logger

	auth    AuthService
	users   UserService
	tests   TestService
	grades  GradeService
	catalog CatalogService
	reports ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	repo := memory.NewRepository()
	publisher := events.NewMockEventPublisher(logger.Slog())
	codec := auth.NewTokenCodec("services-test-secret-0123456789abcdef", "gradebook-test", time.Hour)
	v := validator.New()

	grades := NewGradeService(repo, publisher, logger, v)
	return &fixture{
		repo:      repo,
		publisher: publisher,
		codec:     codec,
		logger:    logger,
		auth:      NewAuthService(repo, codec, publisher, logger, v),
		users:     NewUserService(repo, publisher, logger, v),
		tests:     NewTestService(repo, publisher, logger, v),
		grades:    grades,
		catalog:   NewCatalogService(repo, publisher, logger, v),
		reports:   NewReportService(repo, grades, logger),
	}
}

// user stores an active user with testPassword and returns it with its principal
func (f *fixture) user(t *testing.T, username string, roles ...string) (*models.User, *auth.Principal) {
	t.Helper()
	if len(roles) == 0 {
		roles = []string{models.RoleUser}
	}
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	u := &models.User{Username: username, PasswordHash: hash, Active: true, Roles: roles}
	require.NoError(t, f.repo.User().Create(context.Background(), u))
	return u, &auth.Principal{UserID: u.ID, Username: u.Username, Roles: models.NormalizeRoles(roles)}
}

func (f *fixture) admin(t *testing.T) (*models.User, *auth.Principal) {
	t.Helper()
	return f.user(t, "admin", models.RoleAdmin, models.RoleUser)
}

func (f *fixture) semester(t *testing.T, admin *auth.Principal, name string) *models.Semester {
	t.Helper()
	semester, err := f.catalog.CreateSemester(context.Background(), admin, &models.SemesterRequest{
		Name: name, StartDate: "2025-02-01", EndDate: "2025-06-30",
	})
	require.NoError(t, err)
	return semester
}

// subjectTest links a new subject to semester and creates a test counting towards it
func (f *fixture) subjectTest(t *testing.T, admin *auth.Principal, semester *models.Semester, subjectName string) *models.Test {
	t.Helper()
	ctx := context.Background()

	subject, err := f.catalog.CreateSubject(ctx, admin, &models.SubjectRequest{Name: subjectName})
	require.NoError(t, err)

	ss, err := f.catalog.CreateSemesterSubject(ctx, admin, &models.SemesterSubjectRequest{
		SemesterID: semester.ID, SubjectID: subject.ID,
	})
	require.NoError(t, err)

	test, err := f.tests.Create(ctx, admin, &models.CreateTestRequest{
		Name: subjectName + " midterm", SemesterSubjectID: &ss.ID,
	})
	require.NoError(t, err)
	return test
}
