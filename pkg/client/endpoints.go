package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
)

// ===== AUTH =====

// Login signs in and stores the returned token in s
func (c *Client) Login(ctx context.Context, s *Session, username, password string) (*models.AuthResponse, error) {
	return c.authenticate(ctx, s, request{
		method:   http.MethodPost,
		path:     "/public/auth/login",
		body:     models.LoginRequest{Username: username, Password: password},
		fallback: "Login failed",
	})
}

// Register creates an account and stores the returned token in s
func (c *Client) Register(ctx context.Context, s *Session, req *models.RegisterRequest) (*models.AuthResponse, error) {
	return c.authenticate(ctx, s, request{
		method:   http.MethodPost,
		path:     "/public/auth/register",
		body:     req,
		fallback: "Registration failed",
	})
}

func (c *Client) authenticate(ctx context.Context, s *Session, r request) (*models.AuthResponse, error) {
	httpResp, data, err := c.send(ctx, nil, r)
	if err != nil {
		return nil, err
	}

	resp := &models.AuthResponse{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, resp); err != nil {
			return nil, &APIError{Status: httpResp.StatusCode, Message: r.fallback, Err: err}
		}
	}
	if resp.Token == "" {
		resp.Token = strings.TrimSpace(strings.TrimPrefix(httpResp.Header.Get("Authorization"), "Bearer "))
	}
	if resp.Token == "" {
		return nil, &APIError{Status: httpResp.StatusCode, Message: r.fallback + ": no token in response"}
	}
	if err := s.SetToken(resp.Token); err != nil {
		return nil, &APIError{Message: r.fallback, Err: err}
	}
	return resp, nil
}

// Logout forgets the stored token. The server keeps no session state.
func (c *Client) Logout(s *Session) error {
	return s.Clear()
}

func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	return call[models.HealthResponse](ctx, c, nil, request{method: http.MethodGet, path: "/public/health", fallback: "Health check failed"})
}

// ===== USERS =====

type UserListOptions struct {
	PageOptions
	Query  string
	Active *bool
}

func (c *Client) ListUsers(ctx context.Context, s *Session, opts UserListOptions) (*models.Page[models.User], error) {
	q := opts.values()
	setIf(q, "q", opts.Query)
	if opts.Active != nil {
		q.Set("active", strconv.FormatBool(*opts.Active))
	}
	return call[models.Page[models.User]](ctx, c, s, request{method: http.MethodGet, path: "/admin/users", query: q, fallback: "Failed to load users"})
}

func (c *Client) ListActiveUsers(ctx context.Context, s *Session, opts PageOptions) (*models.Page[models.UserSummary], error) {
	return call[models.Page[models.UserSummary]](ctx, c, s, request{method: http.MethodGet, path: "/admin/users/active", query: opts.values(), fallback: "Failed to load users"})
}

func userPath(username string, rest ...string) string {
	return "/admin/users/" + strings.Join(append([]string{url.PathEscape(username)}, rest...), "/")
}

func (c *Client) GetUser(ctx context.Context, s *Session, username string) (*models.User, error) {
	return call[models.User](ctx, c, s, request{method: http.MethodGet, path: userPath(username), fallback: "Failed to load user"})
}

func (c *Client) CreateUser(ctx context.Context, s *Session, req *models.CreateUserRequest) (*models.User, error) {
	return call[models.User](ctx, c, s, request{method: http.MethodPost, path: "/admin/users", body: req, fallback: "Failed to create user"})
}

func (c *Client) SetPassword(ctx context.Context, s *Session, username, password string) error {
	return c.exec(ctx, s, request{
		method:   http.MethodPut,
		path:     userPath(username, "password"),
		body:     models.SetPasswordRequest{Password: password},
		fallback: "Failed to set password",
	})
}

func (c *Client) SetActive(ctx context.Context, s *Session, username string, active bool) (*models.User, error) {
	return call[models.User](ctx, c, s, request{
		method:   http.MethodPut,
		path:     userPath(username, "active"),
		query:    url.Values{"active": {strconv.FormatBool(active)}},
		fallback: "Failed to change user state",
	})
}

func (c *Client) GrantRole(ctx context.Context, s *Session, username, role string) (*models.User, error) {
	return call[models.User](ctx, c, s, request{
		method:   http.MethodPost,
		path:     userPath(username, "roles"),
		body:     models.RoleRequest{Role: role},
		fallback: "Failed to grant role",
	})
}

func (c *Client) RevokeRole(ctx context.Context, s *Session, username, role string) (*models.User, error) {
	return call[models.User](ctx, c, s, request{
		method:   http.MethodDelete,
		path:     userPath(username, "roles", url.PathEscape(role)),
		fallback: "Failed to revoke role",
	})
}

// UpdateRoles replaces the complete role set in one call
func (c *Client) UpdateRoles(ctx context.Context, s *Session, username string, roles []string) (*models.User, error) {
	return call[models.User](ctx, c, s, request{
		method:   http.MethodPut,
		path:     userPath(username, "roles"),
		body:     models.ReplaceRolesRequest{Roles: roles},
		fallback: "Failed to update roles",
	})
}

func (c *Client) DeleteUser(ctx context.Context, s *Session, username string) error {
	return c.exec(ctx, s, request{method: http.MethodDelete, path: userPath(username), fallback: "Failed to delete user"})
}

func (c *Client) Me(ctx context.Context, s *Session) (*models.User, error) {
	return call[models.User](ctx, c, s, request{method: http.MethodGet, path: "/users/me", fallback: "Failed to load profile"})
}

func (c *Client) ChangePassword(ctx context.Context, s *Session, current, next string) error {
	return c.exec(ctx, s, request{
		method:   http.MethodPut,
		path:     "/users/me/password",
		body:     models.ChangePasswordRequest{CurrentPassword: current, NewPassword: next},
		fallback: "Failed to change password",
	})
}

// ===== TESTS =====

type TestListOptions struct {
	PageOptions
	Name              string
	SemesterSubjectID string
	ClassID           string
}

func (c *Client) ListTests(ctx context.Context, s *Session, opts TestListOptions) (*models.Page[models.Test], error) {
	q := opts.values()
	setIf(q, "name", opts.Name)
	setIf(q, "semesterSubjectId", opts.SemesterSubjectID)
	setIf(q, "classId", opts.ClassID)
	return call[models.Page[models.Test]](ctx, c, s, request{method: http.MethodGet, path: "/tests", query: q, fallback: "Failed to load tests"})
}

func (c *Client) GetTest(ctx context.Context, s *Session, id string) (*models.Test, error) {
	return call[models.Test](ctx, c, s, request{method: http.MethodGet, path: "/tests/" + url.PathEscape(id), fallback: "Failed to load test"})
}

func (c *Client) CreateTest(ctx context.Context, s *Session, req *models.CreateTestRequest) (*models.Test, error) {
	return call[models.Test](ctx, c, s, request{method: http.MethodPost, path: "/tests", body: req, fallback: "Failed to create test"})
}

func (c *Client) UpdateTest(ctx context.Context, s *Session, id string, req *models.UpdateTestRequest) (*models.Test, error) {
	return call[models.Test](ctx, c, s, request{method: http.MethodPut, path: "/tests/" + url.PathEscape(id), body: req, fallback: "Failed to update test"})
}

func (c *Client) DeleteTest(ctx context.Context, s *Session, id string) error {
	return c.exec(ctx, s, request{method: http.MethodDelete, path: "/tests/" + url.PathEscape(id), fallback: "Failed to delete test"})
}

// ===== GRADES =====

type GradeListOptions struct {
	PageOptions
	StudentID       string
	TestID          string
	StudentUsername string
	TestName        string
	ValueMin        *float64
	ValueMax        *float64
}

func (o GradeListOptions) values() url.Values {
	q := o.PageOptions.values()
	setIf(q, "studentId", o.StudentID)
	setIf(q, "testId", o.TestID)
	setIf(q, "studentUsername", o.StudentUsername)
	setIf(q, "testName", o.TestName)
	setFloat(q, "valueMin", o.ValueMin)
	setFloat(q, "valueMax", o.ValueMax)
	return q
}

func (c *Client) ListGrades(ctx context.Context, s *Session, opts GradeListOptions) (*models.Page[models.Grade], error) {
	return call[models.Page[models.Grade]](ctx, c, s, request{method: http.MethodGet, path: "/grades", query: opts.values(), fallback: "Failed to load grades"})
}

func (c *Client) ListGradeViews(ctx context.Context, s *Session, opts GradeListOptions) (*models.Page[models.GradeView], error) {
	return call[models.Page[models.GradeView]](ctx, c, s, request{method: http.MethodGet, path: "/grades/view", query: opts.values(), fallback: "Failed to load grades"})
}

// ListOwnGradeViews lists the caller's grades; authored lists what an admin recorded instead
func (c *Client) ListOwnGradeViews(ctx context.Context, s *Session, opts GradeListOptions, authored bool) (*models.Page[models.GradeView], error) {
	q := opts.values()
	if authored {
		q.Set("authored", "true")
	}
	return call[models.Page[models.GradeView]](ctx, c, s, request{method: http.MethodGet, path: "/grades/view/own", query: q, fallback: "Failed to load grades"})
}

// ExportGradeViews downloads the xlsx export of the matching grade views
func (c *Client) ExportGradeViews(ctx context.Context, s *Session, opts GradeListOptions) ([]byte, error) {
	_, data, err := c.send(ctx, s, request{method: http.MethodGet, path: "/grades/view/export", query: opts.values(), fallback: "Failed to export grades"})
	return data, err
}

func (c *Client) GetGrade(ctx context.Context, s *Session, id string) (*models.Grade, error) {
	return call[models.Grade](ctx, c, s, request{method: http.MethodGet, path: "/grades/" + url.PathEscape(id), fallback: "Failed to load grade"})
}

func (c *Client) CreateGrade(ctx context.Context, s *Session, req *models.CreateGradeRequest) (*models.Grade, error) {
	return call[models.Grade](ctx, c, s, request{method: http.MethodPost, path: "/grades", body: req, fallback: "Failed to save grade"})
}

func (c *Client) UpdateGrade(ctx context.Context, s *Session, id string, req *models.UpdateGradeRequest) (*models.Grade, error) {
	return call[models.Grade](ctx, c, s, request{method: http.MethodPut, path: "/grades/" + url.PathEscape(id), body: req, fallback: "Failed to update grade"})
}

func (c *Client) DeleteGrade(ctx context.Context, s *Session, id string) error {
	return c.exec(ctx, s, request{method: http.MethodDelete, path: "/grades/" + url.PathEscape(id), fallback: "Failed to delete grade"})
}

func semesterQuery(studentID string) url.Values {
	q := url.Values{}
	setIf(q, "studentId", studentID)
	return q
}

func (c *Client) SemesterResults(ctx context.Context, s *Session, semesterID, studentID string) ([]models.StudentSemesterResult, error) {
	out, err := call[[]models.StudentSemesterResult](ctx, c, s, request{
		method:   http.MethodGet,
		path:     "/grades/semesters/" + url.PathEscape(semesterID) + "/results",
		query:    semesterQuery(studentID),
		fallback: "Failed to load semester results",
	})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (c *Client) SemesterReport(ctx context.Context, s *Session, semesterID, studentID string) ([]byte, error) {
	_, data, err := c.send(ctx, s, request{
		method:   http.MethodGet,
		path:     "/grades/semesters/" + url.PathEscape(semesterID) + "/report",
		query:    semesterQuery(studentID),
		fallback: "Failed to load semester report",
	})
	return data, err
}

// ===== CATALOG =====

func listCatalog[T any](ctx context.Context, c *Client, s *Session, path, noun string, opts PageOptions) (*models.Page[T], error) {
	return call[models.Page[T]](ctx, c, s, request{method: http.MethodGet, path: path, query: opts.values(), fallback: "Failed to load " + noun})
}

func getCatalog[T any](ctx context.Context, c *Client, s *Session, path, noun, id string) (*T, error) {
	return call[T](ctx, c, s, request{method: http.MethodGet, path: path + "/" + url.PathEscape(id), fallback: "Failed to load " + noun})
}

func saveCatalog[T any](ctx context.Context, c *Client, s *Session, path, noun, id string, body any) (*T, error) {
	r := request{method: http.MethodPost, path: path, body: body, fallback: "Failed to save " + noun}
	if id != "" {
		r.method = http.MethodPut
		r.path = path + "/" + url.PathEscape(id)
	}
	return call[T](ctx, c, s, r)
}

func (c *Client) deleteCatalog(ctx context.Context, s *Session, path, noun, id string) error {
	return c.exec(ctx, s, request{method: http.MethodDelete, path: path + "/" + url.PathEscape(id), fallback: "Failed to delete " + noun})
}

func (c *Client) ListSubjects(ctx context.Context, s *Session, opts PageOptions) (*models.Page[models.Subject], error) {
	return listCatalog[models.Subject](ctx, c, s, "/subjects", "subjects", opts)
}

func (c *Client) GetSubject(ctx context.Context, s *Session, id string) (*models.Subject, error) {
	return getCatalog[models.Subject](ctx, c, s, "/subjects", "subject", id)
}

// SaveSubject creates the subject when id is empty and updates it otherwise
func (c *Client) SaveSubject(ctx context.Context, s *Session, id string, req *models.SubjectRequest) (*models.Subject, error) {
	return saveCatalog[models.Subject](ctx, c, s, "/subjects", "subject", id, req)
}

func (c *Client) DeleteSubject(ctx context.Context, s *Session, id string) error {
	return c.deleteCatalog(ctx, s, "/subjects", "subject", id)
}

func (c *Client) ListSemesters(ctx context.Context, s *Session, opts PageOptions) (*models.Page[models.Semester], error) {
	return listCatalog[models.Semester](ctx, c, s, "/semesters", "semesters", opts)
}

func (c *Client) GetSemester(ctx context.Context, s *Session, id string) (*models.Semester, error) {
	return getCatalog[models.Semester](ctx, c, s, "/semesters", "semester", id)
}

func (c *Client) SaveSemester(ctx context.Context, s *Session, id string, req *models.SemesterRequest) (*models.Semester, error) {
	return saveCatalog[models.Semester](ctx, c, s, "/semesters", "semester", id, req)
}

func (c *Client) DeleteSemester(ctx context.Context, s *Session, id string) error {
	return c.deleteCatalog(ctx, s, "/semesters", "semester", id)
}

func (c *Client) ListSemesterSubjects(ctx context.Context, s *Session, opts PageOptions) (*models.Page[models.SemesterSubject], error) {
	return listCatalog[models.SemesterSubject](ctx, c, s, "/semester-subjects", "semester subjects", opts)
}

func (c *Client) GetSemesterSubject(ctx context.Context, s *Session, id string) (*models.SemesterSubject, error) {
	return getCatalog[models.SemesterSubject](ctx, c, s, "/semester-subjects", "semester subject", id)
}

func (c *Client) SaveSemesterSubject(ctx context.Context, s *Session, id string, req *models.SemesterSubjectRequest) (*models.SemesterSubject, error) {
	return saveCatalog[models.SemesterSubject](ctx, c, s, "/semester-subjects", "semester subject", id, req)
}

func (c *Client) DeleteSemesterSubject(ctx context.Context, s *Session, id string) error {
	return c.deleteCatalog(ctx, s, "/semester-subjects", "semester subject", id)
}

func (c *Client) ListClasses(ctx context.Context, s *Session, opts PageOptions) (*models.Page[models.SchoolClass], error) {
	return listCatalog[models.SchoolClass](ctx, c, s, "/classes", "classes", opts)
}

func (c *Client) GetClass(ctx context.Context, s *Session, id string) (*models.SchoolClass, error) {
	return getCatalog[models.SchoolClass](ctx, c, s, "/classes", "class", id)
}

func (c *Client) SaveClass(ctx context.Context, s *Session, id string, req *models.SchoolClassRequest) (*models.SchoolClass, error) {
	return saveCatalog[models.SchoolClass](ctx, c, s, "/classes", "class", id, req)
}

func (c *Client) DeleteClass(ctx context.Context, s *Session, id string) error {
	return c.deleteCatalog(ctx, s, "/classes", "class", id)
}
