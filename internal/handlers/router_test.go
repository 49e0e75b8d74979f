package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/gradebook-service/internal/handlers"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/testutil"
)

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return &testServer{router: testutil.NewRouter(t, testutil.WithMetrics())}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/public/auth/login", "", models.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func (s *testServer) register(t *testing.T, username string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/public/auth/register", "", models.RegisterRequest{Username: username, Password: "student-password"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/public/auth/register", "", models.RegisterRequest{Username: "alice", Password: "student-password"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Authorization"), "Bearer "))
	resp := decode[models.AuthResponse](t, w)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, []string{models.RoleUser}, resp.Roles)

	w = s.do(t, http.MethodPost, "/public/auth/register", "", models.RegisterRequest{Username: "alice", Password: "student-password"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/public/auth/login", "", models.LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/public/auth/register", "", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, handlers.ErrKindValidation, decode[handlers.ErrorResponse](t, w).Error)
}

func TestAuthenticationRequired(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/tests", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/tests", "not-a-token", nil).Code)

	token := s.register(t, "alice")
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/tests", token, nil).Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	student := s.register(t, "alice")
	admin := s.login(t, testutil.AdminUsername, testutil.AdminPassword)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/admin/users", student, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/admin/users/active", student, nil).Code)

	w := s.do(t, http.MethodGet, "/admin/users?q=ali", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.Page[models.User]](t, w)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "alice", page.Content[0].Username)

	w = s.do(t, http.MethodPost, "/admin/users/alice/roles", admin, models.RoleRequest{Role: "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, []string(decode[models.User](t, w).Roles), models.RoleAdmin)

	w = s.do(t, http.MethodPut, "/admin/users/alice/active?active=maybe", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/admin/users/alice", admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/admin/users/alice", admin, nil).Code)
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)
	student := s.register(t, "alice")
	admin := s.login(t, testutil.AdminUsername, testutil.AdminPassword)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/subjects", student, models.SubjectRequest{Name: "Math"}).Code)

	w := s.do(t, http.MethodPost, "/subjects", admin, models.SubjectRequest{Name: "Math"})
	require.Equal(t, http.StatusCreated, w.Code)
	subject := decode[models.Subject](t, w)

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/subjects", admin, models.SubjectRequest{Name: "Math"}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/subjects/"+subject.ID, student, nil).Code)

	w = s.do(t, http.MethodPost, "/semesters", admin, models.SemesterRequest{Name: "Winter", StartDate: "2025-03-01", EndDate: "2025-01-01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/subjects", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[models.Page[models.Subject]](t, w).TotalElements)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/subjects/"+subject.ID, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/subjects/"+subject.ID, student, nil).Code)
}

func TestGradeRoutes(t *testing.T) {
	s := newTestServer(t)
	student := s.register(t, "alice")
	other := s.register(t, "bob")
	admin := s.login(t, testutil.AdminUsername, testutil.AdminPassword)

	w := s.do(t, http.MethodPost, "/grades", student, map[string]any{"value": 2.5, "comment": "quiz"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	grade := decode[models.Grade](t, w)
	assert.Equal(t, 1.0, grade.Weight)

	w = s.do(t, http.MethodGet, "/grades/view", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	views := decode[models.Page[models.GradeView]](t, w)
	require.Len(t, views.Content, 1)
	assert.Equal(t, "alice", views.Content[0].StudentUsername)

	w = s.do(t, http.MethodGet, "/grades/view", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[models.Page[models.GradeView]](t, w).Content)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/grades?valueMin=low", student, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/grades/"+grade.ID, other, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, "/grades/"+grade.ID, student, map[string]any{"value": 1}).Code)

	w = s.do(t, http.MethodPut, "/grades/"+grade.ID, admin, map[string]any{"value": 1.5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.5, decode[models.Grade](t, w).Value)

	w = s.do(t, http.MethodGet, "/grades/view/export", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, handlers.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, w.Body.Bytes())

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/grades/"+grade.ID, student, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/grades/"+grade.ID, admin, nil).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/public/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "UP", decode[models.HealthResponse](t, w).Status)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `gradebook_http_requests_total{method="GET",route="/public/health",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/grades", nil)
	req.Header.Set("Origin", "http://localhost:4200")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Authorization")
}

func TestCORSMiddleware_AllowList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers.CORSMiddleware([]string{"https://grades.example.org"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		origin          string
		wantOrigin      string
		wantCredentials string
	}{
		{"https://grades.example.org", "https://grades.example.org", "true"},
		{"https://evil.example.com", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredentials, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestPagingBounds(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice")

	tests := []struct {
		path string
		want int
	}{
		{"/tests?page=9223372036854775807&size=2", http.StatusBadRequest},
		{"/admin/users/active?page=4611686018427387904&size=2", http.StatusBadRequest},
		{"/grades/view?page=-1", http.StatusBadRequest},
		{"/tests?page=2147483&size=1000", http.StatusOK},
		{"/subjects?page=3&size=5000", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, token, nil)
			require.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.want == http.StatusBadRequest {
				assert.Equal(t, handlers.ErrKindBadRequest, decode[handlers.ErrorResponse](t, w).Error)
			}
		})
	}
}

func TestMalformedIDs(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, testutil.AdminUsername, testutil.AdminPassword)

	notFound := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/grades/not-a-uuid"},
		{http.MethodDelete, "/grades/abc"},
		{http.MethodGet, "/tests/abc"},
		{http.MethodDelete, "/tests/abc"},
		{http.MethodGet, "/subjects/abc"},
		{http.MethodDelete, "/classes/abc"},
		{http.MethodGet, "/grades/semesters/abc/results"},
	}
	for _, tt := range notFound {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, admin, nil)
			require.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, handlers.ErrKindNotFound, decode[handlers.ErrorResponse](t, w).Error)
		})
	}

	badFilters := []string{
		"/grades?studentId=abc",
		"/grades/view?testId=abc",
		"/tests?classId=abc",
		"/tests?semesterSubjectId=abc",
	}
	for _, path := range badFilters {
		t.Run(path, func(t *testing.T) {
			w := s.do(t, http.MethodGet, path, admin, nil)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, handlers.ErrKindBadRequest, decode[handlers.ErrorResponse](t, w).Error)
		})
	}
}
