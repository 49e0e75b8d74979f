package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestClient_EndToEnd(t *testing.T) {
	srv := testutil.NewServer(t)
	ctx := context.Background()
	c := New(srv.URL)

	student := NewSession(nil)
	resp, err := c.Register(ctx, student, &models.RegisterRequest{Username: "alice", Password: "pw123456"})
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleUser}, resp.Roles)

	id, ok := student.Identity()
	require.True(t, ok)
	assert.Equal(t, "alice", id.Username)
	assert.False(t, student.IsAdmin())

	grade, err := c.CreateGrade(ctx, student, &models.CreateGradeRequest{Value: ptr(5.5)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, grade.Weight)

	admin := NewSession(nil)
	_, err = c.Login(ctx, admin, testutil.AdminUsername, testutil.AdminPassword)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	bob, err := c.CreateUser(ctx, admin, &models.CreateUserRequest{Username: "bob", Password: "pw123456"})
	require.NoError(t, err)
	_, err = c.GrantRole(ctx, admin, "bob", models.RoleAdmin)
	require.NoError(t, err)
	updated, err := c.RevokeRole(ctx, admin, "bob", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleUser}, []string(updated.Roles))

	updated, err = c.UpdateRoles(ctx, admin, "bob", []string{"ROLE_ADMIN", "ROLE_USER"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{models.RoleAdmin, models.RoleUser}, []string(updated.Roles))

	bobSession := NewSession(nil)
	_, err = c.Login(ctx, bobSession, "bob", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, mustMe(t, c, bobSession).ID)

	// alice cannot delete a grade she does not own
	bobGrade, err := c.CreateGrade(ctx, admin, &models.CreateGradeRequest{StudentID: &bob.ID, Value: ptr(2.0)})
	require.NoError(t, err)
	err = c.DeleteGrade(ctx, student, bobGrade.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	page, err := c.ListGradeViews(ctx, admin, GradeListOptions{StudentUsername: "ali"})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, grade.ID, page.Content[0].ID)

	data, err := c.ExportGradeViews(ctx, admin, GradeListOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	require.NoError(t, c.Logout(student))
	_, err = c.ListGrades(ctx, student, GradeListOptions{})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func mustMe(t *testing.T, c *Client, s *Session) *models.User {
	t.Helper()
	me, err := c.Me(context.Background(), s)
	require.NoError(t, err)
	return me
}

func TestClient_TokenFromHeader(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /public/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Authorization", "Bearer header-token")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /tests", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer header-token", r.Header.Get("Authorization"))
		assert.Equal(t, []string{"name,desc"}, r.URL.Query()["sort"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"content":[],"totalElements":0,"totalPages":0,"size":20,"number":0}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	s := NewSession(nil)
	_, err := c.Login(context.Background(), s, "alice", "pw")
	require.NoError(t, err)

	token, ok := s.Token()
	require.True(t, ok)
	assert.Equal(t, "header-token", token)

	_, err = c.ListTests(context.Background(), s, TestListOptions{PageOptions: PageOptions{Sort: []string{"name,desc"}}})
	require.NoError(t, err)
}

func TestClient_ErrorMessages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /grades", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	})
	mux.HandleFunc("DELETE /grades/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":"forbidden","message":"not your grade"}`)
	})
	mux.HandleFunc("GET /tests/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{not json")
	})
	srv := httptest.NewServer(mux)

	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.ListGrades(ctx, nil, GradeListOptions{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Failed to load grades", apiErr.Message)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)

	err = c.DeleteGrade(ctx, nil, "g1")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not your grade", apiErr.Message)

	_, err = c.GetTest(ctx, nil, "t1")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Failed to load test", apiErr.Message)
	assert.NotNil(t, errors.Unwrap(err))

	srv.Close()
	_, err = c.ListGrades(ctx, nil, GradeListOptions{})
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
	assert.Equal(t, "Failed to load grades", apiErr.Message)
	assert.NotNil(t, apiErr.Err)
}
