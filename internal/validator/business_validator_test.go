package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestValidator_RegisterRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		req       models.RegisterRequest
		wantField string
	}{
		{"valid", models.RegisterRequest{Username: "alice", Password: "pw123456"}, ""},
		{"short username", models.RegisterRequest{Username: "al", Password: "pw123456"}, "username"},
		{"username with space", models.RegisterRequest{Username: "al ice", Password: "pw123456"}, "username"},
		{"short password", models.RegisterRequest{Username: "alice", Password: "pw"}, "password"},
		{"bad email", models.RegisterRequest{Username: "alice", Password: "pw123456", Email: ptr("nope")}, "email"},
		{"bad date", models.RegisterRequest{Username: "alice", Password: "pw123456", DateOfBirth: ptr("01.02.2000")}, "dateOfBirth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var ve ValidationErrors
			require.True(t, errors.As(err, &ve), "expected ValidationErrors, got %v", err)
			require.Len(t, ve, 1)
			assert.Equal(t, tt.wantField, ve[0].Field)
			assert.NotEmpty(t, ve[0].Message)
		})
	}
}

func TestValidator_PasswordValueIsRedacted(t *testing.T) {
	v := New()

	err := v.Validate(&models.RegisterRequest{Username: "alice", Password: "short"})

	var ve ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Nil(t, ve[0].Value)
}

func TestValidator_GradeRules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&models.CreateGradeRequest{Value: ptr(5.5)}))
	assert.NoError(t, v.Validate(&models.CreateGradeRequest{Value: ptr(0.0), Weight: ptr(2.0)}))

	assert.Error(t, v.Validate(&models.CreateGradeRequest{}), "value is required")
	assert.Error(t, v.Validate(&models.CreateGradeRequest{Value: ptr(-1.0)}))
	assert.Error(t, v.Validate(&models.CreateGradeRequest{Value: ptr(1000.0)}))
	assert.Error(t, v.Validate(&models.CreateGradeRequest{Value: ptr(4.0), Weight: ptr(0.0)}))
	assert.Error(t, v.Validate(&models.CreateGradeRequest{Value: ptr(4.0), StudentID: ptr("not-a-uuid")}))
}

func TestValidator_RoleNames(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&models.RoleRequest{Role: "ROLE_ADMIN"}))
	assert.NoError(t, v.Validate(&models.RoleRequest{Role: "admin"}))
	assert.Error(t, v.Validate(&models.RoleRequest{Role: "ROLE_ROOT"}))

	assert.Error(t, v.Validate(&models.ReplaceRolesRequest{Roles: []string{}}))
	assert.NoError(t, v.Validate(&models.ReplaceRolesRequest{Roles: []string{"ROLE_USER", "ROLE_ADMIN"}}))
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Equal(t, "validation failed", ValidationErrors{}.Error())
	assert.Equal(t, "validation failed: name is required", NewValidationError("name", "required", "name is required").Error())
}
