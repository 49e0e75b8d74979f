package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"not found", gorm.ErrRecordNotFound, repositories.ErrNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, repositories.ErrDuplicate},
		{"foreign key", gorm.ErrForeignKeyViolated, repositories.ErrReferenced},
		{"malformed uuid", fmt.Errorf("select: %w", &pgconn.PgError{Code: "22P02"}), repositories.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateError("op", tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "op:")
		})
	}

	assert.NoError(t, translateError("op", nil))

	other := errors.New("boom")
	err := translateError("op", other)
	assert.ErrorIs(t, err, other)
	assert.False(t, repositories.IsNotFoundError(err))

	check := translateError("op", &pgconn.PgError{Code: "23514"})
	assert.False(t, repositories.IsNotFoundError(check))
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%alice%", containsPattern("alice"))
	assert.Equal(t, `%50\%\_off%`, containsPattern("50%_off"))
	assert.Equal(t, `%a\\b%`, containsPattern(`a\b`))
}
