package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

// invalid_text_representation: a malformed uuid compared against a uuid column
const pgInvalidTextRepresentation = "22P02"

// sortColumns maps API sort fields to whitelisted SQL columns
type sortColumns map[string]string

// translateError maps gorm errors onto the repository error set
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, repositories.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, repositories.ErrDuplicate)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w", op, repositories.ErrReferenced)
	case errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation:
		// no row can carry an id that does not parse
		return fmt.Errorf("%s: %w", op, repositories.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection.
// Unknown sort fields are skipped; idColumn is always appended as the final tiebreak.
func ApplyPaginationAndSort(query *gorm.DB, page repositories.PageRequest, allowed sortColumns, idColumn string) *gorm.DB {
	page = page.Normalize()

	for _, order := range page.Sort {
		column, ok := allowed[order.Field]
		if !ok {
			continue
		}
		if order.Desc {
			query = query.Order(column + " DESC")
		} else {
			query = query.Order(column + " ASC")
		}
	}
	query = query.Order(idColumn + " ASC")

	return query.Limit(page.Limit()).Offset(page.Offset())
}

// containsPattern builds an ILIKE pattern matching s anywhere, with LIKE wildcards escaped
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
