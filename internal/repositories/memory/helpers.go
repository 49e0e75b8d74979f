package memory

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

// comparators maps API sort fields to ascending comparisons
type comparators[T any] map[string]func(a, b *T) int

// sortAndPage orders items by the requested keys (unknown keys skipped, id as
// final tiebreak) and cuts out the requested page.
func sortAndPage[T any](items []*T, page repositories.PageRequest, cmps comparators[T], id func(*T) string) ([]*T, int64) {
	page = page.Normalize()

	slices.SortStableFunc(items, func(a, b *T) int {
		for _, order := range page.Sort {
			fn, ok := cmps[order.Field]
			if !ok {
				continue
			}
			c := fn(a, b)
			if order.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return strings.Compare(id(a), id(b))
	})

	total := int64(len(items))
	start := min(page.Offset(), len(items))
	end := min(start+page.Limit(), len(items))
	return items[start:end], total
}

// nil sorts after every value, as NULLs do in an ascending postgres ORDER BY
func comparePtr[V any](a, b *V, fn func(x, y V) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return fn(*a, *b)
	}
}

func compareStringPtr(a, b *string) int {
	return comparePtr(a, b, strings.Compare)
}

func compareDatePtr(a, b *models.Date) int {
	return comparePtr(a, b, compareDate)
}

func compareDate(a, b models.Date) int {
	return a.Time().Compare(b.Time())
}

func compareTime(a, b time.Time) int {
	return a.Compare(b)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func compareFloat(a, b float64) int {
	return cmp.Compare(a, b)
}

// containsFold is the ILIKE '%needle%' equivalent
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsFoldPtr(haystack *string, needle string) bool {
	return haystack != nil && containsFold(*haystack, needle)
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, repositories.ErrNotFound)
}

func duplicate(op string) error {
	return fmt.Errorf("%s: %w", op, repositories.ErrDuplicate)
}

func referenced(op string) error {
	return fmt.Errorf("%s: %w", op, repositories.ErrReferenced)
}
