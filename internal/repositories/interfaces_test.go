package repositories

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSort(t *testing.T) {
	got := ParseSort([]string{"value,desc", "studentUsername", " testName , ASC ", ",desc", ""})

	assert.Equal(t, []SortOrder{
		{Field: "value", Desc: true},
		{Field: "studentUsername"},
		{Field: "testName"},
	}, got)
}

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		in         PageRequest
		wantLimit  int
		wantOffset int
	}{
		{PageRequest{}, DefaultPageSize, 0},
		{PageRequest{Page: 2, Size: 10}, 10, 20},
		{PageRequest{Page: -1, Size: 5}, 5, 0},
		{PageRequest{Page: 1, Size: 5000}, MaxPageSize, MaxPageSize},
		{PageRequest{Page: math.MaxInt, Size: 2}, 2, MaxPage * 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%+v", tt.in), func(t *testing.T) {
			assert.Equal(t, tt.wantLimit, tt.in.Limit())
			assert.Equal(t, tt.wantOffset, tt.in.Offset())
		})
	}
}

func TestTestFilters_CacheKeyIsStable(t *testing.T) {
	id := "ss-1"
	a := TestFilters{Name: "Algebra", SemesterSubjectID: &id, Page: PageRequest{Size: 10, Sort: []SortOrder{{Field: "name", Desc: true}}}}
	b := TestFilters{Name: "algebra", SemesterSubjectID: &id, Page: PageRequest{Size: 10, Sort: []SortOrder{{Field: "name", Desc: true}}}}

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), TestFilters{Name: "algebra"}.CacheKey())
}
