package memory

import (
	"context"
	"strings"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

var testComparators = comparators[models.Test]{
	"name":      func(a, b *models.Test) int { return strings.Compare(a.Name, b.Name) },
	"date":      func(a, b *models.Test) int { return compareDatePtr(a.Date, b.Date) },
	"createdAt": func(a, b *models.Test) int { return compareTime(a.CreatedAt, b.CreatedAt) },
}

type TestMemory struct {
	s *Store
}

func cloneTest(t *models.Test) *models.Test {
	c := *t
	return &c
}

// checkLinks must be called with the store lock held
func (r *TestMemory) checkLinks(op string, test *models.Test) error {
	if test.SemesterSubjectID != nil {
		if _, ok := r.s.semesterSubjects[*test.SemesterSubjectID]; !ok {
			return referenced(op)
		}
	}
	if test.ClassID != nil {
		if _, ok := r.s.classes[*test.ClassID]; !ok {
			return referenced(op)
		}
	}
	return nil
}

func (r *TestMemory) Create(ctx context.Context, test *models.Test) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := test.BeforeCreate(nil); err != nil {
		return err
	}
	if _, ok := r.s.tests[test.ID]; ok {
		return duplicate("failed to create test")
	}
	if err := r.checkLinks("failed to create test", test); err != nil {
		return err
	}

	now := r.s.now()
	test.CreatedAt, test.UpdatedAt = now, now
	r.s.tests[test.ID] = cloneTest(test)
	return nil
}

func (r *TestMemory) Update(ctx context.Context, test *models.Test) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tests[test.ID]
	if !ok {
		return notFound("failed to update test")
	}
	if err := r.checkLinks("failed to update test", test); err != nil {
		return err
	}

	test.CreatedBy = existing.CreatedBy
	test.CreatedAt = existing.CreatedAt
	test.UpdatedAt = r.s.now()
	r.s.tests[test.ID] = cloneTest(test)
	return nil
}

// Delete removes the test; grades referring to it keep existing without a test
func (r *TestMemory) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tests[id]; !ok {
		return notFound("failed to delete test")
	}
	delete(r.s.tests, id)
	for gid, g := range r.s.grades {
		if g.TestID != nil && *g.TestID == id {
			c := cloneGrade(g)
			c.TestID = nil
			r.s.grades[gid] = c
		}
	}
	return nil
}

func (r *TestMemory) GetByID(ctx context.Context, id string) (*models.Test, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tests[id]
	if !ok {
		return nil, notFound("failed to get test")
	}
	return cloneTest(t), nil
}

func (r *TestMemory) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	name := strings.TrimSpace(filters.Name)
	var out []*models.Test
	for _, t := range r.s.tests {
		if name != "" && !containsFold(t.Name, name) {
			continue
		}
		if filters.SemesterSubjectID != nil && (t.SemesterSubjectID == nil || *t.SemesterSubjectID != *filters.SemesterSubjectID) {
			continue
		}
		if filters.ClassID != nil && (t.ClassID == nil || *t.ClassID != *filters.ClassID) {
			continue
		}
		out = append(out, cloneTest(t))
	}

	items, total := sortAndPage(out, filters.Page, testComparators, func(t *models.Test) string { return t.ID })
	return items, total, nil
}
