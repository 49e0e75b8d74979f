package memory

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

type creatable interface {
	BeforeCreate(*gorm.DB) error
}

// catalogTable is the generic CatalogRepository over one map of the store.
// The hooks run with the store lock held.
type catalogTable[T any] struct {
	s          *Store
	collection string
	rows       func(*Store) map[string]*T
	id         func(*T) string
	stamp      func(e *T, createdAt, updatedAt time.Time)
	createdAt  func(*T) time.Time
	check      func(s *Store, e *T) error // unique keys and outgoing references
	onDelete   func(s *Store, id string) error
	sorts      comparators[T]
}

func clone[T any](e *T) *T {
	c := *e
	return &c
}

func (t *catalogTable[T]) Create(ctx context.Context, entity *T) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if h, ok := any(entity).(creatable); ok {
		if err := h.BeforeCreate(nil); err != nil {
			return err
		}
	}
	rows := t.rows(t.s)
	if _, ok := rows[t.id(entity)]; ok {
		return duplicate("failed to create " + t.collection)
	}
	if err := t.check(t.s, entity); err != nil {
		return err
	}

	now := t.s.now()
	t.stamp(entity, now, now)
	rows[t.id(entity)] = clone(entity)
	return nil
}

func (t *catalogTable[T]) Update(ctx context.Context, entity *T) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	rows := t.rows(t.s)
	existing, ok := rows[t.id(entity)]
	if !ok {
		return notFound("failed to update " + t.collection)
	}
	if err := t.check(t.s, entity); err != nil {
		return err
	}

	t.stamp(entity, t.createdAt(existing), t.s.now())
	rows[t.id(entity)] = clone(entity)
	return nil
}

func (t *catalogTable[T]) Delete(ctx context.Context, id string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	rows := t.rows(t.s)
	if _, ok := rows[id]; !ok {
		return notFound("failed to delete " + t.collection)
	}
	if t.onDelete != nil {
		if err := t.onDelete(t.s, id); err != nil {
			return err
		}
	}
	delete(rows, id)
	return nil
}

func (t *catalogTable[T]) GetByID(ctx context.Context, id string) (*T, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	e, ok := t.rows(t.s)[id]
	if !ok {
		return nil, notFound("failed to get " + t.collection)
	}
	return clone(e), nil
}

func (t *catalogTable[T]) List(ctx context.Context, page repositories.PageRequest) ([]*T, int64, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	rows := t.rows(t.s)
	out := make([]*T, 0, len(rows))
	for _, e := range rows {
		out = append(out, clone(e))
	}

	items, total := sortAndPage(out, page, t.sorts, t.id)
	return items, total, nil
}

func newSubjectTable(s *Store) *catalogTable[models.Subject] {
	return &catalogTable[models.Subject]{
		s:          s,
		collection: "subject",
		rows:       func(s *Store) map[string]*models.Subject { return s.subjects },
		id:         func(e *models.Subject) string { return e.ID },
		stamp: func(e *models.Subject, c, u time.Time) {
			e.CreatedAt, e.UpdatedAt = c, u
		},
		createdAt: func(e *models.Subject) time.Time { return e.CreatedAt },
		check: func(s *Store, e *models.Subject) error {
			for _, other := range s.subjects {
				if other.ID != e.ID && other.Name == e.Name {
					return duplicate("failed to save subject")
				}
			}
			return nil
		},
		onDelete: func(s *Store, id string) error {
			for _, ss := range s.semesterSubjects {
				if ss.SubjectID == id {
					return referenced("failed to delete subject")
				}
			}
			return nil
		},
		sorts: comparators[models.Subject]{
			"name":      func(a, b *models.Subject) int { return strings.Compare(a.Name, b.Name) },
			"createdAt": func(a, b *models.Subject) int { return compareTime(a.CreatedAt, b.CreatedAt) },
		},
	}
}

func newSemesterTable(s *Store) *catalogTable[models.Semester] {
	return &catalogTable[models.Semester]{
		s:          s,
		collection: "semester",
		rows:       func(s *Store) map[string]*models.Semester { return s.semesters },
		id:         func(e *models.Semester) string { return e.ID },
		stamp: func(e *models.Semester, c, u time.Time) {
			e.CreatedAt, e.UpdatedAt = c, u
		},
		createdAt: func(e *models.Semester) time.Time { return e.CreatedAt },
		check: func(s *Store, e *models.Semester) error {
			for _, other := range s.semesters {
				if other.ID != e.ID && other.Name == e.Name {
					return duplicate("failed to save semester")
				}
			}
			return nil
		},
		onDelete: func(s *Store, id string) error {
			for _, ss := range s.semesterSubjects {
				if ss.SemesterID == id {
					return referenced("failed to delete semester")
				}
			}
			return nil
		},
		sorts: comparators[models.Semester]{
			"name":      func(a, b *models.Semester) int { return strings.Compare(a.Name, b.Name) },
			"startDate": func(a, b *models.Semester) int { return compareDate(a.StartDate, b.StartDate) },
			"endDate":   func(a, b *models.Semester) int { return compareDate(a.EndDate, b.EndDate) },
		},
	}
}

func newSemesterSubjectTable(s *Store) *catalogTable[models.SemesterSubject] {
	return &catalogTable[models.SemesterSubject]{
		s:          s,
		collection: "semester subject",
		rows:       func(s *Store) map[string]*models.SemesterSubject { return s.semesterSubjects },
		id:         func(e *models.SemesterSubject) string { return e.ID },
		stamp: func(e *models.SemesterSubject, c, u time.Time) {
			e.CreatedAt, e.UpdatedAt = c, u
		},
		createdAt: func(e *models.SemesterSubject) time.Time { return e.CreatedAt },
		check: func(s *Store, e *models.SemesterSubject) error {
			if _, ok := s.semesters[e.SemesterID]; !ok {
				return referenced("failed to save semester subject")
			}
			if _, ok := s.subjects[e.SubjectID]; !ok {
				return referenced("failed to save semester subject")
			}
			for _, other := range s.semesterSubjects {
				if other.ID != e.ID && other.SemesterID == e.SemesterID && other.SubjectID == e.SubjectID {
					return duplicate("failed to save semester subject")
				}
			}
			return nil
		},
		onDelete: func(s *Store, id string) error {
			for _, c := range s.classes {
				if c.SemesterSubjectID == id {
					return referenced("failed to delete semester subject")
				}
			}
			for tid, t := range s.tests {
				if t.SemesterSubjectID != nil && *t.SemesterSubjectID == id {
					c := cloneTest(t)
					c.SemesterSubjectID = nil
					s.tests[tid] = c
				}
			}
			return nil
		},
		sorts: comparators[models.SemesterSubject]{
			"semesterId": func(a, b *models.SemesterSubject) int { return strings.Compare(a.SemesterID, b.SemesterID) },
			"subjectId":  func(a, b *models.SemesterSubject) int { return strings.Compare(a.SubjectID, b.SubjectID) },
			"createdAt":  func(a, b *models.SemesterSubject) int { return compareTime(a.CreatedAt, b.CreatedAt) },
		},
	}
}

func newSchoolClassTable(s *Store) *catalogTable[models.SchoolClass] {
	return &catalogTable[models.SchoolClass]{
		s:          s,
		collection: "class",
		rows:       func(s *Store) map[string]*models.SchoolClass { return s.classes },
		id:         func(e *models.SchoolClass) string { return e.ID },
		stamp: func(e *models.SchoolClass, c, u time.Time) {
			e.CreatedAt, e.UpdatedAt = c, u
		},
		createdAt: func(e *models.SchoolClass) time.Time { return e.CreatedAt },
		check: func(s *Store, e *models.SchoolClass) error {
			if _, ok := s.semesterSubjects[e.SemesterSubjectID]; !ok {
				return referenced("failed to save class")
			}
			return nil
		},
		onDelete: func(s *Store, id string) error {
			for tid, t := range s.tests {
				if t.ClassID != nil && *t.ClassID == id {
					c := cloneTest(t)
					c.ClassID = nil
					s.tests[tid] = c
				}
			}
			return nil
		},
		sorts: comparators[models.SchoolClass]{
			"name":      func(a, b *models.SchoolClass) int { return strings.Compare(a.Name, b.Name) },
			"createdAt": func(a, b *models.SchoolClass) int { return compareTime(a.CreatedAt, b.CreatedAt) },
		},
	}
}
