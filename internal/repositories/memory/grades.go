package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

var gradeComparators = comparators[models.Grade]{
	"value":     func(a, b *models.Grade) int { return compareFloat(a.Value, b.Value) },
	"weight":    func(a, b *models.Grade) int { return compareFloat(a.Weight, b.Weight) },
	"comment":   func(a, b *models.Grade) int { return compareStringPtr(a.Comment, b.Comment) },
	"studentId": func(a, b *models.Grade) int { return strings.Compare(a.StudentID, b.StudentID) },
	"testId":    func(a, b *models.Grade) int { return compareStringPtr(a.TestID, b.TestID) },
	"createdOn": func(a, b *models.Grade) int { return compareTime(a.CreatedAt, b.CreatedAt) },
}

var gradeViewComparators = comparators[models.GradeView]{
	"value":           func(a, b *models.GradeView) int { return compareFloat(a.Value, b.Value) },
	"weight":          func(a, b *models.GradeView) int { return compareFloat(a.Weight, b.Weight) },
	"comment":         func(a, b *models.GradeView) int { return compareStringPtr(a.Comment, b.Comment) },
	"studentUsername": func(a, b *models.GradeView) int { return strings.Compare(a.StudentUsername, b.StudentUsername) },
	"testName":        func(a, b *models.GradeView) int { return compareStringPtr(a.TestName, b.TestName) },
	"createdOn":       func(a, b *models.GradeView) int { return compareTime(a.CreatedOn, b.CreatedOn) },
}

type GradeMemory struct {
	s *Store
}

func cloneGrade(g *models.Grade) *models.Grade {
	c := *g
	return &c
}

func (r *GradeMemory) checkLinks(op string, grade *models.Grade) error {
	if _, ok := r.s.users[grade.StudentID]; !ok {
		return referenced(op)
	}
	if grade.TestID != nil {
		if _, ok := r.s.tests[*grade.TestID]; !ok {
			return referenced(op)
		}
	}
	return nil
}

func (r *GradeMemory) Create(ctx context.Context, grade *models.Grade) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := grade.BeforeCreate(nil); err != nil {
		return err
	}
	if _, ok := r.s.grades[grade.ID]; ok {
		return duplicate("failed to create grade")
	}
	if err := r.checkLinks("failed to create grade", grade); err != nil {
		return err
	}

	now := r.s.now()
	grade.CreatedAt, grade.UpdatedAt = now, now
	r.s.grades[grade.ID] = cloneGrade(grade)
	return nil
}

// Update keeps the owning student, the author and the creation time
func (r *GradeMemory) Update(ctx context.Context, grade *models.Grade) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.grades[grade.ID]
	if !ok {
		return notFound("failed to update grade")
	}
	grade.StudentID = existing.StudentID
	grade.CreatedBy = existing.CreatedBy
	grade.CreatedAt = existing.CreatedAt
	if err := r.checkLinks("failed to update grade", grade); err != nil {
		return err
	}

	grade.UpdatedAt = r.s.now()
	r.s.grades[grade.ID] = cloneGrade(grade)
	return nil
}

func (r *GradeMemory) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.grades[id]; !ok {
		return notFound("failed to delete grade")
	}
	delete(r.s.grades, id)
	return nil
}

func (r *GradeMemory) GetByID(ctx context.Context, id string) (*models.Grade, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.grades[id]
	if !ok {
		return nil, notFound("failed to get grade")
	}
	return cloneGrade(g), nil
}

// view joins a stored grade with its student and test; the student always exists
func (r *GradeMemory) view(g *models.Grade) *models.GradeView {
	v := &models.GradeView{
		ID:        g.ID,
		Value:     g.Value,
		Weight:    g.Weight,
		Comment:   g.Comment,
		StudentID: g.StudentID,
		TestID:    g.TestID,
		CreatedBy: g.CreatedBy,
		CreatedOn: g.CreatedAt,
	}
	if u, ok := r.s.users[g.StudentID]; ok {
		v.StudentUsername = u.Username
	}
	if g.TestID != nil {
		if t, ok := r.s.tests[*g.TestID]; ok {
			name := t.Name
			v.TestName = &name
		}
	}
	return v
}

func (r *GradeMemory) matching(filters repositories.GradeFilters) []*models.GradeView {
	username := strings.TrimSpace(filters.StudentUsername)
	testName := strings.TrimSpace(filters.TestName)

	var out []*models.GradeView
	for _, g := range r.s.grades {
		if filters.StudentID != nil && g.StudentID != *filters.StudentID {
			continue
		}
		if filters.TestID != nil && (g.TestID == nil || *g.TestID != *filters.TestID) {
			continue
		}
		if filters.CreatedBy != nil && g.CreatedBy != *filters.CreatedBy {
			continue
		}
		if filters.ValueMin != nil && g.Value < *filters.ValueMin {
			continue
		}
		if filters.ValueMax != nil && g.Value > *filters.ValueMax {
			continue
		}
		v := r.view(g)
		if username != "" && !containsFold(v.StudentUsername, username) {
			continue
		}
		if testName != "" && !containsFoldPtr(v.TestName, testName) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (r *GradeMemory) List(ctx context.Context, filters repositories.GradeFilters) ([]*models.Grade, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	views := r.matching(filters)
	grades := make([]*models.Grade, 0, len(views))
	for _, v := range views {
		grades = append(grades, cloneGrade(r.s.grades[v.ID]))
	}

	items, total := sortAndPage(grades, filters.Page, gradeComparators, func(g *models.Grade) string { return g.ID })
	return items, total, nil
}

func (r *GradeMemory) ListView(ctx context.Context, filters repositories.GradeFilters) ([]*models.GradeView, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items, total := sortAndPage(r.matching(filters), filters.Page, gradeViewComparators,
		func(v *models.GradeView) string { return v.ID })
	return items, total, nil
}

// SemesterRows resolves each grade through its test, or the test's class, to a semester subject
func (r *GradeMemory) SemesterRows(ctx context.Context, semesterID string, studentID *string) ([]models.SemesterGradeRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	type row struct {
		models.SemesterGradeRow
		grade *models.Grade
	}
	var rows []row
	for _, g := range r.s.grades {
		if g.TestID == nil || (studentID != nil && g.StudentID != *studentID) {
			continue
		}
		test, ok := r.s.tests[*g.TestID]
		if !ok {
			continue
		}
		ssID := test.SemesterSubjectID
		if ssID == nil && test.ClassID != nil {
			if class, ok := r.s.classes[*test.ClassID]; ok {
				ssID = &class.SemesterSubjectID
			}
		}
		if ssID == nil {
			continue
		}
		ss, ok := r.s.semesterSubjects[*ssID]
		if !ok || ss.SemesterID != semesterID {
			continue
		}
		subject, ok := r.s.subjects[ss.SubjectID]
		if !ok {
			continue
		}
		student, ok := r.s.users[g.StudentID]
		if !ok {
			continue
		}
		rows = append(rows, row{
			SemesterGradeRow: models.SemesterGradeRow{
				StudentID:       g.StudentID,
				StudentUsername: student.Username,
				SubjectID:       subject.ID,
				SubjectName:     subject.Name,
				Value:           g.Value,
				Weight:          g.Weight,
			},
			grade: g,
		})
	}

	slices.SortFunc(rows, func(a, b row) int {
		if c := strings.Compare(a.StudentUsername, b.StudentUsername); c != 0 {
			return c
		}
		if c := strings.Compare(a.SubjectName, b.SubjectName); c != 0 {
			return c
		}
		if c := compareTime(a.grade.CreatedAt, b.grade.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.grade.ID, b.grade.ID)
	})

	out := make([]models.SemesterGradeRow, 0, len(rows))
	for _, rw := range rows {
		out = append(out, rw.SemesterGradeRow)
	}
	return out, nil
}
