// Package memory is an in-process implementation of the repository interfaces.
// It mirrors the constraints of the postgres schema: unique keys, foreign keys,
// ON DELETE CASCADE for a student's grades and ON DELETE SET NULL for test links.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

// Store holds every table. Stored rows are never mutated in place; each write
// stores a fresh copy so a transaction snapshot is a shallow copy of the maps.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	now  func() time.Time

	users            map[string]*models.User
	tests            map[string]*models.Test
	grades           map[string]*models.Grade
	subjects         map[string]*models.Subject
	semesters        map[string]*models.Semester
	semesterSubjects map[string]*models.SemesterSubject
	classes          map[string]*models.SchoolClass
}

type snapshot struct {
	users            map[string]*models.User
	tests            map[string]*models.Test
	grades           map[string]*models.Grade
	subjects         map[string]*models.Subject
	semesters        map[string]*models.Semester
	semesterSubjects map[string]*models.SemesterSubject
	classes          map[string]*models.SchoolClass
}

// Repository is the memory-backed repositories.Repository
type Repository struct {
	store *Store

	user            *UserMemory
	test            *TestMemory
	grade           *GradeMemory
	subject         *catalogTable[models.Subject]
	semester        *catalogTable[models.Semester]
	semesterSubject *catalogTable[models.SemesterSubject]
	schoolClass     *catalogTable[models.SchoolClass]
}

func NewRepository() *Repository {
	s := &Store{
		now:              func() time.Time { return time.Now().UTC() },
		users:            map[string]*models.User{},
		tests:            map[string]*models.Test{},
		grades:           map[string]*models.Grade{},
		subjects:         map[string]*models.Subject{},
		semesters:        map[string]*models.Semester{},
		semesterSubjects: map[string]*models.SemesterSubject{},
		classes:          map[string]*models.SchoolClass{},
	}

	return &Repository{
		store:           s,
		user:            &UserMemory{s: s},
		test:            &TestMemory{s: s},
		grade:           &GradeMemory{s: s},
		subject:         newSubjectTable(s),
		semester:        newSemesterTable(s),
		semesterSubject: newSemesterSubjectTable(s),
		schoolClass:     newSchoolClassTable(s),
	}
}

func (r *Repository) User() repositories.UserRepository {
	return r.user
}

func (r *Repository) Test() repositories.TestRepository {
	return r.test
}

func (r *Repository) Grade() repositories.GradeRepository {
	return r.grade
}

func (r *Repository) Subject() repositories.CatalogRepository[models.Subject] {
	return r.subject
}

func (r *Repository) Semester() repositories.CatalogRepository[models.Semester] {
	return r.semester
}

func (r *Repository) SemesterSubject() repositories.CatalogRepository[models.SemesterSubject] {
	return r.semesterSubject
}

func (r *Repository) SchoolClass() repositories.CatalogRepository[models.SchoolClass] {
	return r.schoolClass
}

// WithTransaction serializes transactions and restores the pre-transaction
// state when fn fails or panics.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) (err error) {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	snap := r.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			r.store.restore(snap)
			panic(p)
		}
		if err != nil {
			r.store.restore(snap)
		}
	}()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction not started: %w", err)
	}
	return fn(r)
}

func (r *Repository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *Repository) Close() error {
	return nil
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		users:            maps.Clone(s.users),
		tests:            maps.Clone(s.tests),
		grades:           maps.Clone(s.grades),
		subjects:         maps.Clone(s.subjects),
		semesters:        maps.Clone(s.semesters),
		semesterSubjects: maps.Clone(s.semesterSubjects),
		classes:          maps.Clone(s.classes),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.tests = snap.tests
	s.grades = snap.grades
	s.subjects = snap.subjects
	s.semesters = snap.semesters
	s.semesterSubjects = snap.semesterSubjects
	s.classes = snap.classes
}

// RepositoryManager adapts the memory repository to the repository lifecycle
type RepositoryManager struct {
	repo *Repository
}

func NewRepositoryManager() repositories.RepositoryManager {
	return &RepositoryManager{}
}

func (rm *RepositoryManager) Initialize() error {
	rm.repo = NewRepository()
	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	if rm.repo == nil {
		return nil
	}
	return rm.repo
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManager) Shutdown(context.Context) error {
	return nil
}
