package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

func ptr[T any](v T) *T { return &v }

func newUser(t *testing.T, repo *Repository, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "x", Active: true, Roles: []string{models.RoleUser}}
	require.NoError(t, repo.User().Create(context.Background(), u))
	return u
}

func newGrade(t *testing.T, repo *Repository, student *models.User, value float64, testID *string) *models.Grade {
	t.Helper()
	g := &models.Grade{Value: value, Weight: 1, StudentID: student.ID, TestID: testID, CreatedBy: student.ID}
	require.NoError(t, repo.Grade().Create(context.Background(), g))
	return g
}

func TestUserMemory_UniqueUsername(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	newUser(t, repo, "alice")

	err := repo.User().Create(ctx, &models.User{Username: "alice", Roles: []string{models.RoleUser}})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	exists, err := repo.User().ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := repo.User().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestUserMemory_ReturnsCopies(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	alice := newUser(t, repo, "alice")

	got, err := repo.User().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	got.Roles[0] = models.RoleAdmin
	got.Username = "mallory"

	again, err := repo.User().GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)
	assert.Equal(t, []string{models.RoleUser}, []string(again.Roles))
}

func TestUserMemory_DeleteCascadesGrades(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	alice := newUser(t, repo, "alice")
	bob := newUser(t, repo, "bob")
	newGrade(t, repo, alice, 5, nil)
	kept := newGrade(t, repo, bob, 4, nil)

	require.NoError(t, repo.User().Delete(ctx, alice.ID))

	grades, total, err := repo.Grade().List(ctx, repositories.GradeFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, kept.ID, grades[0].ID)

	assert.ErrorIs(t, repo.User().Delete(ctx, alice.ID), repositories.ErrNotFound)
}

func TestUserMemory_ListFiltersAndSorts(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	for _, name := range []string{"carol", "alice", "bob"} {
		newUser(t, repo, name)
	}
	bob, err := repo.User().GetByUsername(ctx, "bob")
	require.NoError(t, err)
	bob.Active = false
	require.NoError(t, repo.User().Update(ctx, bob))

	users, total, err := repo.User().List(ctx, repositories.UserFilters{
		Active: ptr(true),
		Page:   repositories.PageRequest{Sort: []repositories.SortOrder{{Field: "username", Desc: true}}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, users, 2)
	assert.Equal(t, "carol", users[0].Username)
	assert.Equal(t, "alice", users[1].Username)

	users, total, err = repo.User().List(ctx, repositories.UserFilters{Query: "AL"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "alice", users[0].Username)
}

func TestGradeMemory_ForeignKeys(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	err := repo.Grade().Create(ctx, &models.Grade{Value: 1, Weight: 1, StudentID: "missing"})
	assert.ErrorIs(t, err, repositories.ErrReferenced)

	alice := newUser(t, repo, "alice")
	err = repo.Grade().Create(ctx, &models.Grade{Value: 1, Weight: 1, StudentID: alice.ID, TestID: ptr("missing")})
	assert.ErrorIs(t, err, repositories.ErrReferenced)
}

func TestGradeMemory_ListViewSortAndPage(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	alice := newUser(t, repo, "alice")
	bob := newUser(t, repo, "bob")

	test := &models.Test{Name: "Algebra quiz"}
	require.NoError(t, repo.Test().Create(ctx, test))

	newGrade(t, repo, alice, 3, &test.ID)
	newGrade(t, repo, bob, 5, nil)
	newGrade(t, repo, alice, 4, nil)

	views, total, err := repo.Grade().ListView(ctx, repositories.GradeFilters{
		Page: repositories.PageRequest{Size: 2, Sort: []repositories.SortOrder{{Field: "value", Desc: true}}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, views, 2)
	assert.Equal(t, 5.0, views[0].Value)
	assert.Equal(t, "bob", views[0].StudentUsername)
	assert.Equal(t, 4.0, views[1].Value)

	views, _, err = repo.Grade().ListView(ctx, repositories.GradeFilters{TestName: "algebra"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].TestName)
	assert.Equal(t, "Algebra quiz", *views[0].TestName)

	views, _, err = repo.Grade().ListView(ctx, repositories.GradeFilters{StudentUsername: "ALI", ValueMin: ptr(3.5)})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 4.0, views[0].Value)
}

func TestGradeMemory_UnknownSortIsIgnoredAndListingIsStable(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	alice := newUser(t, repo, "alice")
	for i := 0; i < 15; i++ {
		newGrade(t, repo, alice, float64(i%3), nil)
	}

	filters := repositories.GradeFilters{Page: repositories.PageRequest{
		Size: 10,
		Sort: []repositories.SortOrder{{Field: "bogus"}, {Field: "value"}},
	}}
	first, total1, err := repo.Grade().ListView(ctx, filters)
	require.NoError(t, err)
	second, total2, err := repo.Grade().ListView(ctx, filters)
	require.NoError(t, err)

	assert.Equal(t, total1, total2)
	assert.Equal(t, first, second)
	assert.Len(t, first, 10)
}

func TestTestMemory_DeleteClearsGradeLink(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	alice := newUser(t, repo, "alice")
	test := &models.Test{Name: "Quiz"}
	require.NoError(t, repo.Test().Create(ctx, test))
	g := newGrade(t, repo, alice, 2, &test.ID)

	require.NoError(t, repo.Test().Delete(ctx, test.ID))

	got, err := repo.Grade().GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TestID)
}

func TestCatalog_ReferencesAndUniqueness(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	math := &models.Subject{Name: "Math"}
	require.NoError(t, repo.Subject().Create(ctx, math))
	assert.ErrorIs(t, repo.Subject().Create(ctx, &models.Subject{Name: "Math"}), repositories.ErrDuplicate)

	start := models.NewDate(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	end := models.NewDate(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))
	winter := &models.Semester{Name: "Winter 2025", StartDate: start, EndDate: end}
	require.NoError(t, repo.Semester().Create(ctx, winter))

	ss := &models.SemesterSubject{SemesterID: winter.ID, SubjectID: math.ID}
	require.NoError(t, repo.SemesterSubject().Create(ctx, ss))
	err := repo.SemesterSubject().Create(ctx, &models.SemesterSubject{SemesterID: winter.ID, SubjectID: math.ID})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	class := &models.SchoolClass{Name: "1A", SemesterSubjectID: ss.ID}
	require.NoError(t, repo.SchoolClass().Create(ctx, class))
	test := &models.Test{Name: "Quiz", SemesterSubjectID: &ss.ID, ClassID: &class.ID}
	require.NoError(t, repo.Test().Create(ctx, test))

	assert.ErrorIs(t, repo.Subject().Delete(ctx, math.ID), repositories.ErrReferenced)
	assert.ErrorIs(t, repo.SemesterSubject().Delete(ctx, ss.ID), repositories.ErrReferenced)

	require.NoError(t, repo.SchoolClass().Delete(ctx, class.ID))
	require.NoError(t, repo.SemesterSubject().Delete(ctx, ss.ID))

	got, err := repo.Test().GetByID(ctx, test.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ClassID)
	assert.Nil(t, got.SemesterSubjectID)

	require.NoError(t, repo.Subject().Delete(ctx, math.ID))
	_, err = repo.Subject().GetByID(ctx, math.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGradeMemory_SemesterRows(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	alice := newUser(t, repo, "alice")

	math := &models.Subject{Name: "Math"}
	require.NoError(t, repo.Subject().Create(ctx, math))
	sem := &models.Semester{Name: "S1"}
	require.NoError(t, repo.Semester().Create(ctx, sem))
	other := &models.Semester{Name: "S2"}
	require.NoError(t, repo.Semester().Create(ctx, other))

	ss := &models.SemesterSubject{SemesterID: sem.ID, SubjectID: math.ID}
	require.NoError(t, repo.SemesterSubject().Create(ctx, ss))
	otherSS := &models.SemesterSubject{SemesterID: other.ID, SubjectID: math.ID}
	require.NoError(t, repo.SemesterSubject().Create(ctx, otherSS))
	class := &models.SchoolClass{Name: "1A", SemesterSubjectID: ss.ID}
	require.NoError(t, repo.SchoolClass().Create(ctx, class))

	direct := &models.Test{Name: "direct", SemesterSubjectID: &ss.ID}
	viaClass := &models.Test{Name: "via class", ClassID: &class.ID}
	elsewhere := &models.Test{Name: "other semester", SemesterSubjectID: &otherSS.ID}
	for _, tt := range []*models.Test{direct, viaClass, elsewhere} {
		require.NoError(t, repo.Test().Create(ctx, tt))
	}

	newGrade(t, repo, alice, 4, &direct.ID)
	newGrade(t, repo, alice, 2, &viaClass.ID)
	newGrade(t, repo, alice, 1, &elsewhere.ID)
	newGrade(t, repo, alice, 1, nil)

	rows, err := repo.Grade().SemesterRows(ctx, sem.ID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "Math", r.SubjectName)
		assert.Equal(t, "alice", r.StudentUsername)
	}

	rows, err = repo.Grade().SemesterRows(ctx, sem.ID, ptr("someone-else"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepository_WithTransactionRollsBack(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		require.NoError(t, tx.User().Create(ctx, &models.User{Username: "ghost", Roles: []string{models.RoleUser}}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := repo.User().ExistsByUsername(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, exists)

	err = repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return tx.User().Create(ctx, &models.User{Username: "kept", Roles: []string{models.RoleUser}})
	})
	require.NoError(t, err)
	exists, err = repo.User().ExistsByUsername(ctx, "kept")
	require.NoError(t, err)
	assert.True(t, exists)
}
