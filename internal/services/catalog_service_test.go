package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/gradebook-service/internal/events"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
)

const missingID = "5b0c3f5e-0000-4000-8000-0000000000ff"

func TestCatalogService_SubjectLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, adminP := f.admin(t)
	_, aliceP := f.user(t, "alice")

	_, err := f.catalog.CreateSubject(ctx, aliceP, &models.SubjectRequest{Name: "Math"})
	assert.True(t, IsForbidden(err))

	subject, err := f.catalog.CreateSubject(ctx, adminP, &models.SubjectRequest{Name: "Math"})
	require.NoError(t, err)

	_, err = f.catalog.CreateSubject(ctx, adminP, &models.SubjectRequest{Name: "Math"})
	assert.True(t, IsConflict(err))

	renamed, err := f.catalog.UpdateSubject(ctx, adminP, subject.ID, &models.SubjectRequest{Name: "Mathematics"})
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", renamed.Name)

	got, err := f.catalog.GetSubject(ctx, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", got.Name)

	page, err := f.catalog.ListSubjects(ctx, repositories.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalElements)

	require.NoError(t, f.catalog.DeleteSubject(ctx, adminP, subject.ID))
	_, err = f.catalog.GetSubject(ctx, subject.ID)
	assert.True(t, IsNotFound(err))

	for _, e := range f.publisher.GetPublishedEvents() {
		assert.Equal(t, events.CatalogChanged, e.Type)
	}
	assert.Len(t, f.publisher.GetPublishedEvents(), 3)
}

func TestCatalogService_SemesterDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, adminP := f.admin(t)

	_, err := f.catalog.CreateSemester(ctx, adminP, &models.SemesterRequest{Name: "Winter", StartDate: "2025-03-01", EndDate: "2025-02-01"})
	assert.True(t, IsValidation(err))

	_, err = f.catalog.CreateSemester(ctx, adminP, &models.SemesterRequest{Name: "Winter", StartDate: "2025-13-01", EndDate: "2025-02-01"})
	assert.True(t, IsValidation(err))

	semester, err := f.catalog.CreateSemester(ctx, adminP, &models.SemesterRequest{Name: "Winter", StartDate: "2025-01-01", EndDate: "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", semester.StartDate.String())
}

func TestCatalogService_ReferencesMustExist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, adminP := f.admin(t)
	semester := f.semester(t, adminP, "Summer")

	_, err := f.catalog.CreateSemesterSubject(ctx, adminP, &models.SemesterSubjectRequest{SemesterID: semester.ID, SubjectID: missingID})
	assert.True(t, IsNotFound(err))

	_, err = f.catalog.CreateClass(ctx, adminP, &models.SchoolClassRequest{Name: "1A", SemesterSubjectID: missingID})
	assert.True(t, IsNotFound(err))

	_, err = f.tests.Create(ctx, adminP, &models.CreateTestRequest{Name: "Quiz", ClassID: ptr(missingID)})
	assert.True(t, IsNotFound(err))
}

func TestCatalogService_DeleteReferenced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, adminP := f.admin(t)
	semester := f.semester(t, adminP, "Summer")
	test := f.subjectTest(t, adminP, semester, "Math")

	err := f.catalog.DeleteSemester(ctx, adminP, semester.ID)
	assert.True(t, IsConflict(err))

	_, err = f.catalog.CreateSemesterSubject(ctx, adminP, &models.SemesterSubjectRequest{
		SemesterID: semester.ID, SubjectID: mustSubjectID(t, f, test),
	})
	assert.True(t, IsConflict(err))

	require.NoError(t, f.catalog.DeleteSemesterSubject(ctx, adminP, *test.SemesterSubjectID))
	unlinked, err := f.tests.Get(ctx, adminP, test.ID)
	require.NoError(t, err)
	assert.Nil(t, unlinked.SemesterSubjectID)
}

func mustSubjectID(t *testing.T, f *fixture, test *models.Test) string {
	t.Helper()
	require.NotNil(t, test.SemesterSubjectID)
	ss, err := f.catalog.GetSemesterSubject(context.Background(), *test.SemesterSubjectID)
	require.NoError(t, err)
	return ss.SubjectID
}
