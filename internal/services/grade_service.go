package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/gradebook-service/internal/auth"
	"github.com/SAP-F-2025/gradebook-service/internal/events"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
	"github.com/SAP-F-2025/gradebook-service/internal/validator"
)

type gradeService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
	validator *validator.Validator
}

func NewGradeService(repo repositories.Repository, publisher events.EventPublisher, logger utils.Logger, validator *validator.Validator) GradeService {
	return &gradeService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== LISTING =====

// scopeFilters pins non-admin callers to their own grades whatever the request asked for
func scopeFilters(actor *auth.Principal, filters repositories.GradeFilters) repositories.GradeFilters {
	if !actor.IsAdmin() {
		own := actor.UserID
		filters.StudentID = &own
	}
	return filters
}

func (s *gradeService) List(ctx context.Context, actor *auth.Principal, filters repositories.GradeFilters) (*models.Page[*models.Grade], error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	filters = scopeFilters(actor, filters)
	grades, total, err := s.repo.Grade().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	return toPage(grades, total, filters.Page), nil
}

func (s *gradeService) ListView(ctx context.Context, actor *auth.Principal, filters repositories.GradeFilters) (*models.Page[*models.GradeView], error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	filters = scopeFilters(actor, filters)
	views, total, err := s.repo.Grade().ListView(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list grade views: %w", err)
	}
	return toPage(views, total, filters.Page), nil
}

// ListViewOwn lists grades owned by the caller, including those an admin recorded
// for them. With authored=true an admin instead gets the grades they recorded.
func (s *gradeService) ListViewOwn(ctx context.Context, actor *auth.Principal, filters repositories.GradeFilters, authored bool) (*models.Page[*models.GradeView], error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	self := actor.UserID
	if authored && actor.IsAdmin() {
		filters.CreatedBy = &self
	} else {
		filters.StudentID = &self
		filters.CreatedBy = nil
	}

	views, total, err := s.repo.Grade().ListView(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list own grades: %w", err)
	}
	return toPage(views, total, filters.Page), nil
}

// ===== SINGLE GRADE =====

func (s *gradeService) Get(ctx context.Context, actor *auth.Principal, id string) (*models.Grade, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	grade, err := s.repo.Grade().GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "grade", id)
	}
	if !actor.CanAccessOwnedBy(grade.StudentID) {
		return nil, NewPermissionError(actor.UserID, "grade", "read", "not the owning student")
	}
	return grade, nil
}

// Create records a grade. Admins must name the student; for everyone else the
// student is always the caller, whatever studentId was sent.
func (s *gradeService) Create(ctx context.Context, actor *auth.Principal, req *models.CreateGradeRequest) (*models.Grade, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	studentID := actor.UserID
	if actor.IsAdmin() {
		if nonEmpty(req.StudentID) == nil {
			return nil, validationError("studentId", "required", "studentId is required")
		}
		studentID = *req.StudentID
		if _, err := s.repo.User().GetByID(ctx, studentID); err != nil {
			return nil, mapRepoError(err, "student", studentID)
		}
	} else if req.StudentID != nil && *req.StudentID != actor.UserID {
		s.logger.Warn("Ignoring studentId supplied by non-admin", "user_id", actor.UserID, "requested_student_id", *req.StudentID)
	}

	testID := nonEmpty(req.TestID)
	if err := s.checkTest(ctx, testID); err != nil {
		return nil, err
	}

	weight := models.DefaultGradeWeight
	if req.Weight != nil {
		weight = *req.Weight
	}

	grade := &models.Grade{
		Value:     roundHalfUp(*req.Value, 2),
		Weight:    roundHalfUp(weight, 2),
		Comment:   req.Comment,
		StudentID: studentID,
		TestID:    testID,
		CreatedBy: actor.UserID,
	}
	if err := s.repo.Grade().Create(ctx, grade); err != nil {
		return nil, mapRepoError(err, "grade", "")
	}

	s.logger.Info("Grade created", "grade_id", grade.ID, "student_id", studentID, "creator_id", actor.UserID)
	s.publishGrade(ctx, events.GradeCreated, actor, grade)
	return grade, nil
}

// Update changes value, weight, comment or test link; an empty testId clears the link
func (s *gradeService) Update(ctx context.Context, actor *auth.Principal, id string, req *models.UpdateGradeRequest) (*models.Grade, error) {
	if err := requireAdmin(actor, "grade", "update"); err != nil {
		return nil, err
	}
	clearTest := req.TestID != nil && *req.TestID == ""
	if clearTest {
		trimmed := *req
		trimmed.TestID = nil
		req = &trimmed
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	grade, err := s.repo.Grade().GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "grade", id)
	}

	if req.Value != nil {
		grade.Value = roundHalfUp(*req.Value, 2)
	}
	if req.Weight != nil {
		grade.Weight = roundHalfUp(*req.Weight, 2)
	}
	if req.Comment != nil {
		grade.Comment = req.Comment
	}
	switch {
	case clearTest:
		grade.TestID = nil
	case req.TestID != nil:
		if err := s.checkTest(ctx, req.TestID); err != nil {
			return nil, err
		}
		grade.TestID = req.TestID
	}

	if err := s.repo.Grade().Update(ctx, grade); err != nil {
		return nil, mapRepoError(err, "grade", id)
	}

	s.logger.Info("Grade updated", "grade_id", id, "actor_id", actor.UserID)
	s.publishGrade(ctx, events.GradeUpdated, actor, grade)
	return grade, nil
}

// Delete removes a grade. Admins may delete any grade, others only their own.
func (s *gradeService) Delete(ctx context.Context, actor *auth.Principal, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	grade, err := s.repo.Grade().GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err, "grade", id)
	}
	if !actor.CanAccessOwnedBy(grade.StudentID) {
		s.logger.Warn("Grade delete denied", "grade_id", id, "user_id", actor.UserID, "owner_id", grade.StudentID)
		return NewPermissionError(actor.UserID, "grade", "delete", "not the owning student")
	}

	if err := s.repo.Grade().Delete(ctx, id); err != nil {
		return mapRepoError(err, "grade", id)
	}

	s.logger.Info("Grade deleted", "grade_id", id, "actor_id", actor.UserID)
	s.publishGrade(ctx, events.GradeDeleted, actor, grade)
	return nil
}

// ===== SEMESTER RESULTS =====

// SemesterResults computes weighted subject averages per student for one semester.
// Non-admins only ever see their own results.
func (s *gradeService) SemesterResults(ctx context.Context, actor *auth.Principal, semesterID string, studentID *string) ([]models.StudentSemesterResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if _, err := s.repo.Semester().GetByID(ctx, semesterID); err != nil {
		return nil, mapRepoError(err, "semester", semesterID)
	}

	if !actor.IsAdmin() {
		own := actor.UserID
		studentID = &own
	} else {
		studentID = nonEmpty(studentID)
	}

	rows, err := s.repo.Grade().SemesterRows(ctx, semesterID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load semester grades: %w", err)
	}
	return aggregateSemester(rows), nil
}

// aggregateSemester folds rows ordered by student then subject into per-subject
// weighted averages Σ(v·w)/Σw and an overall mean of those averages
func aggregateSemester(rows []models.SemesterGradeRow) []models.StudentSemesterResult {
	results := []models.StudentSemesterResult{}

	type acc struct {
		subject        models.SubjectAverage
		weighted, wsum float64
	}
	var (
		current  *models.StudentSemesterResult
		subjects []*acc
	)

	flush := func() {
		if current == nil {
			return
		}
		var sum float64
		for _, a := range subjects {
			if a.wsum > 0 {
				a.subject.Average = roundHalfUp(a.weighted/a.wsum, 2)
			}
			sum += a.subject.Average
			current.Subjects = append(current.Subjects, a.subject)
		}
		if len(subjects) > 0 {
			overall := roundHalfUp(sum/float64(len(subjects)), 2)
			current.OverallAverage = &overall
		}
		results = append(results, *current)
	}

	for _, row := range rows {
		if current == nil || current.StudentID != row.StudentID {
			flush()
			current = &models.StudentSemesterResult{
				StudentID:       row.StudentID,
				StudentUsername: row.StudentUsername,
				Subjects:        []models.SubjectAverage{},
			}
			subjects = nil
		}
		if len(subjects) == 0 || subjects[len(subjects)-1].subject.SubjectID != row.SubjectID {
			subjects = append(subjects, &acc{subject: models.SubjectAverage{
				SubjectID:   row.SubjectID,
				SubjectName: row.SubjectName,
			}})
		}
		a := subjects[len(subjects)-1]
		a.weighted += row.Value * row.Weight
		a.wsum += row.Weight
		a.subject.GradeCount++
	}
	flush()

	return results
}

// ===== HELPERS =====

func (s *gradeService) checkTest(ctx context.Context, testID *string) error {
	if testID == nil {
		return nil
	}
	if _, err := s.repo.Test().GetByID(ctx, *testID); err != nil {
		return mapRepoError(err, "test", *testID)
	}
	return nil
}

func (s *gradeService) publishGrade(ctx context.Context, eventType string, actor *auth.Principal, grade *models.Grade) {
	publish(ctx, s.publisher, s.logger, events.NewEvent(eventType, actorID(actor), events.GradeEventData{
		GradeID:   grade.ID,
		StudentID: grade.StudentID,
		TestID:    grade.TestID,
		Value:     grade.Value,
		Weight:    grade.Weight,
	}))
}
