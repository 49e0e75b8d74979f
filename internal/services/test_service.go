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

type testService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
	validator *validator.Validator
}

func NewTestService(repo repositories.Repository, publisher events.EventPublisher, logger utils.Logger, validator *validator.Validator) TestService {
	return &testService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *testService) List(ctx context.Context, actor *auth.Principal, filters repositories.TestFilters) (*models.Page[*models.Test], error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	tests, total, err := s.repo.Test().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	return toPage(tests, total, filters.Page), nil
}

func (s *testService) Get(ctx context.Context, actor *auth.Principal, id string) (*models.Test, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	test, err := s.repo.Test().GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "test", id)
	}
	return test, nil
}

// Create records a new test; any authenticated user may create one
func (s *testService) Create(ctx context.Context, actor *auth.Principal, req *models.CreateTestRequest) (*models.Test, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	test := &models.Test{CreatedBy: actor.UserID}
	if err := s.apply(ctx, test, req); err != nil {
		return nil, err
	}

	if err := s.repo.Test().Create(ctx, test); err != nil {
		return nil, mapRepoError(err, "test", test.Name)
	}

	s.logger.Info("Test created", "test_id", test.ID, "name", test.Name, "creator_id", actor.UserID)
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.TestCreated, actor.UserID, events.TestEventData{
		TestID: test.ID,
		Name:   test.Name,
	}))
	return test, nil
}

func (s *testService) Update(ctx context.Context, actor *auth.Principal, id string, req *models.UpdateTestRequest) (*models.Test, error) {
	if err := requireAdmin(actor, "test", "update"); err != nil {
		return nil, err
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	test, err := s.repo.Test().GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "test", id)
	}
	if err := s.apply(ctx, test, req); err != nil {
		return nil, err
	}

	if err := s.repo.Test().Update(ctx, test); err != nil {
		return nil, mapRepoError(err, "test", id)
	}

	s.logger.Info("Test updated", "test_id", id, "actor_id", actor.UserID)
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.TestUpdated, actor.UserID, events.TestEventData{
		TestID: test.ID,
		Name:   test.Name,
	}))
	return test, nil
}

// Delete removes the test; grades that referred to it are kept without a test
func (s *testService) Delete(ctx context.Context, actor *auth.Principal, id string) error {
	if err := requireAdmin(actor, "test", "delete"); err != nil {
		return err
	}

	test, err := s.repo.Test().GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err, "test", id)
	}
	if err := s.repo.Test().Delete(ctx, id); err != nil {
		return mapRepoError(err, "test", id)
	}

	s.logger.Info("Test deleted", "test_id", id, "actor_id", actor.UserID)
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.TestDeleted, actor.UserID, events.TestEventData{
		TestID: test.ID,
		Name:   test.Name,
	}))
	return nil
}

// apply copies request fields onto test after checking the linked catalog records exist
func (s *testService) apply(ctx context.Context, test *models.Test, req *models.CreateTestRequest) error {
	date, err := models.ParseDatePtr(req.Date)
	if err != nil {
		return validationError("date", "date_ymd", "date must be a date in YYYY-MM-DD format")
	}

	if id := nonEmpty(req.SemesterSubjectID); id != nil {
		if _, err := s.repo.SemesterSubject().GetByID(ctx, *id); err != nil {
			return mapRepoError(err, "semester subject", *id)
		}
	}
	if id := nonEmpty(req.ClassID); id != nil {
		if _, err := s.repo.SchoolClass().GetByID(ctx, *id); err != nil {
			return mapRepoError(err, "class", *id)
		}
	}

	test.Name = req.Name
	test.Comment = req.Comment
	test.Date = date
	test.SemesterSubjectID = nonEmpty(req.SemesterSubjectID)
	test.ClassID = nonEmpty(req.ClassID)
	return nil
}

// nonEmpty treats an empty string like an absent value
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
