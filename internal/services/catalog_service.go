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

type catalogService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
	validator *validator.Validator
}

func NewCatalogService(repo repositories.Repository, publisher events.EventPublisher, logger utils.Logger, validator *validator.Validator) CatalogService {
	return &catalogService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// catalogOps bundles what the generic CRUD helpers need to know about one collection
type catalogOps[T any] struct {
	resource   string
	collection string
	store      repositories.CatalogRepository[T]
	idOf       func(*T) string
}

func listCatalog[T any](ctx context.Context, ops catalogOps[T], page repositories.PageRequest) (*models.Page[*T], error) {
	items, total, err := ops.store.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", ops.collection, err)
	}
	return toPage(items, total, page), nil
}

func getCatalog[T any](ctx context.Context, ops catalogOps[T], id string) (*T, error) {
	entity, err := ops.store.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, ops.resource, id)
	}
	return entity, nil
}

// createCatalog validates req, lets build fill a fresh entity and stores it
func createCatalog[T any](ctx context.Context, s *catalogService, actor *auth.Principal, ops catalogOps[T], req interface{}, build func(*T) error) (*T, error) {
	if err := requireAdmin(actor, ops.resource, "create"); err != nil {
		return nil, err
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	entity := new(T)
	if err := build(entity); err != nil {
		return nil, err
	}
	if err := ops.store.Create(ctx, entity); err != nil {
		return nil, mapRepoError(err, ops.resource, "")
	}

	s.changed(ctx, actor, ops.collection, ops.idOf(entity), "created")
	return entity, nil
}

func updateCatalog[T any](ctx context.Context, s *catalogService, actor *auth.Principal, ops catalogOps[T], id string, req interface{}, build func(*T) error) (*T, error) {
	if err := requireAdmin(actor, ops.resource, "update"); err != nil {
		return nil, err
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	entity, err := getCatalog(ctx, ops, id)
	if err != nil {
		return nil, err
	}
	if err := build(entity); err != nil {
		return nil, err
	}
	if err := ops.store.Update(ctx, entity); err != nil {
		return nil, mapRepoError(err, ops.resource, id)
	}

	s.changed(ctx, actor, ops.collection, id, "updated")
	return entity, nil
}

func deleteCatalog[T any](ctx context.Context, s *catalogService, actor *auth.Principal, ops catalogOps[T], id string) error {
	if err := requireAdmin(actor, ops.resource, "delete"); err != nil {
		return err
	}
	if err := ops.store.Delete(ctx, id); err != nil {
		return mapRepoError(err, ops.resource, id)
	}

	s.changed(ctx, actor, ops.collection, id, "deleted")
	return nil
}

func (s *catalogService) changed(ctx context.Context, actor *auth.Principal, collection, id, action string) {
	s.logger.Info("Catalog changed", "collection", collection, "id", id, "action", action, "actor_id", actorID(actor))
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.CatalogChanged, actorID(actor), events.CatalogEventData{
		Collection: collection,
		ID:         id,
		Action:     action,
	}))
}

// ===== SUBJECTS =====

func (s *catalogService) subjects() catalogOps[models.Subject] {
	return catalogOps[models.Subject]{
		resource:   "subject",
		collection: "subjects",
		store:      s.repo.Subject(),
		idOf:       func(e *models.Subject) string { return e.ID },
	}
}

func (s *catalogService) ListSubjects(ctx context.Context, page repositories.PageRequest) (*models.Page[*models.Subject], error) {
	return listCatalog(ctx, s.subjects(), page)
}

func (s *catalogService) GetSubject(ctx context.Context, id string) (*models.Subject, error) {
	return getCatalog(ctx, s.subjects(), id)
}

func (s *catalogService) CreateSubject(ctx context.Context, actor *auth.Principal, req *models.SubjectRequest) (*models.Subject, error) {
	return createCatalog(ctx, s, actor, s.subjects(), req, func(e *models.Subject) error {
		e.Name = req.Name
		return nil
	})
}

func (s *catalogService) UpdateSubject(ctx context.Context, actor *auth.Principal, id string, req *models.SubjectRequest) (*models.Subject, error) {
	return updateCatalog(ctx, s, actor, s.subjects(), id, req, func(e *models.Subject) error {
		e.Name = req.Name
		return nil
	})
}

func (s *catalogService) DeleteSubject(ctx context.Context, actor *auth.Principal, id string) error {
	return deleteCatalog(ctx, s, actor, s.subjects(), id)
}

// ===== SEMESTERS =====

func (s *catalogService) semesters() catalogOps[models.Semester] {
	return catalogOps[models.Semester]{
		resource:   "semester",
		collection: "semesters",
		store:      s.repo.Semester(),
		idOf:       func(e *models.Semester) string { return e.ID },
	}
}

// applySemester parses the date range; the start may not fall after the end
func applySemester(e *models.Semester, req *models.SemesterRequest) error {
	start, err := models.ParseDate(req.StartDate)
	if err != nil {
		return validationError("startDate", "date_ymd", "startDate must be a date in YYYY-MM-DD format")
	}
	end, err := models.ParseDate(req.EndDate)
	if err != nil {
		return validationError("endDate", "date_ymd", "endDate must be a date in YYYY-MM-DD format")
	}
	if end.Before(start) {
		return validationError("endDate", "date_range", "endDate must not be before startDate")
	}

	e.Name = req.Name
	e.StartDate = start
	e.EndDate = end
	return nil
}

func (s *catalogService) ListSemesters(ctx context.Context, page repositories.PageRequest) (*models.Page[*models.Semester], error) {
	return listCatalog(ctx, s.semesters(), page)
}

func (s *catalogService) GetSemester(ctx context.Context, id string) (*models.Semester, error) {
	return getCatalog(ctx, s.semesters(), id)
}

func (s *catalogService) CreateSemester(ctx context.Context, actor *auth.Principal, req *models.SemesterRequest) (*models.Semester, error) {
	return createCatalog(ctx, s, actor, s.semesters(), req, func(e *models.Semester) error {
		return applySemester(e, req)
	})
}

func (s *catalogService) UpdateSemester(ctx context.Context, actor *auth.Principal, id string, req *models.SemesterRequest) (*models.Semester, error) {
	return updateCatalog(ctx, s, actor, s.semesters(), id, req, func(e *models.Semester) error {
		return applySemester(e, req)
	})
}

func (s *catalogService) DeleteSemester(ctx context.Context, actor *auth.Principal, id string) error {
	return deleteCatalog(ctx, s, actor, s.semesters(), id)
}

// ===== SEMESTER SUBJECTS =====

func (s *catalogService) semesterSubjects() catalogOps[models.SemesterSubject] {
	return catalogOps[models.SemesterSubject]{
		resource:   "semester subject",
		collection: "semester_subjects",
		store:      s.repo.SemesterSubject(),
		idOf:       func(e *models.SemesterSubject) string { return e.ID },
	}
}

func (s *catalogService) applySemesterSubject(ctx context.Context, e *models.SemesterSubject, req *models.SemesterSubjectRequest) error {
	if _, err := s.repo.Semester().GetByID(ctx, req.SemesterID); err != nil {
		return mapRepoError(err, "semester", req.SemesterID)
	}
	if _, err := s.repo.Subject().GetByID(ctx, req.SubjectID); err != nil {
		return mapRepoError(err, "subject", req.SubjectID)
	}
	e.SemesterID = req.SemesterID
	e.SubjectID = req.SubjectID
	return nil
}

func (s *catalogService) ListSemesterSubjects(ctx context.Context, page repositories.PageRequest) (*models.Page[*models.SemesterSubject], error) {
	return listCatalog(ctx, s.semesterSubjects(), page)
}

func (s *catalogService) GetSemesterSubject(ctx context.Context, id string) (*models.SemesterSubject, error) {
	return getCatalog(ctx, s.semesterSubjects(), id)
}

func (s *catalogService) CreateSemesterSubject(ctx context.Context, actor *auth.Principal, req *models.SemesterSubjectRequest) (*models.SemesterSubject, error) {
	return createCatalog(ctx, s, actor, s.semesterSubjects(), req, func(e *models.SemesterSubject) error {
		return s.applySemesterSubject(ctx, e, req)
	})
}

func (s *catalogService) UpdateSemesterSubject(ctx context.Context, actor *auth.Principal, id string, req *models.SemesterSubjectRequest) (*models.SemesterSubject, error) {
	return updateCatalog(ctx, s, actor, s.semesterSubjects(), id, req, func(e *models.SemesterSubject) error {
		return s.applySemesterSubject(ctx, e, req)
	})
}

func (s *catalogService) DeleteSemesterSubject(ctx context.Context, actor *auth.Principal, id string) error {
	return deleteCatalog(ctx, s, actor, s.semesterSubjects(), id)
}

// ===== CLASSES =====

func (s *catalogService) classes() catalogOps[models.SchoolClass] {
	return catalogOps[models.SchoolClass]{
		resource:   "class",
		collection: "classes",
		store:      s.repo.SchoolClass(),
		idOf:       func(e *models.SchoolClass) string { return e.ID },
	}
}

func (s *catalogService) applyClass(ctx context.Context, e *models.SchoolClass, req *models.SchoolClassRequest) error {
	if _, err := s.repo.SemesterSubject().GetByID(ctx, req.SemesterSubjectID); err != nil {
		return mapRepoError(err, "semester subject", req.SemesterSubjectID)
	}
	e.Name = req.Name
	e.SemesterSubjectID = req.SemesterSubjectID
	return nil
}

func (s *catalogService) ListClasses(ctx context.Context, page repositories.PageRequest) (*models.Page[*models.SchoolClass], error) {
	return listCatalog(ctx, s.classes(), page)
}

func (s *catalogService) GetClass(ctx context.Context, id string) (*models.SchoolClass, error) {
	return getCatalog(ctx, s.classes(), id)
}

func (s *catalogService) CreateClass(ctx context.Context, actor *auth.Principal, req *models.SchoolClassRequest) (*models.SchoolClass, error) {
	return createCatalog(ctx, s, actor, s.classes(), req, func(e *models.SchoolClass) error {
		return s.applyClass(ctx, e, req)
	})
}

func (s *catalogService) UpdateClass(ctx context.Context, actor *auth.Principal, id string, req *models.SchoolClassRequest) (*models.SchoolClass, error) {
	return updateCatalog(ctx, s, actor, s.classes(), id, req, func(e *models.SchoolClass) error {
		return s.applyClass(ctx, e, req)
	})
}

func (s *catalogService) DeleteClass(ctx context.Context, actor *auth.Principal, id string) error {
	return deleteCatalog(ctx, s, actor, s.classes(), id)
}
