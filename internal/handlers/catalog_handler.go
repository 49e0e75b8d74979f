package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/gradebook-service/internal/auth"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
	"github.com/SAP-F-2025/gradebook-service/internal/services"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
)

// CatalogHandler serves subjects, semesters, semester subjects and classes.
// The four collections share one shape so each endpoint delegates to the
// generic helpers below.
type CatalogHandler struct {
	BaseHandler
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService, logger utils.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
	}
}

func listEntries[T any](h *CatalogHandler, c *gin.Context, list func(context.Context, repositories.PageRequest) (*models.Page[*T], error)) {
	page, ok := h.parsePageRequest(c)
	if !ok {
		return
	}
	result, err := list(c.Request.Context(), page)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func getEntry[T any](h *CatalogHandler, c *gin.Context, get func(context.Context, string) (*T, error)) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	result, err := get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func createEntry[T, R any](h *CatalogHandler, c *gin.Context, create func(context.Context, *auth.Principal, *R) (*T, error)) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req R
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func updateEntry[T, R any](h *CatalogHandler, c *gin.Context, update func(context.Context, *auth.Principal, string, *R) (*T, error)) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req R
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func deleteEntry(h *CatalogHandler, c *gin.Context, del func(context.Context, *auth.Principal, string) error) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	h.LogRequest(c, "Deleting catalog entry", "path", c.FullPath(), "id", id)
	if err := del(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== SUBJECTS =====

// ListSubjects
// @Summary List subjects
// @Tags catalog
// @Produce json
// @Success 200 {object} models.Page[models.Subject]
// @Router /subjects [get]
func (h *CatalogHandler) ListSubjects(c *gin.Context) {
	listEntries(h, c, h.catalogService.ListSubjects)
}

// @Summary Get subject
// @Tags catalog
// @Router /subjects/{id} [get]
func (h *CatalogHandler) GetSubject(c *gin.Context) {
	getEntry(h, c, h.catalogService.GetSubject)
}

// @Summary Create subject
// @Tags catalog
// @Param subject body models.SubjectRequest true "Subject"
// @Success 201 {object} models.Subject
// @Failure 409 {object} ErrorResponse
// @Router /subjects [post]
func (h *CatalogHandler) CreateSubject(c *gin.Context) {
	createEntry(h, c, h.catalogService.CreateSubject)
}

// @Summary Update subject
// @Tags catalog
// @Router /subjects/{id} [put]
func (h *CatalogHandler) UpdateSubject(c *gin.Context) {
	updateEntry(h, c, h.catalogService.UpdateSubject)
}

// @Summary Delete subject
// @Tags catalog
// @Success 204
// @Failure 409 {object} ErrorResponse "Still referenced"
// @Router /subjects/{id} [delete]
func (h *CatalogHandler) DeleteSubject(c *gin.Context) {
	deleteEntry(h, c, h.catalogService.DeleteSubject)
}

// ===== SEMESTERS =====

// @Summary List semesters
// @Tags catalog
// @Success 200 {object} models.Page[models.Semester]
// @Router /semesters [get]
func (h *CatalogHandler) ListSemesters(c *gin.Context) {
	listEntries(h, c, h.catalogService.ListSemesters)
}

// @Summary Get semester
// @Tags catalog
// @Router /semesters/{id} [get]
func (h *CatalogHandler) GetSemester(c *gin.Context) {
	getEntry(h, c, h.catalogService.GetSemester)
}

// @Summary Create semester
// @Description startDate and endDate use YYYY-MM-DD
// @Tags catalog
// @Param semester body models.SemesterRequest true "Semester"
// @Success 201 {object} models.Semester
// @Router /semesters [post]
func (h *CatalogHandler) CreateSemester(c *gin.Context) {
	createEntry(h, c, h.catalogService.CreateSemester)
}

// @Summary Update semester
// @Tags catalog
// @Router /semesters/{id} [put]
func (h *CatalogHandler) UpdateSemester(c *gin.Context) {
	updateEntry(h, c, h.catalogService.UpdateSemester)
}

// @Summary Delete semester
// @Tags catalog
// @Router /semesters/{id} [delete]
func (h *CatalogHandler) DeleteSemester(c *gin.Context) {
	deleteEntry(h, c, h.catalogService.DeleteSemester)
}

// ===== SEMESTER SUBJECTS =====

// @Summary List semester subjects
// @Tags catalog
// @Router /semester-subjects [get]
func (h *CatalogHandler) ListSemesterSubjects(c *gin.Context) {
	listEntries(h, c, h.catalogService.ListSemesterSubjects)
}

// @Summary Get semester subject
// @Tags catalog
// @Router /semester-subjects/{id} [get]
func (h *CatalogHandler) GetSemesterSubject(c *gin.Context) {
	getEntry(h, c, h.catalogService.GetSemesterSubject)
}

// @Summary Create semester subject
// @Tags catalog
// @Param body body models.SemesterSubjectRequest true "Semester and subject"
// @Success 201 {object} models.SemesterSubject
// @Failure 404 {object} ErrorResponse
// @Router /semester-subjects [post]
func (h *CatalogHandler) CreateSemesterSubject(c *gin.Context) {
	createEntry(h, c, h.catalogService.CreateSemesterSubject)
}

// @Summary Update semester subject
// @Tags catalog
// @Router /semester-subjects/{id} [put]
func (h *CatalogHandler) UpdateSemesterSubject(c *gin.Context) {
	updateEntry(h, c, h.catalogService.UpdateSemesterSubject)
}

// @Summary Delete semester subject
// @Tags catalog
// @Router /semester-subjects/{id} [delete]
func (h *CatalogHandler) DeleteSemesterSubject(c *gin.Context) {
	deleteEntry(h, c, h.catalogService.DeleteSemesterSubject)
}

// ===== CLASSES =====

// @Summary List classes
// @Tags catalog
// @Router /classes [get]
func (h *CatalogHandler) ListClasses(c *gin.Context) {
	listEntries(h, c, h.catalogService.ListClasses)
}

// @Summary Get class
// @Tags catalog
// @Router /classes/{id} [get]
func (h *CatalogHandler) GetClass(c *gin.Context) {
	getEntry(h, c, h.catalogService.GetClass)
}

// @Summary Create class
// @Tags catalog
// @Param class body models.SchoolClassRequest true "Class"
// @Success 201 {object} models.SchoolClass
// @Router /classes [post]
func (h *CatalogHandler) CreateClass(c *gin.Context) {
	createEntry(h, c, h.catalogService.CreateClass)
}

// @Summary Update class
// @Tags catalog
// @Router /classes/{id} [put]
func (h *CatalogHandler) UpdateClass(c *gin.Context) {
	updateEntry(h, c, h.catalogService.UpdateClass)
}

// @Summary Delete class
// @Tags catalog
// @Router /classes/{id} [delete]
func (h *CatalogHandler) DeleteClass(c *gin.Context) {
	deleteEntry(h, c, h.catalogService.DeleteClass)
}
