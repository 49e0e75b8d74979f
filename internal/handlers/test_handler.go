package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
	"github.com/SAP-F-2025/gradebook-service/internal/services"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
)

type TestHandler struct {
	BaseHandler
	testService services.TestService
}

func NewTestHandler(testService services.TestService, logger utils.Logger) *TestHandler {
	return &TestHandler{
		BaseHandler: NewBaseHandler(logger),
		testService: testService,
	}
}

// ListTests lists tests
// @Summary List tests
// @Tags tests
// @Produce json
// @Param name query string false "Name contains"
// @Param semesterSubjectId query string false "Semester subject"
// @Param classId query string false "Class"
// @Param page query int false "Page number (0-based)"
// @Param size query int false "Page size"
// @Param sort query []string false "field,asc|desc (name, date, createdAt)"
// @Success 200 {object} models.Page[models.Test]
// @Router /tests [get]
func (h *TestHandler) ListTests(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	page, ok := h.parsePageRequest(c)
	if !ok {
		return
	}
	semesterSubjectID, ok := h.queryID(c, "semesterSubjectId")
	if !ok {
		return
	}
	classID, ok := h.queryID(c, "classId")
	if !ok {
		return
	}

	tests, err := h.testService.List(c.Request.Context(), actor, repositories.TestFilters{
		Name:              c.Query("name"),
		SemesterSubjectID: semesterSubjectID,
		ClassID:           classID,
		Page:              page,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

// GetTest retrieves a test by ID
// @Summary Get test
// @Tags tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} models.Test
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id} [get]
func (h *TestHandler) GetTest(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}

	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	test, err := h.testService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// CreateTest creates a test
// @Summary Create test
// @Tags tests
// @Accept json
// @Produce json
// @Param test body models.CreateTestRequest true "Test"
// @Success 201 {object} models.Test
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Linked semester subject or class missing"
// @Router /tests [post]
func (h *TestHandler) CreateTest(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req models.CreateTestRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating test", "name", req.Name)

	test, err := h.testService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

// UpdateTest replaces a test's fields
// @Summary Update test
// @Tags tests
// @Accept json
// @Produce json
// @Param id path string true "Test ID"
// @Param test body models.UpdateTestRequest true "Test"
// @Success 200 {object} models.Test
// @Router /tests/{id} [put]
func (h *TestHandler) UpdateTest(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateTestRequest
	if !h.bindJSON(c, &req) {
		return
	}

	test, err := h.testService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// DeleteTest deletes a test; its grades stay with the test link cleared
// @Summary Delete test
// @Tags tests
// @Param id path string true "Test ID"
// @Success 204
// @Router /tests/{id} [delete]
func (h *TestHandler) DeleteTest(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}

	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting test", "test_id", id)

	if err := h.testService.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
