package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
	"github.com/SAP-F-2025/gradebook-service/internal/services"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

type GradeHandler struct {
	BaseHandler
	gradeService  services.GradeService
	reportService services.ReportService
}

func NewGradeHandler(gradeService services.GradeService, reportService services.ReportService, logger utils.Logger) *GradeHandler {
	return &GradeHandler{
		BaseHandler:   NewBaseHandler(logger),
		gradeService:  gradeService,
		reportService: reportService,
	}
}

// parseGradeFilters reads the listing filters shared by the grade endpoints
func (h *GradeHandler) parseGradeFilters(c *gin.Context) (repositories.GradeFilters, bool) {
	page, ok := h.parsePageRequest(c)
	if !ok {
		return repositories.GradeFilters{}, false
	}
	valueMin, ok := h.queryFloat(c, "valueMin")
	if !ok {
		return repositories.GradeFilters{}, false
	}
	valueMax, ok := h.queryFloat(c, "valueMax")
	if !ok {
		return repositories.GradeFilters{}, false
	}
	studentID, ok := h.queryID(c, "studentId")
	if !ok {
		return repositories.GradeFilters{}, false
	}
	testID, ok := h.queryID(c, "testId")
	if !ok {
		return repositories.GradeFilters{}, false
	}

	return repositories.GradeFilters{
		StudentID:       studentID,
		TestID:          testID,
		StudentUsername: c.Query("studentUsername"),
		TestName:        c.Query("testName"),
		ValueMin:        valueMin,
		ValueMax:        valueMax,
		Page:            page,
	}, true
}

// ListGrades lists raw grades
// @Summary List grades
// @Description Non-admins always receive their own grades
// @Tags grades
// @Produce json
// @Param studentId query string false "Student (admins only)"
// @Param testId query string false "Test"
// @Param valueMin query number false "Minimum value"
// @Param valueMax query number false "Maximum value"
// @Success 200 {object} models.Page[models.Grade]
// @Router /grades [get]
func (h *GradeHandler) ListGrades(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	filters, ok := h.parseGradeFilters(c)
	if !ok {
		return
	}

	grades, err := h.gradeService.List(c.Request.Context(), actor, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grades)
}

// ListGradeViews lists grades joined with student and test names
// @Summary List grade views
// @Tags grades
// @Produce json
// @Param studentUsername query string false "Student username contains"
// @Param testName query string false "Test name contains"
// @Success 200 {object} models.Page[models.GradeView]
// @Router /grades/view [get]
func (h *GradeHandler) ListGradeViews(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	filters, ok := h.parseGradeFilters(c)
	if !ok {
		return
	}

	views, err := h.gradeService.ListView(c.Request.Context(), actor, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}

// ListOwnGradeViews lists the caller's grades
// @Summary List own grades
// @Tags grades
// @Produce json
// @Param authored query bool false "Admins: list grades they recorded"
// @Success 200 {object} models.Page[models.GradeView]
// @Router /grades/view/own [get]
func (h *GradeHandler) ListOwnGradeViews(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	filters, ok := h.parseGradeFilters(c)
	if !ok {
		return
	}
	authored, ok := h.queryBool(c, "authored")
	if !ok {
		return
	}

	views, err := h.gradeService.ListViewOwn(c.Request.Context(), actor, filters, authored != nil && *authored)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}

// ExportGradeViews downloads the grade view rows as a spreadsheet
// @Summary Export grade views
// @Tags grades
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /grades/view/export [get]
func (h *GradeHandler) ExportGradeViews(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	filters, ok := h.parseGradeFilters(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting grades")

	data, err := h.reportService.ExportGradeViews(c.Request.Context(), actor, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("grades-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetGrade retrieves a grade by ID
// @Summary Get grade
// @Tags grades
// @Produce json
// @Param id path string true "Grade ID"
// @Success 200 {object} models.Grade
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /grades/{id} [get]
func (h *GradeHandler) GetGrade(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}

	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	grade, err := h.gradeService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grade)
}

// CreateGrade records a grade
// @Summary Create grade
// @Description Admins must pass studentId; other callers always record for themselves
// @Tags grades
// @Accept json
// @Produce json
// @Param grade body models.CreateGradeRequest true "Grade"
// @Success 201 {object} models.Grade
// @Failure 400 {object} ErrorResponse
// @Router /grades [post]
func (h *GradeHandler) CreateGrade(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req models.CreateGradeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating grade")

	grade, err := h.gradeService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, grade)
}

// UpdateGrade changes a grade
// @Summary Update grade
// @Tags grades
// @Accept json
// @Produce json
// @Param id path string true "Grade ID"
// @Param grade body models.UpdateGradeRequest true "Changes"
// @Success 200 {object} models.Grade
// @Router /grades/{id} [put]
func (h *GradeHandler) UpdateGrade(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateGradeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	grade, err := h.gradeService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grade)
}

// DeleteGrade deletes a grade
// @Summary Delete grade
// @Tags grades
// @Param id path string true "Grade ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /grades/{id} [delete]
func (h *GradeHandler) DeleteGrade(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}

	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting grade", "grade_id", id)

	if err := h.gradeService.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SemesterResults returns weighted subject averages per student
// @Summary Semester results
// @Tags grades
// @Produce json
// @Param semesterId path string true "Semester ID"
// @Param studentId query string false "Student (admins only)"
// @Success 200 {array} models.StudentSemesterResult
// @Router /grades/semesters/{semesterId}/results [get]
func (h *GradeHandler) SemesterResults(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}

	semesterID, ok := h.pathID(c, "semesterId")
	if !ok {
		return
	}
	studentID, ok := h.queryID(c, "studentId")
	if !ok {
		return
	}

	results, err := h.gradeService.SemesterResults(c.Request.Context(), actor, semesterID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// SemesterReport downloads the semester results as PDF
// @Summary Semester report
// @Tags grades
// @Produce application/pdf
// @Param semesterId path string true "Semester ID"
// @Success 200 {file} file
// @Router /grades/semesters/{semesterId}/report [get]
func (h *GradeHandler) SemesterReport(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}

	semesterID, ok := h.pathID(c, "semesterId")
	if !ok {
		return
	}
	studentID, ok := h.queryID(c, "studentId")
	if !ok {
		return
	}

	data, err := h.reportService.SemesterReport(c.Request.Context(), actor, semesterID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote("semester-"+semesterID+".pdf"))
	c.Data(http.StatusOK, pdfContentType, data)
}
