package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/gradebook-service/internal/auth"
	"github.com/SAP-F-2025/gradebook-service/internal/models"
	"github.com/SAP-F-2025/gradebook-service/internal/repositories"
	"github.com/SAP-F-2025/gradebook-service/internal/utils"
)

const (
	// MaxExportRows caps a spreadsheet export regardless of the matching row count
	MaxExportRows = 10000

	exportPageSize = repositories.MaxPageSize
	exportSheet    = "Grades"
)

var exportHeader = []interface{}{
	"ID", "Student", "Student ID", "Test", "Test ID", "Value", "Weight", "Comment", "Created On",
}

type reportService struct {
	repo   repositories.Repository
	grades GradeService
	logger utils.Logger
}

func NewReportService(repo repositories.Repository, grades GradeService, logger utils.Logger) ReportService {
	return &reportService{
		repo:   repo,
		grades: grades,
		logger: logger,
	}
}

// ExportGradeViews writes every row the caller could list through ListView into one sheet.
// Paging parameters are ignored apart from the sort order.
func (s *reportService) ExportGradeViews(ctx context.Context, actor *auth.Principal, filters repositories.GradeFilters) ([]byte, error) {
	rows, err := s.collectViews(ctx, actor, filters)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeader))
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, v := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			v.ID,
			v.StudentUsername,
			v.StudentID,
			derefOr(v.TestName, ""),
			derefOr(v.TestID, ""),
			v.Value,
			v.Weight,
			derefOr(v.Comment, ""),
			v.CreatedOn.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("Grades exported", "user_id", actor.UserID, "rows", len(rows))
	return buf.Bytes(), nil
}

// collectViews pages through ListView until the rows run out or the export cap is hit
func (s *reportService) collectViews(ctx context.Context, actor *auth.Principal, filters repositories.GradeFilters) ([]*models.GradeView, error) {
	var rows []*models.GradeView
	filters.Page.Size = exportPageSize

	for page := 0; len(rows) < MaxExportRows; page++ {
		filters.Page.Page = page
		result, err := s.grades.ListView(ctx, actor, filters)
		if err != nil {
			return nil, err
		}
		rows = append(rows, result.Content...)
		if len(result.Content) < exportPageSize {
			break
		}
	}

	if len(rows) > MaxExportRows {
		rows = rows[:MaxExportRows]
	}
	return rows, nil
}

// SemesterReport renders the semester results as an A4 PDF, one table per student
func (s *reportService) SemesterReport(ctx context.Context, actor *auth.Principal, semesterID string, studentID *string) ([]byte, error) {
	results, err := s.grades.SemesterResults(ctx, actor, semesterID, studentID)
	if err != nil {
		return nil, err
	}
	semester, err := s.repo.Semester().GetByID(ctx, semesterID)
	if err != nil {
		return nil, mapRepoError(err, "semester", semesterID)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Semester results: "+semester.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("%s to %s", semester.StartDate, semester.EndDate), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	if len(results) == 0 {
		pdf.CellFormat(0, 8, "No grades recorded for this semester.", "", 1, "L", false, 0, "")
	}

	const (
		subjectWidth = 110.0
		countWidth   = 30.0
		averageWidth = 40.0
		rowHeight    = 8.0
	)

	for _, result := range results {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 9, result.StudentUsername, "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(subjectWidth, rowHeight, "Subject", "1", 0, "L", true, 0, "")
		pdf.CellFormat(countWidth, rowHeight, "Grades", "1", 0, "C", true, 0, "")
		pdf.CellFormat(averageWidth, rowHeight, "Average", "1", 1, "C", true, 0, "")

		pdf.SetFont("Helvetica", "", 11)
		for _, subject := range result.Subjects {
			pdf.CellFormat(subjectWidth, rowHeight, subject.SubjectName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(countWidth, rowHeight, fmt.Sprintf("%d", subject.GradeCount), "1", 0, "C", false, 0, "")
			pdf.CellFormat(averageWidth, rowHeight, fmt.Sprintf("%.2f", subject.Average), "1", 1, "C", false, 0, "")
		}
		if result.OverallAverage != nil {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.CellFormat(subjectWidth+countWidth, rowHeight, "Overall", "1", 0, "R", false, 0, "")
			pdf.CellFormat(averageWidth, rowHeight, fmt.Sprintf("%.2f", *result.OverallAverage), "1", 1, "C", false, 0, "")
		}
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	s.logger.Info("Semester report rendered", "user_id", actor.UserID, "semester_id", semesterID, "students", len(results))
	return buf.Bytes(), nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
