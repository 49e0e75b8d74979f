package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultGradeWeight is applied when a grade is recorded without a weight
const DefaultGradeWeight = 1.0

type Grade struct {
	ID        string  `json:"id" gorm:"primaryKey;type:uuid"`
	Value     float64 `json:"value" gorm:"type:numeric(5,2);not null"`
	Weight    float64 `json:"weight" gorm:"type:numeric(5,2);not null"`
	Comment   *string `json:"comment,omitempty" gorm:"size:255"`
	StudentID string  `json:"studentId" gorm:"type:uuid;not null;index"`
	TestID    *string `json:"testId,omitempty" gorm:"type:uuid;index"`
	CreatedBy string  `json:"createdBy" gorm:"type:uuid;index"`

	CreatedAt time.Time `json:"createdOn"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Grade) TableName() string {
	return "grades"
}

func (g *Grade) BeforeCreate(*gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// IsOwnedBy reports whether userID is the grade's owning student
func (g *Grade) IsOwnedBy(userID string) bool {
	return g.StudentID == userID
}

// GradeView is the read-only projection of a grade joined with student and test names
type GradeView struct {
	ID              string    `json:"id"`
	Value           float64   `json:"value"`
	Weight          float64   `json:"weight"`
	Comment         *string   `json:"comment,omitempty"`
	StudentID       string    `json:"studentId"`
	StudentUsername string    `json:"studentUsername"`
	TestID          *string   `json:"testId,omitempty"`
	TestName        *string   `json:"testName,omitempty"`
	CreatedBy       string    `json:"createdBy"`
	CreatedOn       time.Time `json:"createdOn"`
}

// SemesterGradeRow is a grade resolved to the subject it counts towards in a semester
type SemesterGradeRow struct {
	StudentID       string
	StudentUsername string
	SubjectID       string
	SubjectName     string
	Value           float64
	Weight          float64
}

type SubjectAverage struct {
	SubjectID   string  `json:"subjectId"`
	SubjectName string  `json:"subjectName"`
	Average     float64 `json:"average"`
	GradeCount  int     `json:"gradeCount"`
}

type StudentSemesterResult struct {
	StudentID       string           `json:"studentId"`
	StudentUsername string           `json:"studentUsername"`
	Subjects        []SubjectAverage `json:"subjects"`
	OverallAverage  *float64         `json:"overallAverage,omitempty"`
}
