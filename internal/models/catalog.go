package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subject struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null;size:255"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Subject) TableName() string { return "subjects" }

func (s *Subject) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

type Semester struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null;size:255"`
	StartDate Date      `json:"startDate" gorm:"type:date;not null"`
	EndDate   Date      `json:"endDate" gorm:"type:date;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Semester) TableName() string { return "semesters" }

func (s *Semester) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SemesterSubject links a subject to the semester it is taught in
type SemesterSubject struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	SemesterID string    `json:"semesterId" gorm:"type:uuid;not null;uniqueIndex:idx_semester_subject"`
	SubjectID  string    `json:"subjectId" gorm:"type:uuid;not null;uniqueIndex:idx_semester_subject"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (SemesterSubject) TableName() string { return "semester_subjects" }

func (s *SemesterSubject) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

type SchoolClass struct {
	ID                string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name              string    `json:"name" gorm:"not null;size:255"`
	SemesterSubjectID string    `json:"semesterSubjectId" gorm:"type:uuid;not null;index"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (SchoolClass) TableName() string { return "school_classes" }

func (c *SchoolClass) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
