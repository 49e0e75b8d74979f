package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Test is a dated exam or assignment that grades may refer to
type Test struct {
	ID                string  `json:"id" gorm:"primaryKey;type:uuid"`
	Name              string  `json:"name" gorm:"not null;size:255;index"`
	Comment           *string `json:"comment,omitempty" gorm:"size:1000"`
	Date              *Date   `json:"date,omitempty" gorm:"type:date"`
	SemesterSubjectID *string `json:"semesterSubjectId,omitempty" gorm:"type:uuid;index"`
	ClassID           *string `json:"classId,omitempty" gorm:"type:uuid;index"`

	// Metadata
	CreatedBy string    `json:"createdBy" gorm:"type:uuid"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Test) TableName() string {
	return "tests"
}

func (t *Test) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
