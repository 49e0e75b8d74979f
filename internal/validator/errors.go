package validator

import (
	"fmt"
	"strings"
)

// ValidationError describes one rejected field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s", ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// NewValidationError builds a single-field error for checks done outside struct tags
func NewValidationError(field, rule, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Rule: rule, Message: message}}
}

func redactValue(field string, value interface{}) interface{} {
	if strings.Contains(strings.ToLower(field), "password") {
		return nil
	}
	return value
}
