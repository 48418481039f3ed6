package models

import (
	"fmt"
	"strings"
)

// ValidationErrors collects field-level validation failures.
type ValidationErrors struct {
	fields []string
	errs   []error
}

// Add records a validation error for a field.
func (v *ValidationErrors) Add(field string, err error) {
	v.fields = append(v.fields, field)
	v.errs = append(v.errs, err)
}

// AddMessage records a validation error message for a field.
func (v *ValidationErrors) AddMessage(field, message string) {
	v.Add(field, fmt.Errorf("%s", message))
}

// Err returns an aggregate error, or nil if no failures were recorded.
func (v *ValidationErrors) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	parts := make([]string, 0, len(v.errs))
	for i, err := range v.errs {
		parts = append(parts, fmt.Sprintf("%s: %v", v.fields[i], err))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(parts, "; "))
}
