package tags

import (
	"strings"

	"memoir/internal/shared/apperrors"
	"memoir/internal/shared/validation"
)

// TagRequest is the create/update payload. Description is a pointer so
// "key present with empty string" and "key absent" stay distinguishable:
// the key must be present, the empty string is fine.
type TagRequest struct {
	Name        string  `json:"name" validate:"required,max=25"`
	Description *string `json:"description" validate:"required"`
	Image       string  `json:"image" validate:"max=250"`
	IsType      bool    `json:"isType"`
	IsTag       bool    `json:"isTag"`
	IsWorkout   bool    `json:"isWorkout"`
	IsPerson    bool    `json:"isPerson"`
}

// Normalize trims all string fields in place before rule evaluation.
func (r *TagRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	if r.Description != nil {
		trimmed := strings.TrimSpace(*r.Description)
		r.Description = &trimmed
	}
	r.Image = strings.TrimSpace(r.Image)
}

// Validate runs the declarative field rules.
func (r *TagRequest) Validate() []apperrors.FieldViolation {
	return validation.Struct(r)
}
