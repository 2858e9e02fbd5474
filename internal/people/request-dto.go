package people

import (
	"strings"

	"memoir/internal/shared/apperrors"
	"memoir/internal/shared/refs"
	"memoir/internal/shared/validation"
)

type PersonRequest struct {
	FirstName       string        `json:"firstName" validate:"required,max=25"`
	MiddleName      string        `json:"middleName" validate:"max=25"`
	LastName        string        `json:"lastName" validate:"max=25"`
	PreferredName   string        `json:"preferredName" validate:"max=25"`
	Birthdate       string        `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	GooglePhotoURL  string        `json:"googlePhotoUrl" validate:"max=250"`
	PicasaContactID string        `json:"picasaContactId" validate:"max=16"`
	Notes           []PersonNote  `json:"notes"`
	Photos          []PersonPhoto `json:"photos"`
	Tags            []string      `json:"tags"`
}

// Normalize trims every string field, including embedded list elements
// and tag names, before rule evaluation.
func (r *PersonRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.MiddleName = strings.TrimSpace(r.MiddleName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.PreferredName = strings.TrimSpace(r.PreferredName)
	r.Birthdate = strings.TrimSpace(r.Birthdate)
	r.GooglePhotoURL = strings.TrimSpace(r.GooglePhotoURL)
	r.PicasaContactID = strings.TrimSpace(r.PicasaContactID)

	for i := range r.Notes {
		r.Notes[i].Date = strings.TrimSpace(r.Notes[i].Date)
		r.Notes[i].Text = strings.TrimSpace(r.Notes[i].Text)
	}
	for i := range r.Photos {
		r.Photos[i].Description = strings.TrimSpace(r.Photos[i].Description)
		r.Photos[i].Image = strings.TrimSpace(r.Photos[i].Image)
	}
	for i := range r.Tags {
		r.Tags[i] = strings.TrimSpace(r.Tags[i])
	}
}

// Validate runs the declarative field rules plus the element-wise
// checks on the embedded note and photo lists. Duplicate tag names are
// a field-level error, reported here and not by reference validation.
func (r *PersonRequest) Validate() []apperrors.FieldViolation {
	violations := validation.Struct(r)

	for i, note := range r.Notes {
		violations = append(violations, validation.Element("notes", i, note)...)
	}
	for i, photo := range r.Photos {
		violations = append(violations, validation.Element("photos", i, photo)...)
	}

	if dupes := refs.Duplicates(r.Tags); len(dupes) > 0 {
		violations = append(violations, validation.Violation(
			"tags", r.Tags, "must not contain duplicates"))
	}

	return violations
}
