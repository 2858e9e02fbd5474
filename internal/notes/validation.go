package notes

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"memoir/internal/shared/apperrors"
	"memoir/internal/shared/refs"
	"memoir/internal/shared/validation"
)

// Validate runs the envelope rules plus the variant rules selected by
// the type discriminator, and returns the parsed variant payload ready
// for construction. An unrecognized discriminator gets no variant
// checks here; reference validation rejects it.
func (r *NoteRequest) Validate() (*VariantFields, []apperrors.FieldViolation) {
	violations := r.validateEnvelope()

	fields := &VariantFields{}
	switch r.Type {
	case VariantLife, VariantHealth:
		// No variant fields
	case VariantBikeRide:
		violations = append(violations, r.validateBikeRide(fields)...)
	case VariantHike:
		violations = append(violations, r.validateHike(fields)...)
	case VariantBook:
		violations = append(violations, r.validateBook(fields)...)
	case VariantWorkout:
		violations = append(violations, r.validateWorkout(fields)...)
	}

	return fields, violations
}

func (r *NoteRequest) validateEnvelope() []apperrors.FieldViolation {
	violations := validation.Struct(r)

	if dupes := refs.Duplicates(r.Tags); len(dupes) > 0 {
		violations = append(violations, validation.Violation(
			"tags", r.Tags, "must not contain duplicates"))
	}
	if dupes := refs.Duplicates(r.People); len(dupes) > 0 {
		violations = append(violations, validation.Violation(
			"people", r.People, "must not contain duplicates"))
	}

	// Cross-field exclusion: the generic tags must not repeat the type
	for _, tag := range r.Tags {
		if tag == r.Type {
			violations = append(violations, validation.Violation(
				"tags", r.Tags, "must not include the note type"))
			break
		}
	}

	return violations
}

func (r *NoteRequest) validateBikeRide(fields *VariantFields) []apperrors.FieldViolation {
	var violations []apperrors.FieldViolation

	if r.Bike == "" {
		violations = append(violations, validation.Violation("bike", nil, "is required"))
	} else if v := validation.OneOf("bike", r.Bike, Bikes); v != nil {
		violations = append(violations, *v)
	}

	metrics, parseViolation := parseRideMetrics(r.Metrics)
	if parseViolation != nil {
		return append(violations, *parseViolation)
	}

	for i, m := range metrics {
		violations = append(violations, validation.Element("metrics", i, m)...)
		if v := validation.OneOf(fmt.Sprintf("metrics[%d].dataSource", i), m.DataSource, RideDataSources); v != nil {
			violations = append(violations, *v)
		}
	}
	violations = append(violations, distinctRideMetrics(metrics)...)

	fields.BikeRide = &BikeRideFields{Bike: r.Bike, Metrics: metrics}
	return violations
}

func (r *NoteRequest) validateHike(fields *VariantFields) []apperrors.FieldViolation {
	var violations []apperrors.FieldViolation

	metrics, parseViolation := parseRideMetrics(r.Metrics)
	if parseViolation != nil {
		return append(violations, *parseViolation)
	}

	for i, m := range metrics {
		violations = append(violations, validation.Element("metrics", i, m)...)
		// Hikes record free-form sources, unlike rides
		if len(m.DataSource) > 100 {
			violations = append(violations, validation.Violation(
				fmt.Sprintf("metrics[%d].dataSource", i), m.DataSource,
				"must be at most 100 characters"))
		}
	}
	violations = append(violations, distinctRideMetrics(metrics)...)

	fields.Hike = &HikeFields{Metrics: metrics}
	return violations
}

// bookRules groups the declarative checks on the Book variant fields.
type bookRules struct {
	Authors []string `json:"authors" validate:"required,min=1,unique,dive,required,max=100"`
	Format  string   `json:"format" validate:"omitempty,oneof=Book eBook Audiobook"`
	Status  string   `json:"status" validate:"required,oneof=Completed Abandoned"`
}

func (r *NoteRequest) validateBook(fields *VariantFields) []apperrors.FieldViolation {
	violations := validation.Struct(bookRules{
		Authors: r.Authors,
		Format:  r.Format,
		Status:  r.Status,
	})

	// Rating arrives as a JSON number; a fractional value is rejected,
	// not rounded.
	var rating *int
	if r.Rating != nil {
		v := *r.Rating
		if v != math.Trunc(v) || v < 1 || v > 10 {
			violations = append(violations, validation.Violation(
				"rating", v, "must be an integer between 1 and 10"))
		} else {
			whole := int(v)
			rating = &whole
		}
	}

	fields.Book = &BookFields{
		Authors: r.Authors,
		Format:  r.Format,
		Status:  r.Status,
		Rating:  rating,
	}
	return violations
}

func (r *NoteRequest) validateWorkout(fields *VariantFields) []apperrors.FieldViolation {
	var violations []apperrors.FieldViolation

	if r.Workout == "" {
		violations = append(violations, validation.Violation("workout", nil, "is required"))
	}

	metrics, parseViolation := parseWorkoutMetrics(r.Metrics)
	if parseViolation != nil {
		return append(violations, *parseViolation)
	}

	for i, m := range metrics {
		violations = append(violations, validation.Element("metrics", i, m)...)
		switch m.Value.(type) {
		case nil:
			violations = append(violations, validation.Violation(
				fmt.Sprintf("metrics[%d].value", i), nil, "is required"))
		case string, float64, bool:
			// Scalars only
		default:
			violations = append(violations, validation.Violation(
				fmt.Sprintf("metrics[%d].value", i), m.Value, "must be a scalar value"))
		}
	}

	if i := firstDuplicate(len(metrics), func(a, b int) bool {
		return reflect.DeepEqual(metrics[a], metrics[b])
	}); i >= 0 {
		violations = append(violations, validation.Violation(
			fmt.Sprintf("metrics[%d]", i), metrics[i], "duplicates an earlier metric set"))
	}

	fields.Workout = &WorkoutFields{Metrics: metrics}
	return violations
}

func parseRideMetrics(raw json.RawMessage) ([]RideMetrics, *apperrors.FieldViolation) {
	if len(raw) == 0 {
		return nil, nil
	}

	var metrics []RideMetrics
	if err := json.Unmarshal(raw, &metrics); err != nil {
		v := validation.Violation("metrics", string(raw), "must be an array of metric objects")
		return nil, &v
	}

	for i := range metrics {
		metrics[i].DataSource = strings.TrimSpace(metrics[i].DataSource)
		metrics[i].StartDate = strings.TrimSpace(metrics[i].StartDate)
		metrics[i].ElevationGain = strings.TrimSpace(metrics[i].ElevationGain)
		metrics[i].MaxElevation = strings.TrimSpace(metrics[i].MaxElevation)
	}
	return metrics, nil
}

func parseWorkoutMetrics(raw json.RawMessage) ([]WorkoutMetric, *apperrors.FieldViolation) {
	if len(raw) == 0 {
		return nil, nil
	}

	var metrics []WorkoutMetric
	if err := json.Unmarshal(raw, &metrics); err != nil {
		v := validation.Violation("metrics", string(raw), "must be an array of metric objects")
		return nil, &v
	}

	for i := range metrics {
		metrics[i].Property = strings.TrimSpace(metrics[i].Property)
		if s, ok := metrics[i].Value.(string); ok {
			metrics[i].Value = strings.TrimSpace(s)
		}
	}
	return metrics, nil
}

func distinctRideMetrics(metrics []RideMetrics) []apperrors.FieldViolation {
	if i := firstDuplicate(len(metrics), func(a, b int) bool {
		return reflect.DeepEqual(metrics[a], metrics[b])
	}); i >= 0 {
		return []apperrors.FieldViolation{validation.Violation(
			fmt.Sprintf("metrics[%d]", i), metrics[i], "duplicates an earlier metric set")}
	}
	return nil
}

// firstDuplicate returns the index of the first element equal to an
// earlier one, or -1.
func firstDuplicate(n int, equal func(i, j int) bool) int {
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			if equal(i, j) {
				return i
			}
		}
	}
	return -1
}
