package notes_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoir/internal/notes"
	"memoir/internal/shared/apperrors"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

func validRequest(variant string) notes.NoteRequest {
	return notes.NoteRequest{
		Type:  variant,
		Date:  "2026-08-01",
		Title: "A title",
		Place: strPtr("Portland"),
	}
}

func fieldsOf(violations []apperrors.FieldViolation) []string {
	fields := make([]string, len(violations))
	for i, v := range violations {
		fields[i] = v.Field
	}
	return fields
}

// ---- envelope --------------------------------------------------------------

func TestNoteValidate_LifeRequiresOnlyEnvelope(t *testing.T) {
	req := validRequest(notes.VariantLife)

	fields, violations := req.Validate()

	assert.Empty(t, violations)
	assert.Nil(t, fields.BikeRide)
	assert.Nil(t, fields.Book)
}

func TestNoteValidate_MissingEnvelopeFields(t *testing.T) {
	req := notes.NoteRequest{Type: notes.VariantLife}

	_, violations := req.Validate()

	fields := fieldsOf(violations)
	assert.Contains(t, fields, "date")
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "place")
}

func TestNoteValidate_PlacePresentButEmptyAllowed(t *testing.T) {
	req := validRequest(notes.VariantLife)
	req.Place = strPtr("")

	_, violations := req.Validate()

	assert.Empty(t, violations, "place must be present but may be empty")
}

func TestNoteValidate_TitleBoundary(t *testing.T) {
	req := validRequest(notes.VariantLife)
	req.Title = strings.Repeat("a", 200)
	_, violations := req.Validate()
	assert.Empty(t, violations)

	req.Title = strings.Repeat("a", 201)
	_, violations = req.Validate()
	require.Len(t, violations, 1)
	assert.Equal(t, "title", violations[0].Field)
	assert.Equal(t, "must be at most 200 characters", violations[0].Message)
}

func TestNoteValidate_DateFormat(t *testing.T) {
	req := validRequest(notes.VariantLife)
	req.Date = "08/01/2026"

	_, violations := req.Validate()

	require.Len(t, violations, 1)
	assert.Equal(t, "date", violations[0].Field)
}

func TestNoteValidate_TagsMustNotRepeatType(t *testing.T) {
	req := validRequest(notes.VariantHealth)
	req.Tags = []string{"Travel", notes.VariantHealth}

	_, violations := req.Validate()

	require.Len(t, violations, 1)
	assert.Equal(t, "tags", violations[0].Field)
	assert.Equal(t, "must not include the note type", violations[0].Message)
}

func TestNoteValidate_DuplicateTagsAndPeople(t *testing.T) {
	req := validRequest(notes.VariantLife)
	req.Tags = []string{"Travel", "Travel"}
	req.People = []string{"Ada Lovelace", "Ada Lovelace"}

	_, violations := req.Validate()

	fields := fieldsOf(violations)
	assert.Contains(t, fields, "tags")
	assert.Contains(t, fields, "people")
}

// ---- Bike Ride -------------------------------------------------------------

func TestNoteValidate_BikeRide_OK(t *testing.T) {
	req := validRequest(notes.VariantBikeRide)
	req.Bike = "Trek 520"
	req.Metrics = json.RawMessage(`[{"dataSource":"Strava","distance":42.3}]`)

	fields, violations := req.Validate()

	assert.Empty(t, violations)
	require.NotNil(t, fields.BikeRide)
	assert.Equal(t, "Trek 520", fields.BikeRide.Bike)
	require.Len(t, fields.BikeRide.Metrics, 1)
	assert.Equal(t, "Strava", fields.BikeRide.Metrics[0].DataSource)
}

func TestNoteValidate_BikeRide_BikeRequiredAndEnumChecked(t *testing.T) {
	req := validRequest(notes.VariantBikeRide)
	_, violations := req.Validate()
	require.Len(t, violations, 1)
	assert.Equal(t, "bike", violations[0].Field)
	assert.Equal(t, "is required", violations[0].Message)

	req.Bike = "Huffy"
	_, violations = req.Validate()
	require.Len(t, violations, 1)
	assert.Equal(t, "bike", violations[0].Field)
	assert.Contains(t, violations[0].Message, "must be one of")
}

func TestNoteValidate_BikeRide_DataSourceEnum(t *testing.T) {
	req := validRequest(notes.VariantBikeRide)
	req.Bike = "Brompton"
	req.Metrics = json.RawMessage(`[{"dataSource":"Fitbit"}]`)

	_, violations := req.Validate()

	require.Len(t, violations, 1)
	assert.Equal(t, "metrics[0].dataSource", violations[0].Field)
}

func TestNoteValidate_BikeRide_MetricsMustBeArray(t *testing.T) {
	req := validRequest(notes.VariantBikeRide)
	req.Bike = "Brompton"
	req.Metrics = json.RawMessage(`{"dataSource":"Strava"}`)

	_, violations := req.Validate()

	require.Len(t, violations, 1)
	assert.Equal(t, "metrics", violations[0].Field)
	assert.Equal(t, "must be an array of metric objects", violations[0].Message)
}

func TestNoteValidate_BikeRide_NegativeDistance(t *testing.T) {
	req := validRequest(notes.VariantBikeRide)
	req.Bike = "Brompton"
	req.Metrics = json.RawMessage(`[{"dataSource":"Manual","distance":-1}]`)

	_, violations := req.Validate()

	require.Len(t, violations, 1)
	assert.Equal(t, "metrics[0].distance", violations[0].Field)
}

func TestNoteValidate_BikeRide_DuplicateMetricSets(t *testing.T) {
	req := validRequest(notes.VariantBikeRide)
	req.Bike = "Brompton"
	req.Metrics = json.RawMessage(`[
		{"dataSource":"Manual","distance":10},
		{"dataSource":"Manual","distance":10}
	]`)

	_, violations := req.Validate()

	require.Len(t, violations, 1)
	assert.Equal(t, "metrics[1]", violations[0].Field)
	assert.Equal(t, "duplicates an earlier metric set", violations[0].Message)
}

// ---- Hike ------------------------------------------------------------------

func TestNoteValidate_Hike_FreeFormDataSource(t *testing.T) {
	req := validRequest(notes.VariantHike)
	req.Metrics = json.RawMessage(`[{"dataSource":"my old GPS watch","distance":8.1}]`)

	fields, violations := req.Validate()

	assert.Empty(t, violations, "hike sources are free text, not the ride enum")
	require.NotNil(t, fields.Hike)
	require.Len(t, fields.Hike.Metrics, 1)
}

// ---- Book ------------------------------------------------------------------

func TestNoteValidate_Book_OK(t *testing.T) {
	req := validRequest(notes.VariantBook)
	req.Authors = []string{"Richard Powers"}
	req.Format = "eBook"
	req.Status = "Completed"
	req.Rating = f64Ptr(8)

	fields, violations := req.Validate()

	assert.Empty(t, violations)
	require.NotNil(t, fields.Book)
	require.NotNil(t, fields.Book.Rating)
	assert.Equal(t, 8, *fields.Book.Rating, "rating is converted to a whole number")
}

func TestNoteValidate_Book_AuthorsAndStatusRequired(t *testing.T) {
	req := validRequest(notes.VariantBook)

	_, violations := req.Validate()

	fields := fieldsOf(violations)
	assert.Contains(t, fields, "authors")
	assert.Contains(t, fields, "status")
}

func TestNoteValidate_Book_StatusEnum(t *testing.T) {
	req := validRequest(notes.VariantBook)
	req.Authors = []string{"Richard Powers"}
	req.Status = "Reading"

	_, violations := req.Validate()

	require.Len(t, violations, 1)
	assert.Equal(t, "status", violations[0].Field)
	assert.Equal(t, "must be one of: Completed, Abandoned", violations[0].Message)
}

func TestNoteValidate_Book_RatingBounds(t *testing.T) {
	for _, bad := range []float64{0, 11, 7.5} {
		req := validRequest(notes.VariantBook)
		req.Authors = []string{"Richard Powers"}
		req.Status = "Completed"
		req.Rating = f64Ptr(bad)

		_, violations := req.Validate()

		require.Len(t, violations, 1, "rating %v must be rejected", bad)
		assert.Equal(t, "rating", violations[0].Field)
		assert.Equal(t, "must be an integer between 1 and 10", violations[0].Message)
	}

	for _, ok := range []float64{1, 10} {
		req := validRequest(notes.VariantBook)
		req.Authors = []string{"Richard Powers"}
		req.Status = "Completed"
		req.Rating = f64Ptr(ok)

		_, violations := req.Validate()
		assert.Empty(t, violations, "rating %v must be accepted", ok)
	}
}

// ---- Workout ---------------------------------------------------------------

func TestNoteValidate_Workout_OK(t *testing.T) {
	req := validRequest(notes.VariantWorkout)
	req.Workout = "Running"
	req.Metrics = json.RawMessage(`[
		{"property":"sets","value":6},
		{"property":"felt strong","value":true},
		{"property":"note","value":"easy pace"}
	]`)

	fields, violations := req.Validate()

	assert.Empty(t, violations)
	require.NotNil(t, fields.Workout)
	assert.Len(t, fields.Workout.Metrics, 3)
}

func TestNoteValidate_Workout_NameRequired(t *testing.T) {
	req := validRequest(notes.VariantWorkout)

	_, violations := req.Validate()

	require.Len(t, violations, 1)
	assert.Equal(t, "workout", violations[0].Field)
}

func TestNoteValidate_Workout_ValueMustBeScalar(t *testing.T) {
	req := validRequest(notes.VariantWorkout)
	req.Workout = "Running"
	req.Metrics = json.RawMessage(`[
		{"property":"splits","value":[120,118]},
		{"property":"reps"}
	]`)

	_, violations := req.Validate()

	require.Len(t, violations, 2)
	assert.Equal(t, "metrics[0].value", violations[0].Field)
	assert.Equal(t, "must be a scalar value", violations[0].Message)
	assert.Equal(t, "metrics[1].value", violations[1].Field)
	assert.Equal(t, "is required", violations[1].Message)
}

func TestNoteValidate_Workout_DuplicateMetrics(t *testing.T) {
	req := validRequest(notes.VariantWorkout)
	req.Workout = "Running"
	req.Metrics = json.RawMessage(`[
		{"property":"sets","value":6},
		{"property":"sets","value":6}
	]`)

	_, violations := req.Validate()

	require.Len(t, violations, 1)
	assert.Equal(t, "metrics[1]", violations[0].Field)
}

// ---- unrecognized discriminator --------------------------------------------

func TestNoteValidate_UnknownTypeSkipsVariantRules(t *testing.T) {
	req := validRequest("Groceries")

	fields, violations := req.Validate()

	// Reference validation rejects the type; field validation has
	// nothing variant-specific to check.
	assert.Empty(t, violations)
	assert.Equal(t, notes.VariantFields{}, *fields)
}
