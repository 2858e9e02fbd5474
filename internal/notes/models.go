package notes

import (
	"time"

	"github.com/google/uuid"
)

// RideMetrics is one recorded metric set on a bike ride or hike.
// Times are seconds; distance and speeds keep whatever unit the
// recording device used. Elevation fields stay free-form because
// sources disagree on format.
type RideMetrics struct {
	DataSource    string   `json:"dataSource,omitempty"`
	StartDate     string   `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	MovingTime    *float64 `json:"movingTime,omitempty" validate:"omitempty,min=0"`
	TotalTime     *float64 `json:"totalTime,omitempty" validate:"omitempty,min=0"`
	Distance      *float64 `json:"distance,omitempty" validate:"omitempty,min=0"`
	AvgSpeed      *float64 `json:"avgSpeed,omitempty" validate:"omitempty,min=0"`
	MaxSpeed      *float64 `json:"maxSpeed,omitempty" validate:"omitempty,min=0"`
	ElevationGain string   `json:"elevationGain,omitempty"`
	MaxElevation  string   `json:"maxElevation,omitempty"`
}

// WorkoutMetric is one property/value pair on a workout.
type WorkoutMetric struct {
	Property string      `json:"property" validate:"required,max=25"`
	Value    interface{} `json:"value"`
}

type BikeRideFields struct {
	Bike    string        `json:"bike"`
	Metrics []RideMetrics `json:"metrics,omitempty"`
}

type HikeFields struct {
	Metrics []RideMetrics `json:"metrics,omitempty"`
}

type BookFields struct {
	Authors []string `json:"authors"`
	Format  string   `json:"format,omitempty"`
	Status  string   `json:"status"`
	Rating  *int     `json:"rating,omitempty"`
}

type WorkoutFields struct {
	Metrics []WorkoutMetric `json:"metrics,omitempty"`
}

// VariantFields is the tagged-union payload: exactly the pointer
// matching the note's variant is set (none for Life and Health).
// Stored as one jsonb column.
type VariantFields struct {
	BikeRide *BikeRideFields `json:"bikeRide,omitempty"`
	Hike     *HikeFields     `json:"hike,omitempty"`
	Book     *BookFields     `json:"book,omitempty"`
	Workout  *WorkoutFields  `json:"workout,omitempty"`
}

// Note is the common envelope plus the variant payload. Type and
// workout references are stored as resolved tag IDs in real columns so
// the referential-integrity counts stay plain WHERE queries; generic
// tags and people references live in join tables.
type Note struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Variant      string     `json:"variant" gorm:"not null;size:25"`
	TypeTagID    uuid.UUID  `json:"type_tag_id" gorm:"type:uuid;not null;index"`
	WorkoutTagID *uuid.UUID `json:"workout_tag_id" gorm:"type:uuid;index"`

	Date        string `json:"date" gorm:"not null;size:10;index"`
	Title       string `json:"title" gorm:"not null;size:200"`
	Description string `json:"description"`
	Place       string `json:"place"`
	PhotoAlbum  string `json:"photoAlbum" gorm:"column:photo_album"`

	Fields VariantFields `json:"fields" gorm:"serializer:json;type:jsonb"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// NoteTag links a note to one isTag-flagged tag.
type NoteTag struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	NoteID uuid.UUID `json:"note_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_note_tag_unique"`
	TagID  uuid.UUID `json:"tag_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_note_tag_unique"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// NotePerson links a note to a person. Person deletion is unguarded,
// so a row here may outlive its person; reads tolerate that.
type NotePerson struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	NoteID   uuid.UUID `json:"note_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_note_person_unique"`
	PersonID uuid.UUID `json:"person_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_note_person_unique"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Note) TableName() string {
	return "notes"
}

func (NoteTag) TableName() string {
	return "note_tags"
}

func (NotePerson) TableName() string {
	return "note_people"
}
