package notes

import (
	"encoding/json"
	"strings"
)

// NoteRequest is the create/update payload for every variant: the
// envelope fields plus the union of all variant fields. Which variant
// fields apply is decided by the type discriminator. Metrics stays raw
// until the variant is known, because bike rides, hikes and workouts
// disagree on its element shape. Place is a pointer so "key present
// with empty string" and "key absent" stay distinguishable.
type NoteRequest struct {
	Type        string   `json:"type" validate:"required"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date" validate:"required,datetime=2006-01-02"`
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description"`
	Place       *string  `json:"place" validate:"required"`
	PhotoAlbum  string   `json:"photoAlbum"`
	People      []string `json:"people"`

	// Bike Ride
	Bike string `json:"bike,omitempty"`

	// Bike Ride / Hike / Workout
	Metrics json.RawMessage `json:"metrics,omitempty"`

	// Book
	Authors []string `json:"authors,omitempty"`
	Format  string   `json:"format,omitempty"`
	Status  string   `json:"status,omitempty"`
	Rating  *float64 `json:"rating,omitempty"`

	// Workout
	Workout string `json:"workout,omitempty"`
}

// Normalize trims every string field, including list elements, before
// rule evaluation.
func (r *NoteRequest) Normalize() {
	r.Type = strings.TrimSpace(r.Type)
	r.Date = strings.TrimSpace(r.Date)
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	if r.Place != nil {
		trimmed := strings.TrimSpace(*r.Place)
		r.Place = &trimmed
	}
	r.PhotoAlbum = strings.TrimSpace(r.PhotoAlbum)
	r.Bike = strings.TrimSpace(r.Bike)
	r.Format = strings.TrimSpace(r.Format)
	r.Status = strings.TrimSpace(r.Status)
	r.Workout = strings.TrimSpace(r.Workout)

	for i := range r.Tags {
		r.Tags[i] = strings.TrimSpace(r.Tags[i])
	}
	for i := range r.People {
		r.People[i] = strings.TrimSpace(r.People[i])
	}
	for i := range r.Authors {
		r.Authors[i] = strings.TrimSpace(r.Authors[i])
	}
}
