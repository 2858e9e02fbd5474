package notes

import "time"

// NoteResponse is the wire shape of a note with its references
// expanded back to names and the variant payload flattened to the same
// fields the request carries.
type NoteResponse struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Place       string   `json:"place"`
	PhotoAlbum  string   `json:"photoAlbum"`
	People      []string `json:"people"`

	Bike    string      `json:"bike,omitempty"`
	Metrics interface{} `json:"metrics,omitempty"`
	Authors []string    `json:"authors,omitempty"`
	Format  string      `json:"format,omitempty"`
	Status  string      `json:"status,omitempty"`
	Rating  *int        `json:"rating,omitempty"`
	Workout string      `json:"workout,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (n *Note) ToResponse(typeName string, tagNames, peopleNames []string, workoutName string) NoteResponse {
	if tagNames == nil {
		tagNames = []string{}
	}
	if peopleNames == nil {
		peopleNames = []string{}
	}

	response := NoteResponse{
		ID:          n.ID.String(),
		Type:        typeName,
		Tags:        tagNames,
		Date:        n.Date,
		Title:       n.Title,
		Description: n.Description,
		Place:       n.Place,
		PhotoAlbum:  n.PhotoAlbum,
		People:      peopleNames,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}

	switch n.Variant {
	case VariantBikeRide:
		if n.Fields.BikeRide != nil {
			response.Bike = n.Fields.BikeRide.Bike
			if len(n.Fields.BikeRide.Metrics) > 0 {
				response.Metrics = n.Fields.BikeRide.Metrics
			}
		}
	case VariantHike:
		if n.Fields.Hike != nil && len(n.Fields.Hike.Metrics) > 0 {
			response.Metrics = n.Fields.Hike.Metrics
		}
	case VariantBook:
		if n.Fields.Book != nil {
			response.Authors = n.Fields.Book.Authors
			response.Format = n.Fields.Book.Format
			response.Status = n.Fields.Book.Status
			response.Rating = n.Fields.Book.Rating
		}
	case VariantWorkout:
		response.Workout = workoutName
		if n.Fields.Workout != nil && len(n.Fields.Workout.Metrics) > 0 {
			response.Metrics = n.Fields.Workout.Metrics
		}
	}

	return response
}
