package people

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PersonNote is one dated free-text journal entry embedded in a person
// record.
type PersonNote struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Text string `json:"text" validate:"required"`
}

// PersonPhoto is one embedded photo reference.
type PersonPhoto struct {
	Description string `json:"description"`
	Image       string `json:"image" validate:"required"`
}

// Person is a contact. The embedded notes and photos lists are owned
// by the person and stored as jsonb; tag references live in the
// person_tags join table.
type Person struct {
	ID              uuid.UUID     `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	FirstName       string        `json:"firstName" gorm:"not null;size:25"`
	MiddleName      string        `json:"middleName" gorm:"size:25"`
	LastName        string        `json:"lastName" gorm:"size:25"`
	PreferredName   string        `json:"preferredName" gorm:"size:25"`
	Birthdate       string        `json:"birthdate" gorm:"size:10"`
	GooglePhotoURL  string        `json:"googlePhotoUrl" gorm:"size:250"`
	PicasaContactID string        `json:"picasaContactId" gorm:"size:16"`
	Notes           []PersonNote  `json:"notes" gorm:"serializer:json;type:jsonb"`
	Photos          []PersonPhoto `json:"photos" gorm:"serializer:json;type:jsonb"`
	CreatedAt       time.Time     `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt       time.Time     `json:"updatedAt" gorm:"autoUpdateTime"`
}

// PersonTag links a person to one isPerson-flagged tag.
type PersonTag struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	PersonID uuid.UUID `json:"person_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_person_tag_unique"`
	TagID    uuid.UUID `json:"tag_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_person_tag_unique"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// DisplayName is the name notes reference a person by: first, middle
// and last joined with single spaces, empty parts skipped.
func (p *Person) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{p.FirstName, p.MiddleName, p.LastName} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

func (p *Person) ToResponse(tagNames []string) PersonResponse {
	if tagNames == nil {
		tagNames = []string{}
	}
	return PersonResponse{
		ID:              p.ID.String(),
		FirstName:       p.FirstName,
		MiddleName:      p.MiddleName,
		LastName:        p.LastName,
		PreferredName:   p.PreferredName,
		Birthdate:       p.Birthdate,
		GooglePhotoURL:  p.GooglePhotoURL,
		PicasaContactID: p.PicasaContactID,
		Notes:           p.Notes,
		Photos:          p.Photos,
		Tags:            tagNames,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// TableName specifies the table name for GORM
func (Person) TableName() string {
	return "people"
}

func (PersonTag) TableName() string {
	return "person_tags"
}
