package tags

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a shared taxonomy entry. The four capability flags are
// independent: one tag may simultaneously classify note types, generic
// note tags, workout kinds and people.
type Tag struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;size:25"`
	Description string    `json:"description" gorm:"size:500"`
	Image       string    `json:"image" gorm:"size:250"`
	IsType      bool      `json:"isType" gorm:"not null;default:false"`
	IsTag       bool      `json:"isTag" gorm:"not null;default:false"`
	IsWorkout   bool      `json:"isWorkout" gorm:"not null;default:false"`
	IsPerson    bool      `json:"isPerson" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Flag identifies one capability flag by its column name, so flag-
// scoped queries can filter on it directly.
type Flag string

const (
	FlagType    Flag = "is_type"
	FlagTag     Flag = "is_tag"
	FlagWorkout Flag = "is_workout"
	FlagPerson  Flag = "is_person"
)

func (t *Tag) ToResponse() TagResponse {
	return TagResponse{
		ID:          t.ID.String(),
		Name:        t.Name,
		Description: t.Description,
		Image:       t.Image,
		IsType:      t.IsType,
		IsTag:       t.IsTag,
		IsWorkout:   t.IsWorkout,
		IsPerson:    t.IsPerson,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TableName specifies the table name for GORM
func (Tag) TableName() string {
	return "tags"
}
