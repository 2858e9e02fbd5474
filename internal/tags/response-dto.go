package tags

import "time"

type TagResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	IsType      bool      `json:"isType"`
	IsTag       bool      `json:"isTag"`
	IsWorkout   bool      `json:"isWorkout"`
	IsPerson    bool      `json:"isPerson"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
