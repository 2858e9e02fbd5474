package people

import "time"

type PersonResponse struct {
	ID              string        `json:"id"`
	FirstName       string        `json:"firstName"`
	MiddleName      string        `json:"middleName"`
	LastName        string        `json:"lastName"`
	PreferredName   string        `json:"preferredName"`
	Birthdate       string        `json:"birthdate"`
	GooglePhotoURL  string        `json:"googlePhotoUrl"`
	PicasaContactID string        `json:"picasaContactId"`
	Notes           []PersonNote  `json:"notes"`
	Photos          []PersonPhoto `json:"photos"`
	Tags            []string      `json:"tags"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}
