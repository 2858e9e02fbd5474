package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the natural-key unique indexes. The services
// run read-then-write uniqueness guards and report collisions as 422;
// these indexes are the store-level backstop for the race between the
// check and the write, where the losing writer surfaces a store error.
func MigrateConstraints(db *gorm.DB) error {
	// No two notes may share a date and title
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_notes_date_title
		ON notes (date, title);
	`).Error
	if err != nil {
		return err
	}

	// No two people may share a full name
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_people_full_name
		ON people (first_name, middle_name, last_name);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
