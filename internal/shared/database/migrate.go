package database

import (
	"memoir/internal/auth"
	"memoir/internal/notes"
	"memoir/internal/people"
	"memoir/internal/tags"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// uuid_generate_v4 defaults on primary keys
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	if err := db.AutoMigrate(
		&auth.User{},
		&tags.Tag{},
		&people.Person{},
		&people.PersonTag{},
		&notes.Note{},
		&notes.NoteTag{},
		&notes.NotePerson{},
	); err != nil {
		return err
	}

	return MigrateConstraints(db)
}
