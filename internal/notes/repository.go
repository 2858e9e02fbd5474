package notes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// personDisplayNameExpr matches the people repository's derivation of
// a person's display name.
const personDisplayNameExpr = "CONCAT_WS(' ', NULLIF(people.first_name, ''), NULLIF(people.middle_name, ''), NULLIF(people.last_name, ''))"

// ReferenceNames carries the expanded names for a set of notes, keyed
// by note ID. People deleted since the note was written are simply
// absent.
type ReferenceNames struct {
	Types    map[uuid.UUID]string
	Workouts map[uuid.UUID]string
	Tags     map[uuid.UUID][]string
	People   map[uuid.UUID][]string
}

type Repository interface {
	Count(ctx context.Context) (int64, error)
	FindAll(ctx context.Context) ([]Note, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Note, error)
	FindByDateTitle(ctx context.Context, date, title string) ([]Note, error)
	Create(ctx context.Context, note *Note, tagIDs, personIDs []uuid.UUID) error
	Update(ctx context.Context, note *Note, tagIDs, personIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Reference expansion
	FindReferenceNames(ctx context.Context, noteIDs []uuid.UUID) (*ReferenceNames, error)

	// Referential-integrity counts for the tags service
	CountByTypeTag(ctx context.Context, tagID uuid.UUID) (int64, error)
	CountByTag(ctx context.Context, tagID uuid.UUID) (int64, error)
	CountByWorkoutTag(ctx context.Context, tagID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Note{}).Count(&count).Error
	return count, err
}

func (r *repository) FindAll(ctx context.Context) ([]Note, error) {
	var notes []Note
	err := r.db.WithContext(ctx).Order("date DESC").Find(&notes).Error
	return notes, err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Note, error) {
	var note Note
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&note).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// FindByDateTitle returns every note sharing the (date, title) natural
// key. The pair is unique, so more than one row is a store-consistency
// fault the caller surfaces as a 500.
func (r *repository) FindByDateTitle(ctx context.Context, date, title string) ([]Note, error) {
	var notes []Note
	err := r.db.WithContext(ctx).
		Where("date = ? AND title = ?", date, title).
		Find(&notes).Error
	return notes, err
}

func (r *repository) Create(ctx context.Context, note *Note, tagIDs, personIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(note).Error; err != nil {
			return err
		}
		return createNoteJoins(tx, note.ID, tagIDs, personIDs)
	})
}

func (r *repository) Update(ctx context.Context, note *Note, tagIDs, personIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(note).Error; err != nil {
			return err
		}

		// Replace the join rows wholesale
		if err := tx.Where("note_id = ?", note.ID).Delete(&NoteTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("note_id = ?", note.ID).Delete(&NotePerson{}).Error; err != nil {
			return err
		}
		return createNoteJoins(tx, note.ID, tagIDs, personIDs)
	})
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", id).Delete(&NoteTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("note_id = ?", id).Delete(&NotePerson{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Note{}).Error
	})
}

func createNoteJoins(tx *gorm.DB, noteID uuid.UUID, tagIDs, personIDs []uuid.UUID) error {
	for _, tagID := range tagIDs {
		noteTag := NoteTag{NoteID: noteID, TagID: tagID}
		if err := tx.Create(&noteTag).Error; err != nil {
			return err
		}
	}
	for _, personID := range personIDs {
		notePerson := NotePerson{NoteID: noteID, PersonID: personID}
		if err := tx.Create(&notePerson).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) FindReferenceNames(ctx context.Context, noteIDs []uuid.UUID) (*ReferenceNames, error) {
	names := &ReferenceNames{
		Types:    make(map[uuid.UUID]string),
		Workouts: make(map[uuid.UUID]string),
		Tags:     make(map[uuid.UUID][]string),
		People:   make(map[uuid.UUID][]string),
	}
	if len(noteIDs) == 0 {
		return names, nil
	}

	type row struct {
		NoteID uuid.UUID
		Name   string
	}

	var typeRows []row
	err := r.db.WithContext(ctx).
		Table("notes").
		Select("notes.id AS note_id, tags.name").
		Joins("JOIN tags ON tags.id = notes.type_tag_id").
		Where("notes.id IN ?", noteIDs).
		Scan(&typeRows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range typeRows {
		names.Types[r.NoteID] = r.Name
	}

	var workoutRows []row
	err = r.db.WithContext(ctx).
		Table("notes").
		Select("notes.id AS note_id, tags.name").
		Joins("JOIN tags ON tags.id = notes.workout_tag_id").
		Where("notes.id IN ?", noteIDs).
		Scan(&workoutRows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range workoutRows {
		names.Workouts[r.NoteID] = r.Name
	}

	var tagRows []row
	err = r.db.WithContext(ctx).
		Table("note_tags").
		Select("note_tags.note_id, tags.name").
		Joins("JOIN tags ON tags.id = note_tags.tag_id").
		Where("note_tags.note_id IN ?", noteIDs).
		Order("tags.name ASC").
		Scan(&tagRows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range tagRows {
		names.Tags[r.NoteID] = append(names.Tags[r.NoteID], r.Name)
	}

	var peopleRows []row
	err = r.db.WithContext(ctx).
		Table("note_people").
		Select("note_people.note_id, "+personDisplayNameExpr+" AS name").
		Joins("JOIN people ON people.id = note_people.person_id").
		Where("note_people.note_id IN ?", noteIDs).
		Order("name ASC").
		Scan(&peopleRows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range peopleRows {
		names.People[r.NoteID] = append(names.People[r.NoteID], r.Name)
	}

	return names, nil
}

func (r *repository) CountByTypeTag(ctx context.Context, tagID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Note{}).
		Where("type_tag_id = ?", tagID).
		Count(&count).Error
	return count, err
}

func (r *repository) CountByTag(ctx context.Context, tagID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&NoteTag{}).
		Where("tag_id = ?", tagID).
		Count(&count).Error
	return count, err
}

func (r *repository) CountByWorkoutTag(ctx context.Context, tagID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Note{}).
		Where("workout_tag_id = ?", tagID).
		Count(&count).Error
	return count, err
}
