package people

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// displayNameExpr derives the name notes reference people by. NULLIF
// keeps CONCAT_WS from emitting double spaces for missing middle or
// last names.
const displayNameExpr = "CONCAT_WS(' ', NULLIF(first_name, ''), NULLIF(middle_name, ''), NULLIF(last_name, ''))"

type Repository interface {
	Count(ctx context.Context) (int64, error)
	FindAll(ctx context.Context) ([]Person, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Person, error)
	FindByNaturalKey(ctx context.Context, firstName, middleName, lastName string) ([]Person, error)
	FindByDisplayNames(ctx context.Context, names []string) ([]Person, error)
	Create(ctx context.Context, person *Person, tagIDs []uuid.UUID) error
	Update(ctx context.Context, person *Person, tagIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Tag expansion
	FindTagNames(ctx context.Context, personID uuid.UUID) ([]string, error)
	FindAllTagNames(ctx context.Context) (map[uuid.UUID][]string, error)

	// Referential-integrity count for the tags service
	CountByTag(ctx context.Context, tagID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Person{}).Count(&count).Error
	return count, err
}

func (r *repository) FindAll(ctx context.Context) ([]Person, error) {
	var people []Person
	err := r.db.WithContext(ctx).
		Order("first_name ASC, last_name ASC").
		Find(&people).Error
	return people, err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Person, error) {
	var person Person
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&person).Error
	if err != nil {
		return nil, err
	}
	return &person, nil
}

// FindByNaturalKey returns every person sharing the full-name tuple.
// The tuple is unique, so more than one row is a store-consistency
// fault the caller surfaces as a 500.
func (r *repository) FindByNaturalKey(ctx context.Context, firstName, middleName, lastName string) ([]Person, error) {
	var people []Person
	err := r.db.WithContext(ctx).
		Where("first_name = ? AND middle_name = ? AND last_name = ?", firstName, middleName, lastName).
		Find(&people).Error
	return people, err
}

// FindByDisplayNames resolves the master list for a note's people
// references: exactly the supplied display names.
func (r *repository) FindByDisplayNames(ctx context.Context, names []string) ([]Person, error) {
	var people []Person
	if len(names) == 0 {
		return people, nil
	}

	err := r.db.WithContext(ctx).
		Where(displayNameExpr+" IN ?", names).
		Find(&people).Error
	return people, err
}

func (r *repository) Create(ctx context.Context, person *Person, tagIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(person).Error; err != nil {
			return err
		}
		return createPersonTags(tx, person.ID, tagIDs)
	})
}

func (r *repository) Update(ctx context.Context, person *Person, tagIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(person).Error; err != nil {
			return err
		}

		// Replace the join rows wholesale
		if err := tx.Where("person_id = ?", person.ID).Delete(&PersonTag{}).Error; err != nil {
			return err
		}
		return createPersonTags(tx, person.ID, tagIDs)
	})
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("person_id = ?", id).Delete(&PersonTag{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Person{}).Error
	})
}

func createPersonTags(tx *gorm.DB, personID uuid.UUID, tagIDs []uuid.UUID) error {
	for _, tagID := range tagIDs {
		personTag := PersonTag{
			PersonID: personID,
			TagID:    tagID,
		}
		if err := tx.Create(&personTag).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) FindTagNames(ctx context.Context, personID uuid.UUID) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("tags").
		Joins("JOIN person_tags ON tags.id = person_tags.tag_id").
		Where("person_tags.person_id = ?", personID).
		Order("tags.name ASC").
		Pluck("tags.name", &names).Error
	return names, err
}

func (r *repository) FindAllTagNames(ctx context.Context) (map[uuid.UUID][]string, error) {
	type row struct {
		PersonID uuid.UUID
		Name     string
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Table("person_tags").
		Select("person_tags.person_id, tags.name").
		Joins("JOIN tags ON tags.id = person_tags.tag_id").
		Order("tags.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID][]string, len(rows))
	for _, r := range rows {
		names[r.PersonID] = append(names[r.PersonID], r.Name)
	}
	return names, nil
}

func (r *repository) CountByTag(ctx context.Context, tagID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PersonTag{}).
		Where("tag_id = ?", tagID).
		Count(&count).Error
	return count, err
}
