package tags

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Count(ctx context.Context) (int64, error)
	FindAll(ctx context.Context) ([]Tag, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Tag, error)
	FindByName(ctx context.Context, name string) ([]Tag, error)
	FindByNames(ctx context.Context, names []string, flag Flag) ([]Tag, error)
	Create(ctx context.Context, tag *Tag) error
	Update(ctx context.Context, tag *Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Tag{}).Count(&count).Error
	return count, err
}

func (r *repository) FindAll(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Tag, error) {
	var tag Tag
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByName returns every tag carrying the name. The name column is
// unique, so more than one row is a store-consistency fault the caller
// surfaces as a 500.
func (r *repository) FindByName(ctx context.Context, name string) ([]Tag, error) {
	var tags []Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).Find(&tags).Error
	return tags, err
}

// FindByNames resolves the master list for reference validation:
// exactly the supplied names, restricted to tags carrying the required
// capability flag.
func (r *repository) FindByNames(ctx context.Context, names []string, flag Flag) ([]Tag, error) {
	var tags []Tag
	if len(names) == 0 {
		return tags, nil
	}

	err := r.db.WithContext(ctx).
		Where("name IN ?", names).
		Where(string(flag)+" = ?", true).
		Find(&tags).Error
	return tags, err
}

func (r *repository) Create(ctx context.Context, tag *Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *repository) Update(ctx context.Context, tag *Tag) error {
	return r.db.WithContext(ctx).Save(tag).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Tag{}).Error
}
