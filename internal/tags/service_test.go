package tags_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"memoir/internal/activity"
	"memoir/internal/shared/apperrors"
	"memoir/internal/tags"
)

// ---- mock Repository -------------------------------------------------------

type mockTagRepo struct {
	count       func(ctx context.Context) (int64, error)
	findAll     func(ctx context.Context) ([]tags.Tag, error)
	findByID    func(ctx context.Context, id uuid.UUID) (*tags.Tag, error)
	findByName  func(ctx context.Context, name string) ([]tags.Tag, error)
	findByNames func(ctx context.Context, names []string, flag tags.Flag) ([]tags.Tag, error)
	create      func(ctx context.Context, tag *tags.Tag) error
	update      func(ctx context.Context, tag *tags.Tag) error
	delete      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTagRepo) Count(ctx context.Context) (int64, error) { return m.count(ctx) }
func (m *mockTagRepo) FindAll(ctx context.Context) ([]tags.Tag, error) {
	return m.findAll(ctx)
}
func (m *mockTagRepo) FindByID(ctx context.Context, id uuid.UUID) (*tags.Tag, error) {
	return m.findByID(ctx, id)
}
func (m *mockTagRepo) FindByName(ctx context.Context, name string) ([]tags.Tag, error) {
	return m.findByName(ctx, name)
}
func (m *mockTagRepo) FindByNames(ctx context.Context, names []string, flag tags.Flag) ([]tags.Tag, error) {
	return m.findByNames(ctx, names, flag)
}
func (m *mockTagRepo) Create(ctx context.Context, tag *tags.Tag) error { return m.create(ctx, tag) }
func (m *mockTagRepo) Update(ctx context.Context, tag *tags.Tag) error { return m.update(ctx, tag) }
func (m *mockTagRepo) Delete(ctx context.Context, id uuid.UUID) error  { return m.delete(ctx, id) }

var _ tags.Repository = (*mockTagRepo)(nil)

// ---- mock reference counters -----------------------------------------------

type mockNoteCounter struct {
	byType    int64
	byTag     int64
	byWorkout int64
	err       error
}

func (m *mockNoteCounter) CountByTypeTag(_ context.Context, _ uuid.UUID) (int64, error) {
	return m.byType, m.err
}
func (m *mockNoteCounter) CountByTag(_ context.Context, _ uuid.UUID) (int64, error) {
	return m.byTag, m.err
}
func (m *mockNoteCounter) CountByWorkoutTag(_ context.Context, _ uuid.UUID) (int64, error) {
	return m.byWorkout, m.err
}

type mockPersonCounter struct {
	byTag int64
	err   error
}

func (m *mockPersonCounter) CountByTag(_ context.Context, _ uuid.UUID) (int64, error) {
	return m.byTag, m.err
}

func newService(repo *mockTagRepo, noteCounts *mockNoteCounter, personCounts *mockPersonCounter) tags.Service {
	svc := tags.NewService(repo, nil, activity.NewNoopPublisher())
	svc.SetNoteCounter(noteCounts)
	svc.SetPersonCounter(personCounts)
	return svc
}

func strPtr(s string) *string { return &s }

// ---- CreateTag -------------------------------------------------------------

func TestTagService_CreateTag_OK(t *testing.T) {
	var created *tags.Tag
	repo := &mockTagRepo{
		findByName: func(_ context.Context, _ string) ([]tags.Tag, error) { return nil, nil },
		create: func(_ context.Context, tag *tags.Tag) error {
			tag.ID = uuid.New()
			created = tag
			return nil
		},
	}
	svc := newService(repo, &mockNoteCounter{}, &mockPersonCounter{})

	got, err := svc.CreateTag(context.Background(), tags.TagRequest{
		Name:        "  Running  ",
		Description: strPtr("Road and trail runs"),
		IsWorkout:   true,
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Running", created.Name, "name is trimmed before persistence")
	assert.True(t, created.IsWorkout)
	assert.Equal(t, "Running", got.Name)
}

func TestTagService_CreateTag_EmptyDescriptionAllowed(t *testing.T) {
	repo := &mockTagRepo{
		findByName: func(_ context.Context, _ string) ([]tags.Tag, error) { return nil, nil },
		create:     func(_ context.Context, _ *tags.Tag) error { return nil },
	}
	svc := newService(repo, &mockNoteCounter{}, &mockPersonCounter{})

	_, err := svc.CreateTag(context.Background(), tags.TagRequest{
		Name:        "Travel",
		Description: strPtr(""),
	})

	assert.NoError(t, err, "description must be present but may be empty")
}

func TestTagService_CreateTag_MissingFields(t *testing.T) {
	svc := newService(&mockTagRepo{}, &mockNoteCounter{}, &mockPersonCounter{})

	_, err := svc.CreateTag(context.Background(), tags.TagRequest{})

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 422, apperrors.StatusOf(err))

	fields := make([]string, len(validationErr.Violations))
	for i, v := range validationErr.Violations {
		fields[i] = v.Field
	}
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "description")
}

func TestTagService_CreateTag_NameConflict(t *testing.T) {
	existing := tags.Tag{ID: uuid.New(), Name: "Travel"}
	repo := &mockTagRepo{
		findByName: func(_ context.Context, _ string) ([]tags.Tag, error) {
			return []tags.Tag{existing}, nil
		},
	}
	svc := newService(repo, &mockNoteCounter{}, &mockPersonCounter{})

	_, err := svc.CreateTag(context.Background(), tags.TagRequest{
		Name:        "Travel",
		Description: strPtr(""),
	})

	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "A tag named 'Travel' already exists.", conflict.Error())
	assert.Equal(t, 422, apperrors.StatusOf(err))
}

func TestTagService_CreateTag_DuplicateNameRowsIs500(t *testing.T) {
	repo := &mockTagRepo{
		findByName: func(_ context.Context, _ string) ([]tags.Tag, error) {
			return []tags.Tag{{ID: uuid.New()}, {ID: uuid.New()}}, nil
		},
	}
	svc := newService(repo, &mockNoteCounter{}, &mockPersonCounter{})

	_, err := svc.CreateTag(context.Background(), tags.TagRequest{
		Name:        "Travel",
		Description: strPtr(""),
	})

	require.Error(t, err)
	assert.Equal(t, 500, apperrors.StatusOf(err))
}

// ---- GetTagByID ------------------------------------------------------------

func TestTagService_GetTagByID_NotFound(t *testing.T) {
	id := uuid.New()
	repo := &mockTagRepo{
		findByID: func(_ context.Context, _ uuid.UUID) (*tags.Tag, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newService(repo, &mockNoteCounter{}, &mockPersonCounter{})

	_, err := svc.GetTagByID(context.Background(), id)

	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 404, apperrors.StatusOf(err))
	assert.Equal(t, "No tag found with id '"+id.String()+"'.", err.Error())
}

// ---- DeleteTag -------------------------------------------------------------

func TestTagService_DeleteTag_OK(t *testing.T) {
	id := uuid.New()
	deleted := false
	repo := &mockTagRepo{
		findByID: func(_ context.Context, _ uuid.UUID) (*tags.Tag, error) {
			return &tags.Tag{ID: id, Name: "Travel", IsTag: true}, nil
		},
		delete: func(_ context.Context, _ uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	svc := newService(repo, &mockNoteCounter{}, &mockPersonCounter{})

	got, err := svc.DeleteTag(context.Background(), id)

	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, "Travel", got.Name, "response echoes the deleted tag")
}

func TestTagService_DeleteTag_BlockedByNoteReferences(t *testing.T) {
	id := uuid.New()
	repo := &mockTagRepo{
		findByID: func(_ context.Context, _ uuid.UUID) (*tags.Tag, error) {
			return &tags.Tag{ID: id, Name: "Bike Ride", IsType: true}, nil
		},
		delete: func(_ context.Context, _ uuid.UUID) error {
			t.Fatal("delete must not run while references exist")
			return nil
		},
	}
	svc := newService(repo, &mockNoteCounter{byType: 3}, &mockPersonCounter{})

	_, err := svc.DeleteTag(context.Background(), id)

	var integrity *apperrors.IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, 422, apperrors.StatusOf(err))
	assert.Equal(t, []string{
		"Cannot delete: tag is still referenced.",
		"3 notes.type",
	}, integrity.Messages())
}

func TestTagService_DeleteTag_ReportsEveryNonzeroCategory(t *testing.T) {
	id := uuid.New()
	repo := &mockTagRepo{
		findByID: func(_ context.Context, _ uuid.UUID) (*tags.Tag, error) {
			return &tags.Tag{ID: id, Name: "Family"}, nil
		},
	}
	svc := newService(repo, &mockNoteCounter{byTag: 2}, &mockPersonCounter{byTag: 5})

	_, err := svc.DeleteTag(context.Background(), id)

	var integrity *apperrors.IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, []string{
		"Cannot delete: tag is still referenced.",
		"2 notes.tags",
		"5 people.tags",
	}, integrity.Messages())
}

func TestTagService_DeleteTag_CounterFailureIs500(t *testing.T) {
	id := uuid.New()
	repo := &mockTagRepo{
		findByID: func(_ context.Context, _ uuid.UUID) (*tags.Tag, error) {
			return &tags.Tag{ID: id}, nil
		},
	}
	svc := newService(repo, &mockNoteCounter{err: assert.AnError}, &mockPersonCounter{})

	_, err := svc.DeleteTag(context.Background(), id)

	require.Error(t, err)
	assert.Equal(t, 500, apperrors.StatusOf(err))
}

// ---- UpdateTag -------------------------------------------------------------

func TestTagService_UpdateTag_ClearingReferencedFlagBlocked(t *testing.T) {
	id := uuid.New()
	repo := &mockTagRepo{
		findByID: func(_ context.Context, _ uuid.UUID) (*tags.Tag, error) {
			return &tags.Tag{ID: id, Name: "Family", IsTag: true, IsPerson: true}, nil
		},
		findByName: func(_ context.Context, _ string) ([]tags.Tag, error) {
			return []tags.Tag{{ID: id, Name: "Family"}}, nil
		},
		update: func(_ context.Context, _ *tags.Tag) error {
			t.Fatal("update must not run while references exist")
			return nil
		},
	}
	svc := newService(repo, &mockNoteCounter{}, &mockPersonCounter{byTag: 4})

	// Clears isPerson while four people still carry the tag
	_, err := svc.UpdateTag(context.Background(), id, tags.TagRequest{
		Name:        "Family",
		Description: strPtr(""),
		IsTag:       true,
		IsPerson:    false,
	})

	var integrity *apperrors.IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, []string{
		"Cannot update: tag is still referenced.",
		"4 people.tags",
	}, integrity.Messages())
}

func TestTagService_UpdateTag_SettingFlagsNeverBlocked(t *testing.T) {
	id := uuid.New()
	var updated *tags.Tag
	repo := &mockTagRepo{
		findByID: func(_ context.Context, _ uuid.UUID) (*tags.Tag, error) {
			return &tags.Tag{ID: id, Name: "Family", IsPerson: true}, nil
		},
		findByName: func(_ context.Context, _ string) ([]tags.Tag, error) {
			return []tags.Tag{{ID: id, Name: "Family"}}, nil
		},
		update: func(_ context.Context, tag *tags.Tag) error {
			updated = tag
			return nil
		},
	}
	// Heavy reference counts everywhere; setting a new flag ignores them
	svc := newService(repo, &mockNoteCounter{byType: 9, byTag: 9, byWorkout: 9}, &mockPersonCounter{byTag: 9})

	got, err := svc.UpdateTag(context.Background(), id, tags.TagRequest{
		Name:        "Family",
		Description: strPtr(""),
		IsPerson:    true,
		IsTag:       true,
	})

	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.IsTag)
	assert.True(t, got.IsTag)
}

func TestTagService_UpdateTag_RenameToSelfAllowed(t *testing.T) {
	id := uuid.New()
	repo := &mockTagRepo{
		findByID: func(_ context.Context, _ uuid.UUID) (*tags.Tag, error) {
			return &tags.Tag{ID: id, Name: "Travel", IsTag: true}, nil
		},
		findByName: func(_ context.Context, _ string) ([]tags.Tag, error) {
			return []tags.Tag{{ID: id, Name: "Travel"}}, nil
		},
		update: func(_ context.Context, _ *tags.Tag) error { return nil },
	}
	svc := newService(repo, &mockNoteCounter{}, &mockPersonCounter{})

	_, err := svc.UpdateTag(context.Background(), id, tags.TagRequest{
		Name:        "Travel",
		Description: strPtr("Trips and vacations"),
		IsTag:       true,
	})

	assert.NoError(t, err, "a tag's own name is not a collision")
}

// ---- ResolveFlagged --------------------------------------------------------

func TestTagService_ResolveFlagged_PassesFlagThrough(t *testing.T) {
	var capturedFlag tags.Flag
	repo := &mockTagRepo{
		findByNames: func(_ context.Context, names []string, flag tags.Flag) ([]tags.Tag, error) {
			capturedFlag = flag
			resolved := make([]tags.Tag, len(names))
			for i, name := range names {
				resolved[i] = tags.Tag{ID: uuid.New(), Name: name}
			}
			return resolved, nil
		},
	}
	svc := newService(repo, &mockNoteCounter{}, &mockPersonCounter{})

	got, err := svc.ResolveFlagged(context.Background(), []string{"Running"}, tags.FlagWorkout)

	require.NoError(t, err)
	assert.Equal(t, tags.FlagWorkout, capturedFlag)
	require.Len(t, got, 1)
	assert.Equal(t, "Running", got[0].Name)
}
