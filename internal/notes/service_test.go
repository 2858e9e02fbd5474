package notes_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"memoir/internal/activity"
	"memoir/internal/notes"
	"memoir/internal/people"
	"memoir/internal/shared/apperrors"
	"memoir/internal/tags"
)

// ---- mock Repository -------------------------------------------------------

type mockNoteRepo struct {
	count              func(ctx context.Context) (int64, error)
	findAll            func(ctx context.Context) ([]notes.Note, error)
	findByID           func(ctx context.Context, id uuid.UUID) (*notes.Note, error)
	findByDateTitle    func(ctx context.Context, date, title string) ([]notes.Note, error)
	create             func(ctx context.Context, note *notes.Note, tagIDs, personIDs []uuid.UUID) error
	update             func(ctx context.Context, note *notes.Note, tagIDs, personIDs []uuid.UUID) error
	delete             func(ctx context.Context, id uuid.UUID) error
	findReferenceNames func(ctx context.Context, noteIDs []uuid.UUID) (*notes.ReferenceNames, error)
	countByTypeTag     func(ctx context.Context, tagID uuid.UUID) (int64, error)
	countByTag         func(ctx context.Context, tagID uuid.UUID) (int64, error)
	countByWorkoutTag  func(ctx context.Context, tagID uuid.UUID) (int64, error)
}

func (m *mockNoteRepo) Count(ctx context.Context) (int64, error) { return m.count(ctx) }
func (m *mockNoteRepo) FindAll(ctx context.Context) ([]notes.Note, error) {
	return m.findAll(ctx)
}
func (m *mockNoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*notes.Note, error) {
	return m.findByID(ctx, id)
}
func (m *mockNoteRepo) FindByDateTitle(ctx context.Context, date, title string) ([]notes.Note, error) {
	return m.findByDateTitle(ctx, date, title)
}
func (m *mockNoteRepo) Create(ctx context.Context, note *notes.Note, tagIDs, personIDs []uuid.UUID) error {
	return m.create(ctx, note, tagIDs, personIDs)
}
func (m *mockNoteRepo) Update(ctx context.Context, note *notes.Note, tagIDs, personIDs []uuid.UUID) error {
	return m.update(ctx, note, tagIDs, personIDs)
}
func (m *mockNoteRepo) Delete(ctx context.Context, id uuid.UUID) error { return m.delete(ctx, id) }
func (m *mockNoteRepo) FindReferenceNames(ctx context.Context, noteIDs []uuid.UUID) (*notes.ReferenceNames, error) {
	return m.findReferenceNames(ctx, noteIDs)
}
func (m *mockNoteRepo) CountByTypeTag(ctx context.Context, tagID uuid.UUID) (int64, error) {
	return m.countByTypeTag(ctx, tagID)
}
func (m *mockNoteRepo) CountByTag(ctx context.Context, tagID uuid.UUID) (int64, error) {
	return m.countByTag(ctx, tagID)
}
func (m *mockNoteRepo) CountByWorkoutTag(ctx context.Context, tagID uuid.UUID) (int64, error) {
	return m.countByWorkoutTag(ctx, tagID)
}

var _ notes.Repository = (*mockNoteRepo)(nil)

// ---- mock resolvers --------------------------------------------------------

// mockTagResolver resolves from a fixture of flagged tags, mirroring
// the flag-scoped master-list query.
type mockTagResolver struct {
	known map[tags.Flag][]tags.Tag
}

func (m *mockTagResolver) ResolveFlagged(_ context.Context, names []string, flag tags.Flag) ([]tags.Tag, error) {
	var resolved []tags.Tag
	for _, name := range names {
		for _, tag := range m.known[flag] {
			if tag.Name == name {
				resolved = append(resolved, tag)
			}
		}
	}
	return resolved, nil
}

type mockPersonResolver struct {
	known []people.Person
}

func (m *mockPersonResolver) ResolveByDisplayNames(_ context.Context, names []string) ([]people.Person, error) {
	var resolved []people.Person
	for _, name := range names {
		for i := range m.known {
			if m.known[i].DisplayName() == name {
				resolved = append(resolved, m.known[i])
			}
		}
	}
	return resolved, nil
}

func defaultTagResolver() *mockTagResolver {
	return &mockTagResolver{known: map[tags.Flag][]tags.Tag{
		tags.FlagType: {
			{ID: uuid.New(), Name: notes.VariantLife, IsType: true},
			{ID: uuid.New(), Name: notes.VariantBook, IsType: true},
			{ID: uuid.New(), Name: notes.VariantWorkout, IsType: true},
			{ID: uuid.New(), Name: "Groceries", IsType: true},
		},
		tags.FlagTag: {
			{ID: uuid.New(), Name: "Travel", IsTag: true},
			{ID: uuid.New(), Name: "Milestone", IsTag: true},
		},
		tags.FlagWorkout: {
			{ID: uuid.New(), Name: "Running", IsWorkout: true},
		},
	}}
}

func noCollision(_ context.Context, _, _ string) ([]notes.Note, error) { return nil, nil }

func newService(repo *mockNoteRepo, tagResolver *mockTagResolver, personResolver *mockPersonResolver) notes.Service {
	return notes.NewService(repo, tagResolver, personResolver, nil, activity.NewNoopPublisher())
}

// ---- CreateNote ------------------------------------------------------------

func TestNoteService_CreateNote_Life(t *testing.T) {
	var created *notes.Note
	repo := &mockNoteRepo{
		findByDateTitle: noCollision,
		create: func(_ context.Context, note *notes.Note, _, _ []uuid.UUID) error {
			note.ID = uuid.New()
			created = note
			return nil
		},
	}
	resolver := defaultTagResolver()
	svc := newService(repo, resolver, &mockPersonResolver{})

	req := validRequest(notes.VariantLife)
	req.Tags = []string{"Travel"}

	got, err := svc.CreateNote(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, notes.VariantLife, created.Variant)
	assert.Equal(t, resolver.known[tags.FlagType][0].ID, created.TypeTagID)
	assert.Nil(t, created.WorkoutTagID)
	assert.Equal(t, notes.VariantLife, got.Type)
	assert.Equal(t, []string{"Travel"}, got.Tags)
}

func TestNoteService_CreateNote_UnknownType(t *testing.T) {
	repo := &mockNoteRepo{findByDateTitle: noCollision}
	svc := newService(repo, defaultTagResolver(), &mockPersonResolver{})

	_, err := svc.CreateNote(context.Background(), validRequest("Diary"))

	var reference *apperrors.ReferenceError
	require.ErrorAs(t, err, &reference)
	assert.Equal(t, "Invalid type: 'Diary'.", reference.Error())
	assert.Equal(t, 422, apperrors.StatusOf(err))
}

func TestNoteService_CreateNote_TypeTagWithUnrecognizedName(t *testing.T) {
	repo := &mockNoteRepo{findByDateTitle: noCollision}
	svc := newService(repo, defaultTagResolver(), &mockPersonResolver{})

	// "Groceries" is a real isType tag, but not a recognized variant
	_, err := svc.CreateNote(context.Background(), validRequest("Groceries"))

	var reference *apperrors.ReferenceError
	require.ErrorAs(t, err, &reference)
	assert.Equal(t, "Invalid type: 'Groceries'.", reference.Error())
}

func TestNoteService_CreateNote_UnknownTags(t *testing.T) {
	repo := &mockNoteRepo{findByDateTitle: noCollision}
	svc := newService(repo, defaultTagResolver(), &mockPersonResolver{})

	req := validRequest(notes.VariantLife)
	req.Tags = []string{"Travel", "Chores", "Errands"}

	_, err := svc.CreateNote(context.Background(), req)

	var reference *apperrors.ReferenceError
	require.ErrorAs(t, err, &reference)
	assert.Equal(t, "Invalid tags: 'Chores', 'Errands'.", reference.Error())
}

func TestNoteService_CreateNote_UnknownPeople(t *testing.T) {
	repo := &mockNoteRepo{findByDateTitle: noCollision}
	personResolver := &mockPersonResolver{known: []people.Person{
		{ID: uuid.New(), FirstName: "Ada", LastName: "Lovelace"},
	}}
	svc := newService(repo, defaultTagResolver(), personResolver)

	req := validRequest(notes.VariantLife)
	req.People = []string{"Ada Lovelace", "Ben Okafor"}

	_, err := svc.CreateNote(context.Background(), req)

	var reference *apperrors.ReferenceError
	require.ErrorAs(t, err, &reference)
	assert.Equal(t, "Invalid people: 'Ben Okafor'.", reference.Error())
}

func TestNoteService_CreateNote_DateTitleConflict(t *testing.T) {
	repo := &mockNoteRepo{
		findByDateTitle: func(_ context.Context, _, _ string) ([]notes.Note, error) {
			return []notes.Note{{ID: uuid.New()}}, nil
		},
	}
	svc := newService(repo, defaultTagResolver(), &mockPersonResolver{})

	_, err := svc.CreateNote(context.Background(), validRequest(notes.VariantLife))

	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "A note dated '2026-08-01' titled 'A title' already exists.", conflict.Error())
}

func TestNoteService_CreateNote_Workout(t *testing.T) {
	var created *notes.Note
	repo := &mockNoteRepo{
		findByDateTitle: noCollision,
		create: func(_ context.Context, note *notes.Note, _, _ []uuid.UUID) error {
			created = note
			return nil
		},
	}
	resolver := defaultTagResolver()
	svc := newService(repo, resolver, &mockPersonResolver{})

	req := validRequest(notes.VariantWorkout)
	req.Workout = "Running"

	got, err := svc.CreateNote(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, created)
	require.NotNil(t, created.WorkoutTagID)
	assert.Equal(t, resolver.known[tags.FlagWorkout][0].ID, *created.WorkoutTagID)
	assert.Equal(t, "Running", got.Workout)
}

func TestNoteService_CreateNote_UnknownWorkout(t *testing.T) {
	repo := &mockNoteRepo{findByDateTitle: noCollision}
	svc := newService(repo, defaultTagResolver(), &mockPersonResolver{})

	req := validRequest(notes.VariantWorkout)
	req.Workout = "Swimming"

	_, err := svc.CreateNote(context.Background(), req)

	var reference *apperrors.ReferenceError
	require.ErrorAs(t, err, &reference)
	assert.Equal(t, "Invalid workout: 'Swimming'.", reference.Error())
}

func TestNoteService_CreateNote_ValidationStopsBeforeReferences(t *testing.T) {
	svc := newService(&mockNoteRepo{}, defaultTagResolver(), &mockPersonResolver{})

	// Missing date and title: reference checks (which would hit the nil
	// repo funcs) must never run.
	_, err := svc.CreateNote(context.Background(), notes.NoteRequest{
		Type:  notes.VariantLife,
		Place: strPtr(""),
	})

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

// ---- UpdateNote ------------------------------------------------------------

func TestNoteService_UpdateNote_PreservesIdentity(t *testing.T) {
	id := uuid.New()
	existing := &notes.Note{ID: id, Variant: notes.VariantLife, Date: "2026-08-01", Title: "A title"}
	var updated *notes.Note
	repo := &mockNoteRepo{
		findByID: func(_ context.Context, _ uuid.UUID) (*notes.Note, error) {
			return existing, nil
		},
		findByDateTitle: func(_ context.Context, _, _ string) ([]notes.Note, error) {
			// Same record holds the natural key
			return []notes.Note{{ID: id}}, nil
		},
		update: func(_ context.Context, note *notes.Note, _, _ []uuid.UUID) error {
			updated = note
			return nil
		},
	}
	svc := newService(repo, defaultTagResolver(), &mockPersonResolver{})

	req := validRequest(notes.VariantBook)
	req.Authors = []string{"Richard Powers"}
	req.Status = "Completed"

	got, err := svc.UpdateNote(context.Background(), id, req)

	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, id, updated.ID, "update keeps the note's identity")
	assert.Equal(t, notes.VariantBook, updated.Variant, "variant follows the new type")
	assert.Equal(t, []string{"Richard Powers"}, got.Authors)
}

func TestNoteService_UpdateNote_NotFound(t *testing.T) {
	id := uuid.New()
	repo := &mockNoteRepo{
		findByID: func(_ context.Context, _ uuid.UUID) (*notes.Note, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newService(repo, defaultTagResolver(), &mockPersonResolver{})

	_, err := svc.UpdateNote(context.Background(), id, validRequest(notes.VariantLife))

	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 404, apperrors.StatusOf(err))
	assert.Equal(t, "No note found with id '"+id.String()+"'.", err.Error())
}

// ---- DeleteNote ------------------------------------------------------------

func TestNoteService_DeleteNote_EchoesExpandedRecord(t *testing.T) {
	id := uuid.New()
	deleted := false
	repo := &mockNoteRepo{
		findByID: func(_ context.Context, _ uuid.UUID) (*notes.Note, error) {
			return &notes.Note{ID: id, Variant: notes.VariantLife, Date: "2026-06-01", Title: "Moved"}, nil
		},
		findReferenceNames: func(_ context.Context, noteIDs []uuid.UUID) (*notes.ReferenceNames, error) {
			require.Equal(t, []uuid.UUID{id}, noteIDs)
			return &notes.ReferenceNames{
				Types:    map[uuid.UUID]string{id: notes.VariantLife},
				Workouts: map[uuid.UUID]string{},
				Tags:     map[uuid.UUID][]string{id: {"Milestone"}},
				People:   map[uuid.UUID][]string{id: {"Alice Hartley"}},
			}, nil
		},
		delete: func(_ context.Context, _ uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	svc := newService(repo, defaultTagResolver(), &mockPersonResolver{})

	got, err := svc.DeleteNote(context.Background(), id)

	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, notes.VariantLife, got.Type)
	assert.Equal(t, []string{"Milestone"}, got.Tags)
	assert.Equal(t, []string{"Alice Hartley"}, got.People)
}

// ---- reference counts ------------------------------------------------------

func TestNoteService_CountsDelegateToRepo(t *testing.T) {
	tagID := uuid.New()
	repo := &mockNoteRepo{
		countByTypeTag:    func(_ context.Context, _ uuid.UUID) (int64, error) { return 3, nil },
		countByTag:        func(_ context.Context, _ uuid.UUID) (int64, error) { return 2, nil },
		countByWorkoutTag: func(_ context.Context, _ uuid.UUID) (int64, error) { return 1, nil },
	}
	svc := newService(repo, defaultTagResolver(), &mockPersonResolver{})

	byType, err := svc.CountByTypeTag(context.Background(), tagID)
	require.NoError(t, err)
	byTag, err := svc.CountByTag(context.Background(), tagID)
	require.NoError(t, err)
	byWorkout, err := svc.CountByWorkoutTag(context.Background(), tagID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), byType)
	assert.Equal(t, int64(2), byTag)
	assert.Equal(t, int64(1), byWorkout)
}
