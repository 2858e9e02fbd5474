package notes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"memoir/internal/activity"
	"memoir/internal/people"
	"memoir/internal/shared/apperrors"
	"memoir/internal/shared/constants"
	"memoir/internal/shared/refs"
	"memoir/internal/tags"
	"memoir/pkg/cache"
	"memoir/pkg/logger"
)

// TagResolver is the slice of the tags service this package needs.
type TagResolver interface {
	ResolveFlagged(ctx context.Context, names []string, flag tags.Flag) ([]tags.Tag, error)
}

// PersonResolver is the slice of the people service this package needs.
type PersonResolver interface {
	ResolveByDisplayNames(ctx context.Context, names []string) ([]people.Person, error)
}

type Service interface {
	Count(ctx context.Context) (int64, error)
	GetAllNotes(ctx context.Context) ([]NoteResponse, error)
	GetNoteByID(ctx context.Context, id uuid.UUID) (*NoteResponse, error)
	CreateNote(ctx context.Context, req NoteRequest) (*NoteResponse, error)
	UpdateNote(ctx context.Context, id uuid.UUID, req NoteRequest) (*NoteResponse, error)
	DeleteNote(ctx context.Context, id uuid.UUID) (*NoteResponse, error)

	// Referential-integrity counts for the tags service's guard
	CountByTypeTag(ctx context.Context, tagID uuid.UUID) (int64, error)
	CountByTag(ctx context.Context, tagID uuid.UUID) (int64, error)
	CountByWorkoutTag(ctx context.Context, tagID uuid.UUID) (int64, error)
}

type service struct {
	repo           Repository
	tagResolver    TagResolver
	personResolver PersonResolver
	cache          cache.Service
	activity       activity.Publisher
}

func NewService(repo Repository, tagResolver TagResolver, personResolver PersonResolver, cacheService cache.Service, publisher activity.Publisher) Service {
	return &service{
		repo:           repo,
		tagResolver:    tagResolver,
		personResolver: personResolver,
		cache:          cacheService,
		activity:       publisher,
	}
}

// Read operations

func (s *service) Count(ctx context.Context) (int64, error) {
	if s.cache != nil {
		var cached int64
		if err := s.cache.Get(ctx, constants.CACHE_KEY_NOTES_COUNT, &cached); err == nil {
			return cached, nil
		}
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperrors.Internal("notes: counting notes", err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, constants.CACHE_KEY_NOTES_COUNT, count, constants.TTL_COUNT)
	}
	return count, nil
}

func (s *service) GetAllNotes(ctx context.Context) ([]NoteResponse, error) {
	if s.cache != nil {
		var cached []NoteResponse
		if err := s.cache.Get(ctx, constants.CACHE_KEY_NOTES_LIST, &cached); err == nil {
			return cached, nil
		}
	}

	notes, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("notes: fetching notes", err)
	}

	noteIDs := make([]uuid.UUID, len(notes))
	for i, note := range notes {
		noteIDs[i] = note.ID
	}

	names, err := s.repo.FindReferenceNames(ctx, noteIDs)
	if err != nil {
		return nil, apperrors.Internal("notes: expanding references", err)
	}

	responses := make([]NoteResponse, len(notes))
	for i, note := range notes {
		responses[i] = note.ToResponse(
			names.Types[note.ID],
			names.Tags[note.ID],
			names.People[note.ID],
			names.Workouts[note.ID],
		)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, constants.CACHE_KEY_NOTES_LIST, responses, constants.TTL_LIST)
	}
	return responses, nil
}

func (s *service) GetNoteByID(ctx context.Context, id uuid.UUID) (*NoteResponse, error) {
	key := constants.CACHE_KEY_NOTE_DETAIL + id.String()
	if s.cache != nil {
		var cached NoteResponse
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "note", ID: id.String()}
		}
		return nil, apperrors.Internal("notes: fetching note", err)
	}

	response, err := s.expand(ctx, note)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, response, constants.TTL_DETAIL)
	}
	return response, nil
}

func (s *service) expand(ctx context.Context, note *Note) (*NoteResponse, error) {
	names, err := s.repo.FindReferenceNames(ctx, []uuid.UUID{note.ID})
	if err != nil {
		return nil, apperrors.Internal("notes: expanding references", err)
	}

	response := note.ToResponse(
		names.Types[note.ID],
		names.Tags[note.ID],
		names.People[note.ID],
		names.Workouts[note.ID],
	)
	return &response, nil
}

// Referential-integrity counts

func (s *service) CountByTypeTag(ctx context.Context, tagID uuid.UUID) (int64, error) {
	return s.repo.CountByTypeTag(ctx, tagID)
}

func (s *service) CountByTag(ctx context.Context, tagID uuid.UUID) (int64, error) {
	return s.repo.CountByTag(ctx, tagID)
}

func (s *service) CountByWorkoutTag(ctx context.Context, tagID uuid.UUID) (int64, error) {
	return s.repo.CountByWorkoutTag(ctx, tagID)
}

// Mutations

func (s *service) CreateNote(ctx context.Context, req NoteRequest) (*NoteResponse, error) {
	req.Normalize()
	fields, violations := req.Validate()
	if len(violations) > 0 {
		return nil, &apperrors.ValidationError{Violations: violations}
	}

	resolved, err := s.checkReferences(ctx, req, uuid.Nil)
	if err != nil {
		return nil, err
	}

	note := s.construct(req, fields, resolved)

	if err := s.repo.Create(ctx, note, resolved.tagIDs, resolved.personIDs); err != nil {
		return nil, apperrors.Internal("notes: creating note", err)
	}

	s.invalidateCaches(ctx)
	s.publish(ctx, note.ID.String(), activity.ActionCreated)
	logger.GetDefault().LogRecordMutation(ctx, "note", note.ID.String(), activity.ActionCreated)

	response := note.ToResponse(resolved.typeTag.Name, resolved.tagNames, resolved.peopleNames, resolved.workoutName())
	return &response, nil
}

func (s *service) UpdateNote(ctx context.Context, id uuid.UUID, req NoteRequest) (*NoteResponse, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "note", ID: id.String()}
		}
		return nil, apperrors.Internal("notes: fetching note", err)
	}

	req.Normalize()
	fields, violations := req.Validate()
	if len(violations) > 0 {
		return nil, &apperrors.ValidationError{Violations: violations}
	}

	resolved, err := s.checkReferences(ctx, req, current.ID)
	if err != nil {
		return nil, err
	}

	// Same construction as create, preserving identity and createdAt
	rebuilt := s.construct(req, fields, resolved)
	rebuilt.ID = current.ID
	rebuilt.CreatedAt = current.CreatedAt

	if err := s.repo.Update(ctx, rebuilt, resolved.tagIDs, resolved.personIDs); err != nil {
		return nil, apperrors.Internal("notes: updating note", err)
	}

	s.invalidateCaches(ctx)
	s.publish(ctx, rebuilt.ID.String(), activity.ActionUpdated)
	logger.GetDefault().LogRecordMutation(ctx, "note", rebuilt.ID.String(), activity.ActionUpdated)

	response := rebuilt.ToResponse(resolved.typeTag.Name, resolved.tagNames, resolved.peopleNames, resolved.workoutName())
	return &response, nil
}

func (s *service) DeleteNote(ctx context.Context, id uuid.UUID) (*NoteResponse, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "note", ID: id.String()}
		}
		return nil, apperrors.Internal("notes: fetching note", err)
	}

	response, err := s.expand(ctx, current)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, apperrors.Internal("notes: deleting note", err)
	}

	s.invalidateCaches(ctx)
	s.publish(ctx, id.String(), activity.ActionDeleted)
	logger.GetDefault().LogRecordMutation(ctx, "note", id.String(), activity.ActionDeleted)

	return response, nil
}

// construct builds the variant-tagged note from a validated payload
// and resolved references.
func (s *service) construct(req NoteRequest, fields *VariantFields, resolved *resolvedReferences) *Note {
	note := &Note{
		Variant:     resolved.typeTag.Name,
		TypeTagID:   resolved.typeTag.ID,
		Date:        req.Date,
		Title:       req.Title,
		Description: req.Description,
		Place:       *req.Place,
		PhotoAlbum:  req.PhotoAlbum,
		Fields:      *fields,
	}
	if resolved.workoutTag != nil {
		workoutTagID := resolved.workoutTag.ID
		note.WorkoutTagID = &workoutTagID
	}
	return note
}

// Reference validation + uniqueness guard

type resolvedReferences struct {
	typeTag     tags.Tag
	tagIDs      []uuid.UUID
	tagNames    []string
	personIDs   []uuid.UUID
	peopleNames []string
	workoutTag  *tags.Tag
}

func (r *resolvedReferences) workoutName() string {
	if r.workoutTag == nil {
		return ""
	}
	return r.workoutTag.Name
}

// checkReferences fans the type, tags, people and workout resolutions
// plus the (date, title) uniqueness guard out as independent lookups
// and joins them; all must succeed before construction.
func (s *service) checkReferences(ctx context.Context, req NoteRequest, excludeID uuid.UUID) (*resolvedReferences, error) {
	resolved := &resolvedReferences{}

	var (
		wg sync.WaitGroup

		typeErr    error
		tagsErr    error
		peopleErr  error
		workoutErr error
		guardErr   error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		typeErr = s.resolveType(ctx, req.Type, resolved)
	}()
	go func() {
		defer wg.Done()
		tagsErr = s.resolveTags(ctx, req.Tags, resolved)
	}()
	go func() {
		defer wg.Done()
		peopleErr = s.resolvePeople(ctx, req.People, resolved)
	}()
	go func() {
		defer wg.Done()
		guardErr = s.guardDateTitle(ctx, req.Date, req.Title, excludeID)
	}()

	if req.Type == VariantWorkout && req.Workout != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			workoutErr = s.resolveWorkout(ctx, req.Workout, resolved)
		}()
	}

	wg.Wait()

	for _, err := range []error{typeErr, tagsErr, peopleErr, workoutErr, guardErr} {
		if err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// resolveType resolves the discriminator: the name must denote an
// isType-flagged tag whose name is one of the known variants.
func (s *service) resolveType(ctx context.Context, typeName string, resolved *resolvedReferences) error {
	matches, err := s.tagResolver.ResolveFlagged(ctx, []string{typeName}, tags.FlagType)
	if err != nil {
		return err
	}

	switch {
	case len(matches) == 0:
		return &apperrors.ReferenceError{Category: "type", Names: []string{typeName}}
	case len(matches) > 1:
		return apperrors.Inconsistent(fmt.Sprintf("%d type tags named '%s'", len(matches), typeName))
	case !KnownVariant(matches[0].Name):
		return &apperrors.ReferenceError{Category: "type", Names: []string{matches[0].Name}}
	}

	resolved.typeTag = matches[0]
	return nil
}

// resolveTags validates the generic tag references by cardinality
// against the master list fetched for exactly the requested names.
func (s *service) resolveTags(ctx context.Context, names []string, resolved *resolvedReferences) error {
	if len(names) == 0 {
		return nil
	}

	matches, err := s.tagResolver.ResolveFlagged(ctx, names, tags.FlagTag)
	if err != nil {
		return err
	}

	if !refs.Satisfied(len(names), len(matches)) {
		matchedNames := make([]string, len(matches))
		for i, tag := range matches {
			matchedNames[i] = tag.Name
		}
		return &apperrors.ReferenceError{
			Category: "tags",
			Names:    refs.Missing(names, matchedNames),
		}
	}

	resolved.tagIDs = make([]uuid.UUID, len(matches))
	resolved.tagNames = make([]string, len(matches))
	for i, tag := range matches {
		resolved.tagIDs[i] = tag.ID
		resolved.tagNames[i] = tag.Name
	}
	sort.Strings(resolved.tagNames)
	return nil
}

func (s *service) resolvePeople(ctx context.Context, names []string, resolved *resolvedReferences) error {
	if len(names) == 0 {
		return nil
	}

	matches, err := s.personResolver.ResolveByDisplayNames(ctx, names)
	if err != nil {
		return err
	}

	if !refs.Satisfied(len(names), len(matches)) {
		matchedNames := make([]string, len(matches))
		for i := range matches {
			matchedNames[i] = matches[i].DisplayName()
		}
		return &apperrors.ReferenceError{
			Category: "people",
			Names:    refs.Missing(names, matchedNames),
		}
	}

	resolved.personIDs = make([]uuid.UUID, len(matches))
	resolved.peopleNames = make([]string, len(matches))
	for i := range matches {
		resolved.personIDs[i] = matches[i].ID
		resolved.peopleNames[i] = matches[i].DisplayName()
	}
	sort.Strings(resolved.peopleNames)
	return nil
}

func (s *service) resolveWorkout(ctx context.Context, name string, resolved *resolvedReferences) error {
	matches, err := s.tagResolver.ResolveFlagged(ctx, []string{name}, tags.FlagWorkout)
	if err != nil {
		return err
	}

	switch {
	case len(matches) == 0:
		return &apperrors.ReferenceError{Category: "workout", Names: []string{name}}
	case len(matches) > 1:
		return apperrors.Inconsistent(fmt.Sprintf("%d workout tags named '%s'", len(matches), name))
	}

	resolved.workoutTag = &matches[0]
	return nil
}

// guardDateTitle is the read-then-write uniqueness check on the
// (date, title) natural key; the composite unique index backstops the
// race.
func (s *service) guardDateTitle(ctx context.Context, date, title string, excludeID uuid.UUID) error {
	matches, err := s.repo.FindByDateTitle(ctx, date, title)
	if err != nil {
		return apperrors.Internal("notes: checking date/title collision", err)
	}

	switch {
	case len(matches) == 0:
		return nil
	case len(matches) > 1:
		return apperrors.Inconsistent(fmt.Sprintf("%d notes dated '%s' titled '%s'", len(matches), date, title))
	case matches[0].ID == excludeID:
		return nil
	default:
		return &apperrors.ConflictError{
			Message: fmt.Sprintf("A note dated '%s' titled '%s' already exists.", date, title),
		}
	}
}

// Side effects

func (s *service) invalidateCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_NOTES)
}

func (s *service) publish(ctx context.Context, entityID, action string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.PublishActivity(ctx, "note", entityID, action, ""); err != nil {
		logger.GetDefault().WithError(err).Warn("failed to publish note activity")
	}
}
