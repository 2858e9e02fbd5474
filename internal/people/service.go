package people

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"memoir/internal/activity"
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

type Service interface {
	Count(ctx context.Context) (int64, error)
	GetAllPeople(ctx context.Context) ([]PersonResponse, error)
	GetPersonByID(ctx context.Context, id uuid.UUID) (*PersonResponse, error)
	CreatePerson(ctx context.Context, req PersonRequest) (*PersonResponse, error)
	UpdatePerson(ctx context.Context, id uuid.UUID, req PersonRequest) (*PersonResponse, error)
	DeletePerson(ctx context.Context, id uuid.UUID) (*PersonResponse, error)

	// ResolveByDisplayNames fetches the master list for a note's people
	// references (called by the notes service).
	ResolveByDisplayNames(ctx context.Context, names []string) ([]Person, error)

	// CountByTag implements the people.tags reference count for the
	// tags service's integrity guard.
	CountByTag(ctx context.Context, tagID uuid.UUID) (int64, error)
}

type service struct {
	repo        Repository
	tagResolver TagResolver
	cache       cache.Service
	activity    activity.Publisher
}

func NewService(repo Repository, tagResolver TagResolver, cacheService cache.Service, publisher activity.Publisher) Service {
	return &service{
		repo:        repo,
		tagResolver: tagResolver,
		cache:       cacheService,
		activity:    publisher,
	}
}

// Read operations

func (s *service) Count(ctx context.Context) (int64, error) {
	if s.cache != nil {
		var cached int64
		if err := s.cache.Get(ctx, constants.CACHE_KEY_PEOPLE_COUNT, &cached); err == nil {
			return cached, nil
		}
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperrors.Internal("people: counting people", err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, constants.CACHE_KEY_PEOPLE_COUNT, count, constants.TTL_COUNT)
	}
	return count, nil
}

func (s *service) GetAllPeople(ctx context.Context) ([]PersonResponse, error) {
	if s.cache != nil {
		var cached []PersonResponse
		if err := s.cache.Get(ctx, constants.CACHE_KEY_PEOPLE_LIST, &cached); err == nil {
			return cached, nil
		}
	}

	people, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("people: fetching people", err)
	}

	tagNames, err := s.repo.FindAllTagNames(ctx)
	if err != nil {
		return nil, apperrors.Internal("people: fetching person tags", err)
	}

	responses := make([]PersonResponse, len(people))
	for i, person := range people {
		responses[i] = person.ToResponse(tagNames[person.ID])
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, constants.CACHE_KEY_PEOPLE_LIST, responses, constants.TTL_LIST)
	}
	return responses, nil
}

func (s *service) GetPersonByID(ctx context.Context, id uuid.UUID) (*PersonResponse, error) {
	key := constants.CACHE_KEY_PERSON_DETAIL + id.String()
	if s.cache != nil {
		var cached PersonResponse
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	person, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "person", ID: id.String()}
		}
		return nil, apperrors.Internal("people: fetching person", err)
	}

	tagNames, err := s.repo.FindTagNames(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("people: fetching person tags", err)
	}

	response := person.ToResponse(tagNames)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, response, constants.TTL_DETAIL)
	}
	return &response, nil
}

func (s *service) ResolveByDisplayNames(ctx context.Context, names []string) ([]Person, error) {
	people, err := s.repo.FindByDisplayNames(ctx, names)
	if err != nil {
		return nil, apperrors.Internal("people: resolving display names", err)
	}
	return people, nil
}

func (s *service) CountByTag(ctx context.Context, tagID uuid.UUID) (int64, error) {
	return s.repo.CountByTag(ctx, tagID)
}

// Mutations

func (s *service) CreatePerson(ctx context.Context, req PersonRequest) (*PersonResponse, error) {
	req.Normalize()
	if violations := req.Validate(); len(violations) > 0 {
		return nil, &apperrors.ValidationError{Violations: violations}
	}

	resolved, err := s.checkReferences(ctx, req, uuid.Nil)
	if err != nil {
		return nil, err
	}

	person := &Person{
		FirstName:       req.FirstName,
		MiddleName:      req.MiddleName,
		LastName:        req.LastName,
		PreferredName:   req.PreferredName,
		Birthdate:       req.Birthdate,
		GooglePhotoURL:  req.GooglePhotoURL,
		PicasaContactID: req.PicasaContactID,
		Notes:           req.Notes,
		Photos:          req.Photos,
	}

	if err := s.repo.Create(ctx, person, resolved.tagIDs); err != nil {
		return nil, apperrors.Internal("people: creating person", err)
	}

	s.invalidateCaches(ctx)
	s.publish(ctx, person.ID.String(), activity.ActionCreated)
	logger.GetDefault().LogRecordMutation(ctx, "person", person.ID.String(), activity.ActionCreated)

	response := person.ToResponse(resolved.tagNames)
	return &response, nil
}

func (s *service) UpdatePerson(ctx context.Context, id uuid.UUID, req PersonRequest) (*PersonResponse, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "person", ID: id.String()}
		}
		return nil, apperrors.Internal("people: fetching person", err)
	}

	req.Normalize()
	if violations := req.Validate(); len(violations) > 0 {
		return nil, &apperrors.ValidationError{Violations: violations}
	}

	resolved, err := s.checkReferences(ctx, req, current.ID)
	if err != nil {
		return nil, err
	}

	// Identity and createdAt survive the update
	current.FirstName = req.FirstName
	current.MiddleName = req.MiddleName
	current.LastName = req.LastName
	current.PreferredName = req.PreferredName
	current.Birthdate = req.Birthdate
	current.GooglePhotoURL = req.GooglePhotoURL
	current.PicasaContactID = req.PicasaContactID
	current.Notes = req.Notes
	current.Photos = req.Photos

	if err := s.repo.Update(ctx, current, resolved.tagIDs); err != nil {
		return nil, apperrors.Internal("people: updating person", err)
	}

	s.invalidateCaches(ctx)
	s.publish(ctx, current.ID.String(), activity.ActionUpdated)
	logger.GetDefault().LogRecordMutation(ctx, "person", current.ID.String(), activity.ActionUpdated)

	response := current.ToResponse(resolved.tagNames)
	return &response, nil
}

// DeletePerson is deliberately unguarded: notes referencing the person
// keep their dangling entry and note reads tolerate it. The join rows
// go with the person so tag reference counts stay consistent.
func (s *service) DeletePerson(ctx context.Context, id uuid.UUID) (*PersonResponse, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "person", ID: id.String()}
		}
		return nil, apperrors.Internal("people: fetching person", err)
	}

	tagNames, err := s.repo.FindTagNames(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("people: fetching person tags", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, apperrors.Internal("people: deleting person", err)
	}

	s.invalidateCaches(ctx)
	s.publish(ctx, id.String(), activity.ActionDeleted)
	logger.GetDefault().LogRecordMutation(ctx, "person", id.String(), activity.ActionDeleted)

	response := current.ToResponse(tagNames)
	return &response, nil
}

// Reference validation + uniqueness guard

type resolvedReferences struct {
	tagIDs   []uuid.UUID
	tagNames []string
}

// checkReferences fans the tag resolution and the natural-key guard
// out as independent lookups and joins them; both must succeed before
// the mutation proceeds.
func (s *service) checkReferences(ctx context.Context, req PersonRequest, excludeID uuid.UUID) (*resolvedReferences, error) {
	type tagResult struct {
		refs *resolvedReferences
		err  error
	}

	tagCh := make(chan tagResult, 1)
	guardCh := make(chan error, 1)

	go func() {
		resolved, err := s.resolveTags(ctx, req.Tags)
		tagCh <- tagResult{refs: resolved, err: err}
	}()
	go func() {
		guardCh <- s.guardNaturalKey(ctx, req.FirstName, req.MiddleName, req.LastName, excludeID)
	}()

	tagRes := <-tagCh
	guardErr := <-guardCh

	if tagRes.err != nil {
		return nil, tagRes.err
	}
	if guardErr != nil {
		return nil, guardErr
	}
	return tagRes.refs, nil
}

// resolveTags validates the person's tag references by cardinality:
// the master list is fetched for exactly the requested names plus the
// isPerson flag, so equal lengths mean every name resolved.
func (s *service) resolveTags(ctx context.Context, names []string) (*resolvedReferences, error) {
	if len(names) == 0 {
		return &resolvedReferences{}, nil
	}

	resolved, err := s.tagResolver.ResolveFlagged(ctx, names, tags.FlagPerson)
	if err != nil {
		return nil, err
	}

	if !refs.Satisfied(len(names), len(resolved)) {
		resolvedNames := make([]string, len(resolved))
		for i, tag := range resolved {
			resolvedNames[i] = tag.Name
		}
		return nil, &apperrors.ReferenceError{
			Category: "tags",
			Names:    refs.Missing(names, resolvedNames),
		}
	}

	result := &resolvedReferences{
		tagIDs:   make([]uuid.UUID, len(resolved)),
		tagNames: make([]string, len(resolved)),
	}
	for i, tag := range resolved {
		result.tagIDs[i] = tag.ID
		result.tagNames[i] = tag.Name
	}
	sort.Strings(result.tagNames)
	return result, nil
}

// guardNaturalKey is the read-then-write uniqueness check on the
// (first, middle, last) tuple; the composite unique index backstops
// the race.
func (s *service) guardNaturalKey(ctx context.Context, firstName, middleName, lastName string, excludeID uuid.UUID) error {
	matches, err := s.repo.FindByNaturalKey(ctx, firstName, middleName, lastName)
	if err != nil {
		return apperrors.Internal("people: checking name collision", err)
	}

	display := (&Person{FirstName: firstName, MiddleName: middleName, LastName: lastName}).DisplayName()

	switch {
	case len(matches) == 0:
		return nil
	case len(matches) > 1:
		return apperrors.Inconsistent(fmt.Sprintf("%d people named '%s'", len(matches), display))
	case matches[0].ID == excludeID:
		return nil
	default:
		return &apperrors.ConflictError{
			Message: fmt.Sprintf("A person named '%s' already exists.", display),
		}
	}
}

// Side effects

// invalidateCaches clears the people caches and the note caches, which
// embed expanded people names.
func (s *service) invalidateCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, pattern := range []string{
		constants.PATTERN_INVALIDATE_PEOPLE,
		constants.PATTERN_INVALIDATE_NOTES,
	} {
		_ = s.cache.DeletePattern(ctx, pattern)
	}
}

func (s *service) publish(ctx context.Context, entityID, action string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.PublishActivity(ctx, "person", entityID, action, ""); err != nil {
		logger.GetDefault().WithError(err).Warn("failed to publish person activity")
	}
}
