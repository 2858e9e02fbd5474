package tags

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"memoir/internal/activity"
	"memoir/internal/shared/apperrors"
	"memoir/internal/shared/constants"
	"memoir/pkg/cache"
	"memoir/pkg/logger"
)

// NoteCounter reports how many notes reference a tag in each role. The
// notes service implements it; the interface lives here to keep the
// dependency pointing notes -> tags only.
type NoteCounter interface {
	CountByTypeTag(ctx context.Context, tagID uuid.UUID) (int64, error)
	CountByTag(ctx context.Context, tagID uuid.UUID) (int64, error)
	CountByWorkoutTag(ctx context.Context, tagID uuid.UUID) (int64, error)
}

// PersonCounter reports how many people reference a tag.
type PersonCounter interface {
	CountByTag(ctx context.Context, tagID uuid.UUID) (int64, error)
}

type Service interface {
	Count(ctx context.Context) (int64, error)
	GetAllTags(ctx context.Context) ([]TagResponse, error)
	GetTagByID(ctx context.Context, id uuid.UUID) (*TagResponse, error)
	CreateTag(ctx context.Context, req TagRequest) (*TagResponse, error)
	UpdateTag(ctx context.Context, id uuid.UUID, req TagRequest) (*TagResponse, error)
	DeleteTag(ctx context.Context, id uuid.UUID) (*TagResponse, error)

	// ResolveFlagged fetches the master list for reference validation:
	// exactly the supplied names, restricted to the capability flag.
	ResolveFlagged(ctx context.Context, names []string, flag Flag) ([]Tag, error)

	// Wiring for the referential-integrity guard (set after all
	// services are constructed, to avoid an import cycle)
	SetNoteCounter(counter NoteCounter)
	SetPersonCounter(counter PersonCounter)
}

type service struct {
	repo          Repository
	cache         cache.Service
	activity      activity.Publisher
	noteCounter   NoteCounter
	personCounter PersonCounter
}

func NewService(repo Repository, cacheService cache.Service, publisher activity.Publisher) Service {
	return &service{
		repo:     repo,
		cache:    cacheService,
		activity: publisher,
	}
}

func (s *service) SetNoteCounter(counter NoteCounter) {
	s.noteCounter = counter
}

func (s *service) SetPersonCounter(counter PersonCounter) {
	s.personCounter = counter
}

// Read operations

func (s *service) Count(ctx context.Context) (int64, error) {
	if s.cache != nil {
		var cached int64
		if err := s.cache.Get(ctx, constants.CACHE_KEY_TAGS_COUNT, &cached); err == nil {
			return cached, nil
		}
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperrors.Internal("tags: counting tags", err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, constants.CACHE_KEY_TAGS_COUNT, count, constants.TTL_COUNT)
	}
	return count, nil
}

func (s *service) GetAllTags(ctx context.Context) ([]TagResponse, error) {
	if s.cache != nil {
		var cached []TagResponse
		if err := s.cache.Get(ctx, constants.CACHE_KEY_TAGS_LIST, &cached); err == nil {
			return cached, nil
		}
	}

	tags, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("tags: fetching tags", err)
	}

	responses := make([]TagResponse, len(tags))
	for i, tag := range tags {
		responses[i] = tag.ToResponse()
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, constants.CACHE_KEY_TAGS_LIST, responses, constants.TTL_LIST)
	}
	return responses, nil
}

func (s *service) GetTagByID(ctx context.Context, id uuid.UUID) (*TagResponse, error) {
	key := constants.CACHE_KEY_TAG_DETAIL + id.String()
	if s.cache != nil {
		var cached TagResponse
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	tag, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "tag", ID: id.String()}
		}
		return nil, apperrors.Internal("tags: fetching tag", err)
	}

	response := tag.ToResponse()
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, response, constants.TTL_DETAIL)
	}
	return &response, nil
}

func (s *service) ResolveFlagged(ctx context.Context, names []string, flag Flag) ([]Tag, error) {
	tags, err := s.repo.FindByNames(ctx, names, flag)
	if err != nil {
		return nil, apperrors.Internal("tags: resolving tag names", err)
	}
	return tags, nil
}

// Mutations

func (s *service) CreateTag(ctx context.Context, req TagRequest) (*TagResponse, error) {
	req.Normalize()
	if violations := req.Validate(); len(violations) > 0 {
		return nil, &apperrors.ValidationError{Violations: violations}
	}

	if err := s.guardName(ctx, req.Name, uuid.Nil); err != nil {
		return nil, err
	}

	tag := &Tag{
		Name:        req.Name,
		Description: *req.Description,
		Image:       req.Image,
		IsType:      req.IsType,
		IsTag:       req.IsTag,
		IsWorkout:   req.IsWorkout,
		IsPerson:    req.IsPerson,
	}

	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, apperrors.Internal("tags: creating tag", err)
	}

	s.invalidateCaches(ctx)
	s.publish(ctx, tag.ID.String(), activity.ActionCreated)
	logger.GetDefault().LogRecordMutation(ctx, "tag", tag.ID.String(), activity.ActionCreated)

	response := tag.ToResponse()
	return &response, nil
}

func (s *service) UpdateTag(ctx context.Context, id uuid.UUID, req TagRequest) (*TagResponse, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "tag", ID: id.String()}
		}
		return nil, apperrors.Internal("tags: fetching tag", err)
	}

	req.Normalize()
	if violations := req.Validate(); len(violations) > 0 {
		return nil, &apperrors.ValidationError{Violations: violations}
	}

	if err := s.guardName(ctx, req.Name, current.ID); err != nil {
		return nil, err
	}

	// Setting flags is always allowed; clearing one is blocked while
	// its reference category is nonzero.
	if probes := s.clearedFlagProbes(current, req); len(probes) > 0 {
		if err := s.guardReferences(ctx, current.ID, "update", probes); err != nil {
			return nil, err
		}
	}

	current.Name = req.Name
	current.Description = *req.Description
	current.Image = req.Image
	current.IsType = req.IsType
	current.IsTag = req.IsTag
	current.IsWorkout = req.IsWorkout
	current.IsPerson = req.IsPerson

	if err := s.repo.Update(ctx, current); err != nil {
		return nil, apperrors.Internal("tags: updating tag", err)
	}

	s.invalidateCaches(ctx)
	s.publish(ctx, current.ID.String(), activity.ActionUpdated)
	logger.GetDefault().LogRecordMutation(ctx, "tag", current.ID.String(), activity.ActionUpdated)

	response := current.ToResponse()
	return &response, nil
}

func (s *service) DeleteTag(ctx context.Context, id uuid.UUID) (*TagResponse, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "tag", ID: id.String()}
		}
		return nil, apperrors.Internal("tags: fetching tag", err)
	}

	if err := s.guardReferences(ctx, id, "delete", s.allProbes(id)); err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, apperrors.Internal("tags: deleting tag", err)
	}

	s.invalidateCaches(ctx)
	s.publish(ctx, id.String(), activity.ActionDeleted)
	logger.GetDefault().LogRecordMutation(ctx, "tag", id.String(), activity.ActionDeleted)

	response := current.ToResponse()
	return &response, nil
}

// Uniqueness guard: read-then-write on the tag name. The unique index
// on the name column backstops the race between the check and the
// write.
func (s *service) guardName(ctx context.Context, name string, excludeID uuid.UUID) error {
	matches, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return apperrors.Internal("tags: checking name collision", err)
	}

	switch {
	case len(matches) == 0:
		return nil
	case len(matches) > 1:
		return apperrors.Inconsistent(fmt.Sprintf("%d tags named '%s'", len(matches), name))
	case matches[0].ID == excludeID:
		return nil
	default:
		return &apperrors.ConflictError{
			Message: fmt.Sprintf("A tag named '%s' already exists.", name),
		}
	}
}

// Referential-integrity guard

type referenceProbe struct {
	category string
	count    func(ctx context.Context) (int64, error)
}

func (s *service) allProbes(tagID uuid.UUID) []referenceProbe {
	return []referenceProbe{
		s.probeFor(FlagType, tagID),
		s.probeFor(FlagTag, tagID),
		s.probeFor(FlagWorkout, tagID),
		s.probeFor(FlagPerson, tagID),
	}
}

func (s *service) probeFor(flag Flag, tagID uuid.UUID) referenceProbe {
	switch flag {
	case FlagType:
		return referenceProbe{"notes.type", func(ctx context.Context) (int64, error) {
			return s.noteCounter.CountByTypeTag(ctx, tagID)
		}}
	case FlagTag:
		return referenceProbe{"notes.tags", func(ctx context.Context) (int64, error) {
			return s.noteCounter.CountByTag(ctx, tagID)
		}}
	case FlagWorkout:
		return referenceProbe{"notes.workout", func(ctx context.Context) (int64, error) {
			return s.noteCounter.CountByWorkoutTag(ctx, tagID)
		}}
	default:
		return referenceProbe{"people.tags", func(ctx context.Context) (int64, error) {
			return s.personCounter.CountByTag(ctx, tagID)
		}}
	}
}

// clearedFlagProbes selects a probe for every capability flag the
// request turns off.
func (s *service) clearedFlagProbes(current *Tag, req TagRequest) []referenceProbe {
	var probes []referenceProbe
	if current.IsType && !req.IsType {
		probes = append(probes, s.probeFor(FlagType, current.ID))
	}
	if current.IsTag && !req.IsTag {
		probes = append(probes, s.probeFor(FlagTag, current.ID))
	}
	if current.IsWorkout && !req.IsWorkout {
		probes = append(probes, s.probeFor(FlagWorkout, current.ID))
	}
	if current.IsPerson && !req.IsPerson {
		probes = append(probes, s.probeFor(FlagPerson, current.ID))
	}
	return probes
}

// guardReferences fans the probes out concurrently, joins them, and
// blocks the operation when any category still references the tag.
func (s *service) guardReferences(ctx context.Context, tagID uuid.UUID, operation string, probes []referenceProbe) error {
	if s.noteCounter == nil || s.personCounter == nil {
		return apperrors.Internal("tags: reference counters not wired", nil)
	}

	type probeResult struct {
		index int
		count int64
		err   error
	}

	results := make(chan probeResult, len(probes))
	for i, probe := range probes {
		go func(i int, probe referenceProbe) {
			count, err := probe.count(ctx)
			results <- probeResult{index: i, count: count, err: err}
		}(i, probe)
	}

	counts := make([]int64, len(probes))
	var firstErr error
	for range probes {
		r := <-results
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
		counts[r.index] = r.count
	}
	if firstErr != nil {
		return apperrors.Internal("tags: counting references", firstErr)
	}

	var nonzero []apperrors.ReferenceCount
	for i, probe := range probes {
		if counts[i] > 0 {
			nonzero = append(nonzero, apperrors.ReferenceCount{
				Category: probe.category,
				Count:    counts[i],
			})
		}
	}
	if len(nonzero) == 0 {
		return nil
	}

	blocked := &apperrors.IntegrityError{Operation: operation, Counts: nonzero}
	logger.GetDefault().LogIntegrityBlock(ctx, tagID.String(), operation, blocked.Messages())
	return blocked
}

// Side effects

// invalidateCaches clears every collection cache: tag names are
// embedded in expanded note and person responses.
func (s *service) invalidateCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, pattern := range []string{
		constants.PATTERN_INVALIDATE_TAGS,
		constants.PATTERN_INVALIDATE_NOTES,
		constants.PATTERN_INVALIDATE_PEOPLE,
	} {
		_ = s.cache.DeletePattern(ctx, pattern)
	}
}

func (s *service) publish(ctx context.Context, entityID, action string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.PublishActivity(ctx, "tag", entityID, action, ""); err != nil {
		logger.GetDefault().WithError(err).Warn("failed to publish tag activity")
	}
}
