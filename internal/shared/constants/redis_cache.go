package constants

import "time"

// Redis cache keys and TTLs.
// Pattern: memoir:{module}:{operation}:{identifier}

const CACHE_PREFIX = "memoir"

// Records are mutated through a single owner, so listings stay warm
// for a few minutes and counts refresh quickly.
const (
	TTL_LIST   = 5 * time.Minute
	TTL_DETAIL = 15 * time.Minute
	TTL_COUNT  = 1 * time.Minute
)

// Notes
const (
	CACHE_KEY_NOTES_LIST  = CACHE_PREFIX + ":notes:list"
	CACHE_KEY_NOTES_COUNT = CACHE_PREFIX + ":notes:count"
	CACHE_KEY_NOTE_DETAIL = CACHE_PREFIX + ":notes:detail:uuid:" // + note-id

	PATTERN_INVALIDATE_NOTES = CACHE_PREFIX + ":notes:*"
)

// People
const (
	CACHE_KEY_PEOPLE_LIST   = CACHE_PREFIX + ":people:list"
	CACHE_KEY_PEOPLE_COUNT  = CACHE_PREFIX + ":people:count"
	CACHE_KEY_PERSON_DETAIL = CACHE_PREFIX + ":people:detail:uuid:" // + person-id

	PATTERN_INVALIDATE_PEOPLE = CACHE_PREFIX + ":people:*"
)

// Tags
const (
	CACHE_KEY_TAGS_LIST  = CACHE_PREFIX + ":tags:list"
	CACHE_KEY_TAGS_COUNT = CACHE_PREFIX + ":tags:count"
	CACHE_KEY_TAG_DETAIL = CACHE_PREFIX + ":tags:detail:uuid:" // + tag-id

	PATTERN_INVALIDATE_TAGS = CACHE_PREFIX + ":tags:*"
)
