package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FieldViolation describes a single declarative-rule failure on one
// field of a request payload. Fields inside array elements are named
// with their element index, e.g. "metrics[2].property".
type FieldViolation struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

func (v FieldViolation) String() string {
	return fmt.Sprintf("%s %s", v.Field, v.Message)
}

// ValidationError carries every field violation found in a payload.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d violation(s)", len(e.Violations))
}

func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return msgs
}

// ReferenceError reports client-supplied identifiers that did not
// resolve to existing, correctly-flagged records.
type ReferenceError struct {
	Category string   // "type", "tags", "people", "workout"
	Names    []string // the identifiers that failed to resolve
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("Invalid %s: %s.", e.Category, quoteList(e.Names))
}

// ConflictError reports a natural-key uniqueness violation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ReferenceCount is one nonzero reference category blocking a tag
// delete or flag-clearing update.
type ReferenceCount struct {
	Category string `json:"category"` // e.g. "notes.type"
	Count    int64  `json:"count"`
}

func (rc ReferenceCount) String() string {
	return fmt.Sprintf("%d %s", rc.Count, rc.Category)
}

// IntegrityError blocks a tag mutation that would orphan references.
type IntegrityError struct {
	Operation string // "delete" or the flag being cleared
	Counts    []ReferenceCount
}

func (e *IntegrityError) Error() string {
	parts := make([]string, len(e.Counts))
	for i, rc := range e.Counts {
		parts[i] = rc.String()
	}
	return fmt.Sprintf("Tag is still referenced: %s.", strings.Join(parts, ", "))
}

func (e *IntegrityError) Messages() []string {
	msgs := make([]string, 0, len(e.Counts)+1)
	msgs = append(msgs, fmt.Sprintf("Cannot %s: tag is still referenced.", e.Operation))
	for _, rc := range e.Counts {
		msgs = append(msgs, rc.String())
	}
	return msgs
}

// NotFoundError reports a lookup by identifier with no matching record.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No %s found with id '%s'.", e.Entity, e.ID)
}

// InternalError wraps store failures and internal-consistency
// violations. These are request-terminal and never retried.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Internal wraps a lower-layer error for propagation as a 500.
func Internal(op string, err error) error {
	return &InternalError{Op: op, Err: err}
}

// Inconsistent reports a store invariant violation, e.g. more than one
// record for a supposedly-unique natural key.
func Inconsistent(detail string) error {
	return &InternalError{Op: "store consistency violated: " + detail}
}

// StatusOf maps an error to the HTTP status the controllers respond
// with: 422 for the four client-fault categories, 404 for missing
// records, 500 for everything else.
func StatusOf(err error) int {
	var (
		validation *ValidationError
		reference  *ReferenceError
		conflict   *ConflictError
		integrity  *IntegrityError
		notFound   *NotFoundError
	)
	switch {
	case errors.As(err, &validation),
		errors.As(err, &reference),
		errors.As(err, &conflict),
		errors.As(err, &integrity):
		return http.StatusUnprocessableEntity
	case errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// MessagesOf flattens an error into the envelope message list.
func MessagesOf(err error) []string {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Messages()
	}
	var integrity *IntegrityError
	if errors.As(err, &integrity) {
		return integrity.Messages()
	}
	return []string{err.Error()}
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}
