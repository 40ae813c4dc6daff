package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks an authenticated caller without the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation marks missing or malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrSchema marks a table whose columns cannot satisfy a required role.
	ErrSchema = errors.New("schema mismatch")
	// ErrPersistence marks a rolled back write.
	ErrPersistence = errors.New("persistence failed")
	// ErrConflict marks a unique constraint collision.
	ErrConflict = errors.New("conflict")
	// ErrRegulationNotFound is returned when neither the persisted nor the
	// built-in catalog knows a regulation code.
	ErrRegulationNotFound = fmt.Errorf("regulation %w", ErrNotFound)
)

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func New(msg string) error { return errors.New(msg) }

// Validation tags msg as a validation failure.
func Validation(format string, args ...any) error {
	return tagged(ErrValidation, format, args...)
}

// NotFound tags msg as a missing resource.
func NotFound(format string, args ...any) error {
	return tagged(ErrNotFound, format, args...)
}

// Conflict tags msg as a unique collision.
func Conflict(format string, args ...any) error {
	return tagged(ErrConflict, format, args...)
}

// kindError reports its own message and matches its sentinel through errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func tagged(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: strings.TrimSpace(fmt.Sprintf(format, args...))}
}

// Persistence hides cause behind a generic message while keeping it
// reachable through errors.Unwrap for logging.
func Persistence(op string, cause error) error {
	return &PersistenceError{Op: op, Cause: cause}
}

type PersistenceError struct {
	Op    string
	Cause error
}

func (e *PersistenceError) Error() string {
	if e.Op == "" {
		return "could not persist changes"
	}
	return "could not persist " + e.Op
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Cause} }

// SchemaError reports the table and logical role that no candidate column
// could satisfy.
type SchemaError struct {
	Table      string
	Role       string
	Candidates []string
	Cause      error
}

func (e *SchemaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("schema: table %q: %v", e.Table, e.Cause)
	}
	return fmt.Sprintf("schema: table %q has no column for role %q (tried %s)",
		e.Table, e.Role, strings.Join(e.Candidates, ", "))
}

func (e *SchemaError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrSchema, e.Cause}
	}
	return []error{ErrSchema}
}
