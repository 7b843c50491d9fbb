// Package domain defines the business logic for the exercise tracker.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/GalladeX3/exercise-tracker-test-project/internal/observability"
)

var (
	// ErrUserNotFound is returned when a user id cannot be resolved.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername is the distinguished outcome a UserRepository
	// reports when a create hits the unique constraint on username. The
	// registry recovers from it; it is never surfaced to callers.
	ErrDuplicateUsername = errors.New("username already taken")
)

// ValidationError marks caller input that fails a precondition. Handlers map
// it to a 400 response.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// User is the stored identity record. IDs are generated by the persistence
// layer; usernames are stored trimmed.
type User struct {
	ID       string
	Username string
}

// UserRepository captures persistence operations for users.
//
// Create returns ErrDuplicateUsername when the username is already taken.
// FindByID and FindByUsername return (nil, nil) on a miss so callers can
// distinguish absence from infrastructure failure.
type UserRepository interface {
	Create(ctx context.Context, user User) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
}

// Registry owns user identity creation and listing.
type Registry struct {
	users UserRepository
}

// NewRegistry constructs a Registry.
func NewRegistry(users UserRepository) *Registry {
	return &Registry{users: users}
}

// Register persists a new user with the trimmed username. Registration is
// idempotent per username: a duplicate outcome from the store falls back to
// looking up the existing record and returning it unchanged.
func (r *Registry) Register(ctx context.Context, username string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, NewValidationError("username required")
	}

	created, err := r.users.Create(ctx, User{Username: username})
	if err == nil {
		observability.RecordUserRegistered()
		return created, nil
	}
	if !errors.Is(err, ErrDuplicateUsername) {
		return nil, err
	}

	// Lost the create race; the winner's record is the result. A miss here
	// means the store dropped the row between conflict and lookup, which is
	// an infrastructure failure, not a caller error.
	existing, lookupErr := r.users.FindByUsername(ctx, username)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if existing == nil {
		return nil, fmt.Errorf("duplicate username %q no longer resolvable", username)
	}
	return existing, nil
}

// ListUsers returns every stored user. Order follows the store's default
// enumeration (insertion order for the bundled repositories, but callers
// should not rely on it).
func (r *Registry) ListUsers(ctx context.Context) ([]User, error) {
	return r.users.List(ctx)
}
