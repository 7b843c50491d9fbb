// Package memory stores tracker records in memory for local development and
// tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/GalladeX3/exercise-tracker-test-project/internal/domain"
)

// UserStore implements domain.UserRepository over an in-memory slice.
// Enumeration order is insertion order.
type UserStore struct {
	mu    sync.RWMutex
	users []domain.User
}

// NewUserStore constructs an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{}
}

// Create persists a user. The username unique constraint is enforced
// case-sensitively, matching the Postgres schema.
func (s *UserStore) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return nil, domain.ErrDuplicateUsername
		}
	}

	user.ID = uuid.NewString()
	s.users = append(s.users, user)
	return &user, nil
}

// FindByID returns (nil, nil) when the id is unknown.
func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.ID == id {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

// FindByUsername returns (nil, nil) when the username is unknown.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

// List returns every user in insertion order.
func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

// ExerciseStore implements domain.ExerciseRepository over in-memory slices
// keyed by user id.
type ExerciseStore struct {
	mu     sync.RWMutex
	byUser map[string][]domain.Exercise
}

// NewExerciseStore constructs an empty ExerciseStore.
func NewExerciseStore() *ExerciseStore {
	return &ExerciseStore{byUser: make(map[string][]domain.Exercise)}
}

// Create persists an exercise under its user.
func (s *ExerciseStore) Create(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exercise.ID = uuid.NewString()
	s.byUser[exercise.UserID] = append(s.byUser[exercise.UserID], exercise)
	return &exercise, nil
}

// FindByUser returns the user's entries sorted by date ascending; entries on
// the same timestamp keep insertion order.
func (s *ExerciseStore) FindByUser(ctx context.Context, userID string, filter domain.LogFilter) ([]domain.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Exercise, 0, len(s.byUser[userID]))
	for _, entry := range s.byUser[userID] {
		if filter.From != nil && entry.PerformedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && entry.PerformedAt.After(*filter.To) {
			continue
		}
		matched = append(matched, entry)
	}

	slices.SortStableFunc(matched, func(a, b domain.Exercise) int {
		return a.PerformedAt.Compare(b.PerformedAt)
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}
