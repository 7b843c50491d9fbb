package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterTrimsAndPersists(t *testing.T) {
	repo := newFakeUserRepo()
	registry := NewRegistry(repo)

	user, err := registry.Register(context.Background(), "  alice  ")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.NotEmpty(t, user.ID)
}

func TestRegisterRejectsEmptyUsername(t *testing.T) {
	registry := NewRegistry(newFakeUserRepo())

	for _, username := range []string{"", "   ", "\t\n"} {
		_, err := registry.Register(context.Background(), username)
		require.Error(t, err)
		require.True(t, IsValidation(err), "expected validation error for %q", username)
		require.EqualError(t, err, "username required")
	}
}

func TestRegisterIsIdempotentPerUsername(t *testing.T) {
	repo := newFakeUserRepo()
	registry := NewRegistry(repo)

	first, err := registry.Register(context.Background(), "bob")
	require.NoError(t, err)

	second, err := registry.Register(context.Background(), "bob")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	users, err := registry.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestRegisterFailsWhenConflictLookupMisses(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = ErrDuplicateUsername
	registry := NewRegistry(repo)

	_, err := registry.Register(context.Background(), "carol")
	require.Error(t, err)
	require.False(t, IsValidation(err))
	require.NotErrorIs(t, err, ErrDuplicateUsername)
}

func TestRegisterPropagatesStoreFailure(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = errors.New("connection refused")
	registry := NewRegistry(repo)

	_, err := registry.Register(context.Background(), "dave")
	require.EqualError(t, err, "connection refused")
}

// fakeUserRepo mimics the persistence collaborator, including the
// distinguished duplicate-username outcome.
type fakeUserRepo struct {
	users     []User
	nextID    int
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{}
}

func (f *fakeUserRepo) Create(ctx context.Context, user User) (*User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return nil, ErrDuplicateUsername
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.users = append(f.users, user)
	return &user, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*User, error) {
	for _, user := range f.users {
		if user.ID == id {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	for _, user := range f.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]User, error) {
	out := make([]User, len(f.users))
	copy(out, f.users)
	return out, nil
}
