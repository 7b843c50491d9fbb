package domain

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLogExerciseRequiresExistingUser(t *testing.T) {
	users := newFakeUserRepo()
	exlog := NewExerciseLog(users, newFakeExerciseRepo(), nil)

	_, _, err := exlog.LogExercise(context.Background(), "ghost", "run", "30", "")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogExerciseValidatesDescriptionAndDuration(t *testing.T) {
	users := newFakeUserRepo()
	user, err := users.Create(context.Background(), User{Username: "alice"})
	require.NoError(t, err)

	exlog := NewExerciseLog(users, newFakeExerciseRepo(), nil)

	cases := []struct {
		name        string
		description string
		duration    string
	}{
		{"empty description", "", "30"},
		{"whitespace description", "   ", "30"},
		{"missing duration", "run", ""},
		{"non-numeric duration", "run", "soon"},
		{"zero duration", "run", "0"},
		{"negative duration", "run", "-5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := exlog.LogExercise(context.Background(), user.ID, tc.description, tc.duration, "")
			require.Error(t, err)
			require.True(t, IsValidation(err))
			require.EqualError(t, err, "description and duration are required")
		})
	}
}

func TestLogExerciseParsesSuppliedDate(t *testing.T) {
	users := newFakeUserRepo()
	user, err := users.Create(context.Background(), User{Username: "alice"})
	require.NoError(t, err)

	exlog := NewExerciseLog(users, newFakeExerciseRepo(), nil)

	owner, exercise, err := exlog.LogExercise(context.Background(), user.ID, "  run  ", "30", "2023-05-01")
	require.NoError(t, err)
	require.Equal(t, user.ID, owner.ID)
	require.Equal(t, "run", exercise.Description)
	require.Equal(t, 30, exercise.DurationMin)
	require.Equal(t, time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), exercise.PerformedAt)
	require.Equal(t, "Mon May 01 2023", exercise.PerformedAt.Format(LogDateFormat))
}

func TestLogExerciseDefaultsUnparsableDateToNow(t *testing.T) {
	users := newFakeUserRepo()
	user, err := users.Create(context.Background(), User{Username: "alice"})
	require.NoError(t, err)

	now := time.Date(2023, time.June, 10, 12, 30, 0, 0, time.UTC)
	exlog := NewExerciseLog(users, newFakeExerciseRepo(), nil)
	exlog.now = func() time.Time { return now }

	for _, raw := range []string{"", "not-a-date", "31-12-2023"} {
		_, exercise, err := exlog.LogExercise(context.Background(), user.ID, "swim", "45", raw)
		require.NoError(t, err, "date %q should fall back silently", raw)
		require.Equal(t, now, exercise.PerformedAt)
	}
}

func TestLogExerciseNotifiesSink(t *testing.T) {
	users := newFakeUserRepo()
	user, err := users.Create(context.Background(), User{Username: "alice"})
	require.NoError(t, err)

	sink := &recordingSink{}
	exlog := NewExerciseLog(users, newFakeExerciseRepo(), sink)

	_, _, err = exlog.LogExercise(context.Background(), user.ID, "row", "20", "2023-05-01")
	require.NoError(t, err)
	require.Equal(t, 1, sink.calls)
	require.Equal(t, "alice", sink.lastUser.Username)
	require.Equal(t, "row", sink.lastExercise.Description)
}

func TestGetLogsFiltersAndSorts(t *testing.T) {
	users := newFakeUserRepo()
	user, err := users.Create(context.Background(), User{Username: "alice"})
	require.NoError(t, err)

	exercises := newFakeExerciseRepo()
	exlog := NewExerciseLog(users, exercises, nil)

	for _, date := range []string{"2023-01-20", "2023-01-05", "2023-02-01", "2022-12-31", "2023-01-31"} {
		_, _, err := exlog.LogExercise(context.Background(), user.ID, "run", "10", date)
		require.NoError(t, err)
	}

	_, all, err := exlog.GetLogs(context.Background(), user.ID, "", "", "")
	require.NoError(t, err)
	require.Len(t, all, 5)
	require.True(t, slices.IsSortedFunc(all, func(a, b Exercise) int {
		return a.PerformedAt.Compare(b.PerformedAt)
	}))

	_, ranged, err := exlog.GetLogs(context.Background(), user.ID, "2023-01-01", "2023-01-31", "")
	require.NoError(t, err)
	require.Len(t, ranged, 3)
	for _, entry := range ranged {
		require.False(t, entry.PerformedAt.Before(time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)))
		require.False(t, entry.PerformedAt.After(time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC)))
	}

	_, capped, err := exlog.GetLogs(context.Background(), user.ID, "", "", "2")
	require.NoError(t, err)
	require.Len(t, capped, 2)
	require.Equal(t, time.Date(2022, time.December, 31, 0, 0, 0, 0, time.UTC), capped[0].PerformedAt)
	require.Equal(t, time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC), capped[1].PerformedAt)
}

func TestGetLogsDropsUnparsableBoundsAndLimits(t *testing.T) {
	users := newFakeUserRepo()
	user, err := users.Create(context.Background(), User{Username: "alice"})
	require.NoError(t, err)

	exercises := newFakeExerciseRepo()
	exlog := NewExerciseLog(users, exercises, nil)

	_, _, err = exlog.LogExercise(context.Background(), user.ID, "run", "10", "2023-01-05")
	require.NoError(t, err)

	_, entries, err := exlog.GetLogs(context.Background(), user.ID, "junk", "also-junk", "zero")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, entries, err = exlog.GetLogs(context.Background(), user.ID, "", "", "-3")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestGetLogsRequiresExistingUser(t *testing.T) {
	exlog := NewExerciseLog(newFakeUserRepo(), newFakeExerciseRepo(), nil)

	_, _, err := exlog.GetLogs(context.Background(), "ghost", "", "", "")
	require.ErrorIs(t, err, ErrUserNotFound)
}

type recordingSink struct {
	calls        int
	lastUser     User
	lastExercise Exercise
}

func (r *recordingSink) ExerciseLogged(ctx context.Context, user User, exercise Exercise) {
	r.calls++
	r.lastUser = user
	r.lastExercise = exercise
}

// fakeExerciseRepo applies the same filter semantics the real stores do.
type fakeExerciseRepo struct {
	entries []Exercise
	nextID  int
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{}
}

func (f *fakeExerciseRepo) Create(ctx context.Context, exercise Exercise) (*Exercise, error) {
	f.nextID++
	exercise.ID = fmt.Sprintf("exercise-%d", f.nextID)
	f.entries = append(f.entries, exercise)
	return &exercise, nil
}

func (f *fakeExerciseRepo) FindByUser(ctx context.Context, userID string, filter LogFilter) ([]Exercise, error) {
	matched := make([]Exercise, 0, len(f.entries))
	for _, entry := range f.entries {
		if entry.UserID != userID {
			continue
		}
		if filter.From != nil && entry.PerformedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && entry.PerformedAt.After(*filter.To) {
			continue
		}
		matched = append(matched, entry)
	}
	slices.SortStableFunc(matched, func(a, b Exercise) int {
		return a.PerformedAt.Compare(b.PerformedAt)
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}
