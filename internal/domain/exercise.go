package domain

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/GalladeX3/exercise-tracker-test-project/internal/observability"
)

// LogDateFormat is the fixed-width date shape used in every response,
// e.g. "Mon May 01 2023". The exact textual form is a compatibility
// requirement for existing clients.
const LogDateFormat = "Mon Jan 02 2006"

// dateInputFormats are the accepted shapes for dates supplied by callers.
// Anything else falls back to the current time.
var dateInputFormats = []string{"2006-01-02", time.RFC3339}

// Exercise is the stored log entry. It belongs to exactly one user and is
// immutable once created.
type Exercise struct {
	ID          string
	UserID      string
	Description string
	DurationMin int
	PerformedAt time.Time
}

// LogFilter scopes a history query. Nil bounds mean unbounded; Limit <= 0
// means no cap.
type LogFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// ExerciseRepository captures persistence operations for exercises.
//
// FindByUser applies the filter store-side and returns entries ordered by
// PerformedAt ascending. That ordering is a contract, not an accident.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise Exercise) (*Exercise, error)
	FindByUser(ctx context.Context, userID string, filter LogFilter) ([]Exercise, error)
}

// EventSink receives a notification after an exercise has been persisted.
// Implementations must be best-effort; a sink failure never fails the log
// operation.
type EventSink interface {
	ExerciseLogged(ctx context.Context, user User, exercise Exercise)
}

// ExerciseLog owns exercise creation and history queries.
type ExerciseLog struct {
	users     UserRepository
	exercises ExerciseRepository
	sink      EventSink
	now       func() time.Time
}

// NewExerciseLog constructs an ExerciseLog. sink may be nil.
func NewExerciseLog(users UserRepository, exercises ExerciseRepository, sink EventSink) *ExerciseLog {
	return &ExerciseLog{
		users:     users,
		exercises: exercises,
		sink:      sink,
		now:       time.Now,
	}
}

// LogExercise validates and persists one exercise for the given user.
// Preconditions are checked in order: the user must exist, then description
// and duration must be present and valid. Description and duration share one
// error message; existing clients match on it, so the two causes stay
// indistinguishable.
//
// An absent or unparsable date silently resolves to the current time.
func (l *ExerciseLog) LogExercise(ctx context.Context, userID, description, durationRaw, dateRaw string) (*User, *Exercise, error) {
	user, err := l.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	description = strings.TrimSpace(description)
	duration, err := strconv.Atoi(strings.TrimSpace(durationRaw))
	if description == "" || err != nil || duration <= 0 {
		return nil, nil, NewValidationError("description and duration are required")
	}

	created, err := l.exercises.Create(ctx, Exercise{
		UserID:      user.ID,
		Description: description,
		DurationMin: duration,
		PerformedAt: l.resolveDate(dateRaw),
	})
	if err != nil {
		return nil, nil, err
	}

	observability.RecordExerciseLogged(created.PerformedAt)
	if l.sink != nil {
		l.sink.ExerciseLogged(ctx, *user, *created)
	}
	return user, created, nil
}

// GetLogs returns the user's history, filtered to the inclusive [from, to]
// range and capped at limit. Unparsable bounds and non-positive limits are
// dropped silently rather than rejected.
func (l *ExerciseLog) GetLogs(ctx context.Context, userID, fromRaw, toRaw, limitRaw string) (*User, []Exercise, error) {
	user, err := l.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	var filter LogFilter
	if from, ok := parseDate(fromRaw); ok {
		filter.From = &from
	}
	if to, ok := parseDate(toRaw); ok {
		filter.To = &to
	}
	if limit, err := strconv.Atoi(strings.TrimSpace(limitRaw)); err == nil && limit > 0 {
		filter.Limit = limit
	}

	entries, err := l.exercises.FindByUser(ctx, user.ID, filter)
	if err != nil {
		return nil, nil, err
	}
	return user, entries, nil
}

// resolveDate applies the silent-fallback rule for exercise dates.
func (l *ExerciseLog) resolveDate(raw string) time.Time {
	if ts, ok := parseDate(raw); ok {
		return ts
	}
	return l.now().UTC()
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateInputFormats {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
