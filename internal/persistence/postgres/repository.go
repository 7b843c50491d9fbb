// Package postgres provides pgx-backed persistence for the exercise tracker.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GalladeX3/exercise-tracker-test-project/internal/domain"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint breach.
const uniqueViolation = "23505"

// UserRepository provides Postgres-backed persistence for users.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts the user with a generated id. A unique violation on
// username is reported as domain.ErrDuplicateUsername so the registry can
// run its fallback lookup.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	user.ID = uuid.NewString()

	const stmt = `INSERT INTO users (user_id, username) VALUES ($1, $2)`
	if _, err := r.pool.Exec(ctx, stmt, user.ID, user.Username); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, err
	}
	return &user, nil
}

// FindByID returns (nil, nil) when the id is unknown.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT user_id, username FROM users WHERE user_id=$1`
	return r.findOne(ctx, query, id)
}

// FindByUsername returns (nil, nil) when the username is unknown.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT user_id, username FROM users WHERE username=$1`
	return r.findOne(ctx, query, username)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	var user domain.User
	if err := row.Scan(&user.ID, &user.Username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// List returns every user in insertion order.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT user_id, username FROM users ORDER BY created_at, user_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Username); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// ExerciseRepository provides Postgres-backed persistence for exercises.
type ExerciseRepository struct {
	pool *pgxpool.Pool
}

// NewExerciseRepository constructs an ExerciseRepository.
func NewExerciseRepository(pool *pgxpool.Pool) *ExerciseRepository {
	return &ExerciseRepository{pool: pool}
}

// Create inserts the exercise with a generated id.
func (r *ExerciseRepository) Create(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	exercise.ID = uuid.NewString()

	const stmt = `INSERT INTO exercises (exercise_id, user_id, description, duration_min, performed_at)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.pool.Exec(ctx, stmt,
		exercise.ID,
		exercise.UserID,
		exercise.Description,
		exercise.DurationMin,
		exercise.PerformedAt,
	)
	if err != nil {
		return nil, err
	}
	return &exercise, nil
}

// FindByUser returns the user's exercises ordered by date ascending, with
// the inclusive range and limit applied in SQL.
func (r *ExerciseRepository) FindByUser(ctx context.Context, userID string, filter domain.LogFilter) ([]domain.Exercise, error) {
	query := `SELECT exercise_id, user_id, description, duration_min, performed_at
        FROM exercises WHERE user_id=$1`
	args := []any{userID}

	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND performed_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND performed_at <= $%d", len(args))
	}

	query += " ORDER BY performed_at ASC, exercise_id ASC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Exercise
	for rows.Next() {
		var entry domain.Exercise
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Description, &entry.DurationMin, &entry.PerformedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
