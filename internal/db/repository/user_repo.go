package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepgrind/theory-platform/internal/auth"
	httperrors "github.com/prepgrind/theory-platform/pkg/http/errors"
)

// UserRepository is the Postgres-backed account and progress store.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository wraps a connection pool for user operations.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

var _ auth.UserRepository = (*UserRepository)(nil)

const userColumns = `id, display_name, email, password_hash, role, submission_count, created_at, last_login_at`

func scanUser(row pgx.Row) (auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.DisplayName, &u.Email, &u.PasswordHash, &u.Role,
		&u.SubmissionCount, &u.CreatedAt, &u.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, fmt.Errorf("user: %w", httperrors.ErrNotFound)
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// Create inserts a new account.
func (r *UserRepository) Create(ctx context.Context, u auth.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, display_name, email, password_hash, role, submission_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.DisplayName, u.Email, u.PasswordHash, u.Role, u.SubmissionCount, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("email already registered: %w", httperrors.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByEmail fetches an account by (lowercased) email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (auth.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetByID fetches an account by id.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (auth.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// UpdateLogin records the last login timestamp.
func (r *UserRepository) UpdateLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET last_login_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update login: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user: %w", httperrors.ErrNotFound)
	}
	return nil
}

// SolvedQuestions returns the ids of every question the user has solved,
// oldest first.
func (r *UserRepository) SolvedQuestions(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT question_id FROM user_solved_questions
		WHERE user_id = $1
		ORDER BY solved_at`, id)
	if err != nil {
		return nil, fmt.Errorf("query solved set: %w", err)
	}
	defer rows.Close()

	var solved []uuid.UUID
	for rows.Next() {
		var qid uuid.UUID
		if err := rows.Scan(&qid); err != nil {
			return nil, fmt.Errorf("scan solved question: %w", err)
		}
		solved = append(solved, qid)
	}
	return solved, rows.Err()
}

// MarkSolved adds a question to the user's solved-set and bumps the
// lifetime counter, both inside one transaction. The insert is idempotent;
// the counter moves only when the question was not already solved. Returns
// whether the question was newly solved.
func (r *UserRepository) MarkSolved(ctx context.Context, userID, questionID uuid.UUID) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin mark solved: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO user_solved_questions (user_id, question_id, solved_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, question_id) DO NOTHING`,
		userID, questionID)
	if err != nil {
		return false, fmt.Errorf("insert solved question: %w", err)
	}

	newlySolved := tag.RowsAffected() == 1
	if newlySolved {
		if _, err := tx.Exec(ctx, `
			UPDATE users SET submission_count = submission_count + 1
			WHERE id = $1`, userID); err != nil {
			return false, fmt.Errorf("bump solved counter: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit mark solved: %w", err)
	}
	return newlySolved, nil
}
