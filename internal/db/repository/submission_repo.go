package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepgrind/theory-platform/internal/submission"
	httperrors "github.com/prepgrind/theory-platform/pkg/http/errors"
)

// SubmissionRepository is the Postgres-backed submission log. Rows are only
// ever inserted and read.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository wraps a connection pool for submission
// operations.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

var _ submission.Repository = (*SubmissionRepository)(nil)

const submissionColumns = `id, user_id, question_id, answer, is_correct, score, time_taken_seconds, created_at`

func scanSubmission(row pgx.Row) (submission.Submission, error) {
	var s submission.Submission
	err := row.Scan(&s.ID, &s.UserID, &s.QuestionID, &s.Answer,
		&s.IsCorrect, &s.Score, &s.TimeTakenSeconds, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return submission.Submission{}, fmt.Errorf("submission: %w", httperrors.ErrNotFound)
	}
	if err != nil {
		return submission.Submission{}, fmt.Errorf("scan submission: %w", err)
	}
	return s, nil
}

// Insert appends one submission.
func (r *SubmissionRepository) Insert(ctx context.Context, sub submission.Submission) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO submissions (id, user_id, question_id, answer, is_correct, score, time_taken_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sub.ID, sub.UserID, sub.QuestionID, sub.Answer,
		sub.IsCorrect, sub.Score, sub.TimeTakenSeconds, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// ListByUser returns a user's history, oldest first.
func (r *SubmissionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]submission.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []submission.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID fetches one submission.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (submission.Submission, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	return scanSubmission(row)
}
