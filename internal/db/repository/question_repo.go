package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepgrind/theory-platform/internal/question"
	httperrors "github.com/prepgrind/theory-platform/pkg/http/errors"
)

// QuestionRepository is the Postgres-backed catalog store. Listings come
// back in insertion order (created_at, then id for ties).
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository wraps a connection pool for catalog operations.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

var _ question.Repository = (*QuestionRepository)(nil)

const questionColumns = `id, title, slug, difficulty, category, description, question, question_type,
	options, correct_answer, explanation, tags, companies,
	acceptance_rate, submission_count, accepted_count, likes, dislikes,
	created_at, updated_at`

func scanQuestion(row pgx.Row) (question.Question, error) {
	var q question.Question
	err := row.Scan(&q.ID, &q.Title, &q.Slug, &q.Difficulty, &q.Category,
		&q.Description, &q.Prompt, &q.Type,
		&q.Options, &q.CorrectAnswer, &q.Explanation, &q.Tags, &q.Companies,
		&q.AcceptanceRate, &q.SubmissionCount, &q.AcceptedCount, &q.Likes, &q.Dislikes,
		&q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return question.Question{}, fmt.Errorf("question: %w", httperrors.ErrNotFound)
	}
	if err != nil {
		return question.Question{}, fmt.Errorf("scan question: %w", err)
	}
	return q, nil
}

// List returns the filtered catalog in insertion order.
func (r *QuestionRepository) List(ctx context.Context, f question.Filter) ([]question.Question, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Difficulty != "" {
		where = append(where, "difficulty = "+arg(f.Difficulty))
	}
	if f.Category != "" {
		where = append(where, "category = "+arg(f.Category))
	}
	if len(f.Tags) > 0 {
		where = append(where, "tags && "+arg(f.Tags))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s OR question ILIKE %s)", p, p, p))
	}

	query := `SELECT ` + questionColumns + ` FROM questions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []question.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// GetByID fetches one question by id.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (question.Question, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
	return scanQuestion(row)
}

// GetBySlug fetches one question by slug.
func (r *QuestionRepository) GetBySlug(ctx context.Context, s string) (question.Question, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE slug = $1`, s)
	return scanQuestion(row)
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q question.Question) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO questions (id, title, slug, difficulty, category, description, question, question_type,
			options, correct_answer, explanation, tags, companies,
			acceptance_rate, submission_count, accepted_count, likes, dislikes,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		q.ID, q.Title, q.Slug, q.Difficulty, q.Category, q.Description, q.Prompt, q.Type,
		q.Options, q.CorrectAnswer, q.Explanation, q.Tags, q.Companies,
		q.AcceptanceRate, q.SubmissionCount, q.AcceptedCount, q.Likes, q.Dislikes,
		q.CreatedAt, q.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("question slug already exists: %w", httperrors.ErrConflict)
		}
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

// Update overwrites a question record.
func (r *QuestionRepository) Update(ctx context.Context, q question.Question) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE questions SET
			title = $2, slug = $3, difficulty = $4, category = $5, description = $6,
			question = $7, question_type = $8, options = $9, correct_answer = $10,
			explanation = $11, tags = $12, companies = $13,
			acceptance_rate = $14, submission_count = $15, accepted_count = $16,
			likes = $17, dislikes = $18, updated_at = $19
		WHERE id = $1`,
		q.ID, q.Title, q.Slug, q.Difficulty, q.Category, q.Description,
		q.Prompt, q.Type, q.Options, q.CorrectAnswer,
		q.Explanation, q.Tags, q.Companies,
		q.AcceptanceRate, q.SubmissionCount, q.AcceptedCount,
		q.Likes, q.Dislikes, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("question: %w", httperrors.ErrNotFound)
	}
	return nil
}

// Delete removes a question. Submissions referencing it are kept.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("question: %w", httperrors.ErrNotFound)
	}
	return nil
}

// RecordSubmission bumps the aggregate counters for one graded attempt and
// recomputes the acceptance rate in the same statement.
func (r *QuestionRepository) RecordSubmission(ctx context.Context, id uuid.UUID, accepted bool) error {
	accInc := 0
	if accepted {
		accInc = 1
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE questions SET
			submission_count = submission_count + 1,
			accepted_count = accepted_count + $2,
			acceptance_rate = round((accepted_count + $2) * 100.0 / (submission_count + 1), 1)
		WHERE id = $1`, id, accInc)
	if err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("question: %w", httperrors.ErrNotFound)
	}
	return nil
}

// Vote bumps the like or dislike counter.
func (r *QuestionRepository) Vote(ctx context.Context, id uuid.UUID, like bool) error {
	column := "dislikes"
	if like {
		column = "likes"
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE questions SET `+column+` = `+column+` + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("record vote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("question: %w", httperrors.ErrNotFound)
	}
	return nil
}
