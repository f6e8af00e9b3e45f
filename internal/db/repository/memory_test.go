package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepgrind/theory-platform/internal/auth"
	"github.com/prepgrind/theory-platform/internal/question"
	"github.com/prepgrind/theory-platform/internal/submission"
	httperrors "github.com/prepgrind/theory-platform/pkg/http/errors"
)

func seedQuestion(t *testing.T, repo *MemoryQuestionRepository, title, slug string) question.Question {
	t.Helper()
	q := question.Question{
		ID:            uuid.New(),
		Title:         title,
		Slug:          slug,
		Difficulty:    question.DifficultyEasy,
		Prompt:        "prompt",
		Type:          question.TypeShortAnswer,
		CorrectAnswer: "answer",
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), q))
	return q
}

func TestMemoryQuestionRepo_ListInsertionOrder(t *testing.T) {
	repo := NewMemoryQuestionRepository()
	first := seedQuestion(t, repo, "First", "first")
	second := seedQuestion(t, repo, "Second", "second")
	third := seedQuestion(t, repo, "Third", "third")

	qs, err := repo.List(context.Background(), question.Filter{})
	require.NoError(t, err)
	require.Len(t, qs, 3)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID, third.ID},
		[]uuid.UUID{qs[0].ID, qs[1].ID, qs[2].ID})

	// Deleting the middle entry keeps the rest in order.
	require.NoError(t, repo.Delete(context.Background(), second.ID))
	qs, err = repo.List(context.Background(), question.Filter{})
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, first.ID, qs[0].ID)
	assert.Equal(t, third.ID, qs[1].ID)
}

func TestMemoryQuestionRepo_DuplicateSlug(t *testing.T) {
	repo := NewMemoryQuestionRepository()
	seedQuestion(t, repo, "First", "shared-slug")

	dup := question.Question{ID: uuid.New(), Title: "Second", Slug: "shared-slug"}
	assert.ErrorIs(t, repo.Create(context.Background(), dup), httperrors.ErrConflict)
}

func TestMemoryQuestionRepo_RecordSubmissionAggregates(t *testing.T) {
	repo := NewMemoryQuestionRepository()
	q := seedQuestion(t, repo, "Counted", "counted")

	require.NoError(t, repo.RecordSubmission(context.Background(), q.ID, true))
	require.NoError(t, repo.RecordSubmission(context.Background(), q.ID, false))

	got, err := repo.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.SubmissionCount)
	assert.Equal(t, 1, got.AcceptedCount)
	assert.InDelta(t, 50.0, got.AcceptanceRate, 0.01)
}

func TestMemoryQuestionRepo_NotFound(t *testing.T) {
	repo := NewMemoryQuestionRepository()

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, httperrors.ErrNotFound)
	_, err = repo.GetBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, httperrors.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), uuid.New()), httperrors.ErrNotFound)
	assert.ErrorIs(t, repo.Vote(context.Background(), uuid.New(), true), httperrors.ErrNotFound)
}

func TestMemoryUserRepo_MarkSolvedIdempotent(t *testing.T) {
	repo := NewMemoryUserRepository()
	user := auth.User{ID: uuid.New(), DisplayName: "Jordan", Email: "jordan@example.com", Role: auth.RoleStandard}
	require.NoError(t, repo.Create(context.Background(), user))

	questionID := uuid.New()

	newly, err := repo.MarkSolved(context.Background(), user.ID, questionID)
	require.NoError(t, err)
	assert.True(t, newly)

	newly, err = repo.MarkSolved(context.Background(), user.ID, questionID)
	require.NoError(t, err)
	assert.False(t, newly)

	got, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SubmissionCount)

	solved, err := repo.SolvedQuestions(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{questionID}, solved)
}

func TestMemoryUserRepo_DuplicateEmail(t *testing.T) {
	repo := NewMemoryUserRepository()
	u := auth.User{ID: uuid.New(), Email: "jordan@example.com"}
	require.NoError(t, repo.Create(context.Background(), u))

	dup := auth.User{ID: uuid.New(), Email: "jordan@example.com"}
	assert.ErrorIs(t, repo.Create(context.Background(), dup), httperrors.ErrConflict)
}

func TestMemorySubmissionRepo_AppendOnlyPerUser(t *testing.T) {
	repo := NewMemorySubmissionRepository()
	alice, bob := uuid.New(), uuid.New()

	for i, userID := range []uuid.UUID{alice, bob, alice} {
		sub := submission.Submission{
			ID:         uuid.New(),
			UserID:     userID,
			QuestionID: uuid.New(),
			Answer:     "answer",
			Score:      i * 10,
			CreatedAt:  time.Now().UTC(),
		}
		require.NoError(t, repo.Insert(context.Background(), sub))
	}

	aliceSubs, err := repo.ListByUser(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, aliceSubs, 2)
	assert.Equal(t, 0, aliceSubs[0].Score)
	assert.Equal(t, 20, aliceSubs[1].Score)

	_, err = repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, httperrors.ErrNotFound)
}
