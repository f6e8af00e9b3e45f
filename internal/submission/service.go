package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prepgrind/theory-platform/internal/auth"
	"github.com/prepgrind/theory-platform/internal/grading"
	"github.com/prepgrind/theory-platform/internal/question"
	httperrors "github.com/prepgrind/theory-platform/pkg/http/errors"
)

// Repository is the append-only submission log.
type Repository interface {
	Insert(ctx context.Context, sub Submission) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Submission, error)
	GetByID(ctx context.Context, id uuid.UUID) (Submission, error)
}

// questionSource resolves questions and records their aggregate counters.
// Satisfied by question.Repository.
type questionSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (question.Question, error)
	RecordSubmission(ctx context.Context, id uuid.UUID, accepted bool) error
}

// progressStore tracks per-user solved-sets. MarkSolved must be atomic:
// it adds the question to the solved-set and bumps the lifetime counter
// only when the question was not already solved, reporting whether it was
// newly solved. Satisfied by the user repositories.
type progressStore interface {
	MarkSolved(ctx context.Context, userID, questionID uuid.UUID) (bool, error)
}

// Publisher receives every recorded submission (the admin live feed).
type Publisher interface {
	PublishSubmission(sub Submission, result grading.Result)
}

// Service records graded submissions and updates user progress.
type Service struct {
	repo      Repository
	questions questionSource
	progress  progressStore
	feed      Publisher
	logger    zerolog.Logger
}

// NewService creates a submission service. feed may be nil.
func NewService(repo Repository, questions questionSource, progress progressStore, feed Publisher, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		questions: questions,
		progress:  progress,
		feed:      feed,
		logger:    logger,
	}
}

// Submit grades a candidate answer and appends the resulting Submission.
//
// Side effects are exactly: one append to the submission log, at most one
// solved-set/counter mutation for the user, and one question aggregate
// update. A correct answer for an already-solved question is still logged
// but does not re-increment the user's progress.
func (s *Service) Submit(ctx context.Context, userID, questionID uuid.UUID, req SubmitRequest) (Submission, grading.Result, error) {
	if userID == uuid.Nil {
		return Submission{}, grading.Result{}, fmt.Errorf("no current user: %w", httperrors.ErrAuthenticationRequired)
	}
	if req.TimeTakenSeconds < 0 {
		return Submission{}, grading.Result{}, fmt.Errorf("time taken must be non-negative: %w", httperrors.ErrValidation)
	}

	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return Submission{}, grading.Result{}, err
	}

	result := grading.Evaluate(q.Type, q.CorrectAnswer, req.Answer)

	sub := Submission{
		ID:               uuid.New(),
		UserID:           userID,
		QuestionID:       questionID,
		Answer:           req.Answer,
		IsCorrect:        result.IsCorrect,
		Score:            result.Score,
		TimeTakenSeconds: req.TimeTakenSeconds,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, sub); err != nil {
		return Submission{}, grading.Result{}, fmt.Errorf("append submission: %w", err)
	}

	if result.IsCorrect {
		newlySolved, err := s.progress.MarkSolved(ctx, userID, questionID)
		if err != nil {
			// The submission is already logged; surface the progress
			// failure instead of dropping it silently.
			return Submission{}, grading.Result{}, fmt.Errorf("update solved set: %w", err)
		}
		if newlySolved {
			s.logger.Info().
				Str("user_id", userID.String()).
				Str("question_id", questionID.String()).
				Msg("question solved")
		}
	}

	if err := s.questions.RecordSubmission(ctx, questionID, result.IsCorrect); err != nil {
		s.logger.Warn().Err(err).Str("question_id", questionID.String()).Msg("question counter update failed")
	}

	if s.feed != nil {
		s.feed.PublishSubmission(sub, result)
	}

	return sub, result, nil
}

// ListForUser returns the caller's own submission history.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]Submission, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("no current user: %w", httperrors.ErrAuthenticationRequired)
	}
	return s.repo.ListByUser(ctx, userID)
}

// Get returns a single submission, visible to its owner and to admins.
func (s *Service) Get(ctx context.Context, id, callerID uuid.UUID, callerRole string) (Submission, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	if sub.UserID != callerID && callerRole != auth.RoleAdmin {
		return Submission{}, fmt.Errorf("submission belongs to another user: %w", httperrors.ErrAuthorizationDenied)
	}
	return sub, nil
}
