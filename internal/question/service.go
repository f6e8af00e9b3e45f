package question

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	"github.com/prepgrind/theory-platform/internal/grading"
	httperrors "github.com/prepgrind/theory-platform/pkg/http/errors"
)

// Repository is the catalog's durable store. Implementations must preserve
// insertion order for List.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Question, error)
	GetByID(ctx context.Context, id uuid.UUID) (Question, error)
	GetBySlug(ctx context.Context, s string) (Question, error)
	Create(ctx context.Context, q Question) error
	Update(ctx context.Context, q Question) error
	Delete(ctx context.Context, id uuid.UUID) error
	RecordSubmission(ctx context.Context, id uuid.UUID, accepted bool) error
	Vote(ctx context.Context, id uuid.UUID, like bool) error
}

// ListCache holds filtered catalog listings (implemented by the
// Redis-backed Cache).
type ListCache interface {
	Get(ctx context.Context, f Filter) ([]Question, error)
	Set(ctx context.Context, f Filter, qs []Question) error
	Invalidate(ctx context.Context) error
}

// Service exposes catalog reads, admin CRUD and ad-hoc answer evaluation.
type Service struct {
	repo   Repository
	cache  ListCache
	logger zerolog.Logger
}

func NewService(repo Repository, cache ListCache, logger zerolog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// List returns the filtered catalog in insertion order.
func (s *Service) List(ctx context.Context, f Filter) ([]Question, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, f); err == nil && cached != nil {
			return cached, nil
		}
	}

	qs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, f, qs); err != nil {
			s.logger.Warn().Err(err).Msg("question list cache set failed")
		}
	}
	return qs, nil
}

// Get resolves a question by uuid or, failing that, by slug.
func (s *Service) Get(ctx context.Context, key string) (Question, error) {
	if id, err := uuid.Parse(key); err == nil {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.GetBySlug(ctx, key)
}

// Create validates and stores a new question with a fresh id and a slug
// derived from the title.
func (s *Service) Create(ctx context.Context, q Question) (Question, error) {
	q.ID = uuid.New()
	q.Slug = slug.Make(q.Title)
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now

	if err := q.Validate(); err != nil {
		return Question{}, err
	}

	if err := s.repo.Create(ctx, q); err != nil {
		return Question{}, fmt.Errorf("create question: %w", err)
	}
	s.invalidate(ctx)

	s.logger.Info().Str("question_id", q.ID.String()).Str("slug", q.Slug).Msg("question created")
	return q, nil
}

// Update shallow-merges the provided fields onto the stored record. The
// merged record must still satisfy the structural invariants; validation
// failures leave the store unchanged.
func (s *Service) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (Question, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Question{}, err
	}

	merged := p.Apply(current)
	if p.Title != nil {
		merged.Slug = slug.Make(merged.Title)
	}
	merged.UpdatedAt = time.Now().UTC()

	if err := merged.Validate(); err != nil {
		return Question{}, err
	}

	if err := s.repo.Update(ctx, merged); err != nil {
		return Question{}, fmt.Errorf("update question: %w", err)
	}
	s.invalidate(ctx)

	s.logger.Info().Str("question_id", id.String()).Msg("question updated")
	return merged, nil
}

// Delete removes a question from the catalog.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)

	s.logger.Info().Str("question_id", id.String()).Msg("question deleted")
	return nil
}

// Vote bumps the like or dislike counter. Counters are monotonic; there is
// no un-vote.
func (s *Service) Vote(ctx context.Context, id uuid.UUID, direction string) error {
	switch direction {
	case VoteLike, VoteDislike:
	default:
		return fmt.Errorf("vote must be %q or %q: %w", VoteLike, VoteDislike, httperrors.ErrValidation)
	}

	if err := s.repo.Vote(ctx, id, direction == VoteLike); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Evaluate grades a candidate answer without recording anything. An
// unresolvable question yields the evaluator's soft not-found result
// rather than an error.
func (s *Service) Evaluate(ctx context.Context, key, candidate string) grading.Result {
	q, err := s.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, httperrors.ErrNotFound) {
			s.logger.Warn().Err(err).Str("question", key).Msg("evaluate lookup failed")
		}
		return grading.NotFound()
	}
	return grading.Evaluate(q.Type, q.CorrectAnswer, candidate)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("question list cache invalidation failed")
	}
}
