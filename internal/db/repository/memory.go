package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prepgrind/theory-platform/internal/auth"
	"github.com/prepgrind/theory-platform/internal/question"
	"github.com/prepgrind/theory-platform/internal/submission"
	httperrors "github.com/prepgrind/theory-platform/pkg/http/errors"
)

// In-memory repositories with the same semantics as the Postgres ones.
// They back tests and make the API runnable without infrastructure.

func timeNow() time.Time { return time.Now().UTC() }

// MemoryQuestionRepository keeps questions in insertion order.
type MemoryQuestionRepository struct {
	mu    sync.RWMutex
	order []uuid.UUID
	byID  map[uuid.UUID]question.Question
}

func NewMemoryQuestionRepository() *MemoryQuestionRepository {
	return &MemoryQuestionRepository{byID: make(map[uuid.UUID]question.Question)}
}

var _ question.Repository = (*MemoryQuestionRepository)(nil)

func (r *MemoryQuestionRepository) List(_ context.Context, f question.Filter) ([]question.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []question.Question
	for _, id := range r.order {
		if q := r.byID[id]; f.Matches(q) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *MemoryQuestionRepository) GetByID(_ context.Context, id uuid.UUID) (question.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.byID[id]
	if !ok {
		return question.Question{}, fmt.Errorf("question: %w", httperrors.ErrNotFound)
	}
	return q, nil
}

func (r *MemoryQuestionRepository) GetBySlug(_ context.Context, s string) (question.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if q := r.byID[id]; q.Slug == s {
			return q, nil
		}
	}
	return question.Question{}, fmt.Errorf("question: %w", httperrors.ErrNotFound)
}

func (r *MemoryQuestionRepository) Create(_ context.Context, q question.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		if r.byID[id].Slug == q.Slug {
			return fmt.Errorf("question slug already exists: %w", httperrors.ErrConflict)
		}
	}
	r.order = append(r.order, q.ID)
	r.byID[q.ID] = q
	return nil
}

func (r *MemoryQuestionRepository) Update(_ context.Context, q question.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[q.ID]; !ok {
		return fmt.Errorf("question: %w", httperrors.ErrNotFound)
	}
	r.byID[q.ID] = q
	return nil
}

func (r *MemoryQuestionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("question: %w", httperrors.ErrNotFound)
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryQuestionRepository) RecordSubmission(_ context.Context, id uuid.UUID, accepted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("question: %w", httperrors.ErrNotFound)
	}
	q.SubmissionCount++
	if accepted {
		q.AcceptedCount++
	}
	q.AcceptanceRate = float64(q.AcceptedCount) * 100 / float64(q.SubmissionCount)
	r.byID[id] = q
	return nil
}

func (r *MemoryQuestionRepository) Vote(_ context.Context, id uuid.UUID, like bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("question: %w", httperrors.ErrNotFound)
	}
	if like {
		q.Likes++
	} else {
		q.Dislikes++
	}
	r.byID[id] = q
	return nil
}

// MemoryUserRepository keeps accounts and per-user solved-sets.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]auth.User
	byEmail map[string]uuid.UUID
	solved  map[uuid.UUID][]uuid.UUID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[uuid.UUID]auth.User),
		byEmail: make(map[string]uuid.UUID),
		solved:  make(map[uuid.UUID][]uuid.UUID),
	}
}

var _ auth.UserRepository = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) Create(_ context.Context, u auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email]; exists {
		return fmt.Errorf("email already registered: %w", httperrors.ErrConflict)
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return auth.User{}, fmt.Errorf("user: %w", httperrors.ErrNotFound)
	}
	return r.byID[id], nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return auth.User{}, fmt.Errorf("user: %w", httperrors.ErrNotFound)
	}
	return u, nil
}

func (r *MemoryUserRepository) UpdateLogin(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("user: %w", httperrors.ErrNotFound)
	}
	now := timeNow()
	u.LastLoginAt = &now
	r.byID[id] = u
	return nil
}

func (r *MemoryUserRepository) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("user: %w", httperrors.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	r.byID[id] = u
	return nil
}

func (r *MemoryUserRepository) SolvedQuestions(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	solved := r.solved[id]
	out := make([]uuid.UUID, len(solved))
	copy(out, solved)
	return out, nil
}

// MarkSolved mirrors the transactional Postgres semantics under one lock:
// the solved-set insert and the counter bump happen together, and a
// repeat solve is a no-op reporting false.
func (r *MemoryUserRepository) MarkSolved(_ context.Context, userID, questionID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return false, fmt.Errorf("user: %w", httperrors.ErrNotFound)
	}

	for _, existing := range r.solved[userID] {
		if existing == questionID {
			return false, nil
		}
	}

	r.solved[userID] = append(r.solved[userID], questionID)
	u.SubmissionCount++
	r.byID[userID] = u
	return true, nil
}

// MemorySubmissionRepository is an append-only in-memory log.
type MemorySubmissionRepository struct {
	mu   sync.RWMutex
	subs []submission.Submission
}

func NewMemorySubmissionRepository() *MemorySubmissionRepository {
	return &MemorySubmissionRepository{}
}

var _ submission.Repository = (*MemorySubmissionRepository)(nil)

func (r *MemorySubmissionRepository) Insert(_ context.Context, sub submission.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs = append(r.subs, sub)
	return nil
}

func (r *MemorySubmissionRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]submission.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []submission.Submission
	for _, sub := range r.subs {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *MemorySubmissionRepository) GetByID(_ context.Context, id uuid.UUID) (submission.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sub := range r.subs {
		if sub.ID == id {
			return sub, nil
		}
	}
	return submission.Submission{}, fmt.Errorf("submission: %w", httperrors.ErrNotFound)
}
