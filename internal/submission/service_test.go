package submission

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepgrind/theory-platform/internal/grading"
	"github.com/prepgrind/theory-platform/internal/question"
	httperrors "github.com/prepgrind/theory-platform/pkg/http/errors"
)

type stubRepo struct {
	subs []Submission
}

func (r *stubRepo) Insert(_ context.Context, sub Submission) error {
	r.subs = append(r.subs, sub)
	return nil
}

func (r *stubRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]Submission, error) {
	var out []Submission
	for _, s := range r.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubRepo) GetByID(_ context.Context, id uuid.UUID) (Submission, error) {
	for _, s := range r.subs {
		if s.ID == id {
			return s, nil
		}
	}
	return Submission{}, httperrors.ErrNotFound
}

type stubQuestions struct {
	byID     map[uuid.UUID]question.Question
	recorded []bool
}

func (q *stubQuestions) GetByID(_ context.Context, id uuid.UUID) (question.Question, error) {
	found, ok := q.byID[id]
	if !ok {
		return question.Question{}, httperrors.ErrNotFound
	}
	return found, nil
}

func (q *stubQuestions) RecordSubmission(_ context.Context, _ uuid.UUID, accepted bool) error {
	q.recorded = append(q.recorded, accepted)
	return nil
}

type stubProgress struct {
	solved map[uuid.UUID]map[uuid.UUID]bool
	count  map[uuid.UUID]int
	err    error
}

func newStubProgress() *stubProgress {
	return &stubProgress{
		solved: make(map[uuid.UUID]map[uuid.UUID]bool),
		count:  make(map[uuid.UUID]int),
	}
}

func (p *stubProgress) MarkSolved(_ context.Context, userID, questionID uuid.UUID) (bool, error) {
	if p.err != nil {
		return false, p.err
	}
	if p.solved[userID] == nil {
		p.solved[userID] = make(map[uuid.UUID]bool)
	}
	if p.solved[userID][questionID] {
		return false, nil
	}
	p.solved[userID][questionID] = true
	p.count[userID]++
	return true, nil
}

type stubFeed struct {
	events []Submission
}

func (f *stubFeed) PublishSubmission(sub Submission, _ grading.Result) {
	f.events = append(f.events, sub)
}

func fixtureQuestion() question.Question {
	return question.Question{
		ID:            uuid.New(),
		Title:         "Network Protocols",
		Slug:          "network-protocols",
		Difficulty:    question.DifficultyEasy,
		Type:          question.TypeShortAnswer,
		CorrectAnswer: "HyperText Transfer Protocol - used for transferring web pages and data over the internet",
	}
}

func newTestService(q question.Question) (*Service, *stubRepo, *stubQuestions, *stubProgress, *stubFeed) {
	repo := &stubRepo{}
	questions := &stubQuestions{byID: map[uuid.UUID]question.Question{q.ID: q}}
	progress := newStubProgress()
	feed := &stubFeed{}
	svc := NewService(repo, questions, progress, feed, zerolog.Nop())
	return svc, repo, questions, progress, feed
}

func TestSubmit_CorrectFirstTime(t *testing.T) {
	q := fixtureQuestion()
	svc, repo, questions, progress, feed := newTestService(q)
	userID := uuid.New()

	sub, result, err := svc.Submit(context.Background(), userID, q.ID, SubmitRequest{
		Answer:           q.CorrectAnswer,
		TimeTakenSeconds: 120,
	})
	require.NoError(t, err)

	assert.True(t, result.IsCorrect)
	assert.Equal(t, 100, result.Score)
	assert.True(t, sub.IsCorrect)
	assert.Equal(t, userID, sub.UserID)
	assert.Len(t, repo.subs, 1)
	assert.Equal(t, 1, progress.count[userID])
	assert.Equal(t, []bool{true}, questions.recorded)
	assert.Len(t, feed.events, 1)
}

func TestSubmit_RepeatCorrectDoesNotRecount(t *testing.T) {
	q := fixtureQuestion()
	svc, repo, _, progress, _ := newTestService(q)
	userID := uuid.New()
	req := SubmitRequest{Answer: q.CorrectAnswer, TimeTakenSeconds: 60}

	_, _, err := svc.Submit(context.Background(), userID, q.ID, req)
	require.NoError(t, err)
	_, _, err = svc.Submit(context.Background(), userID, q.ID, req)
	require.NoError(t, err)

	// Both attempts are logged, the solved counter moves once.
	assert.Len(t, repo.subs, 2)
	assert.Equal(t, 1, progress.count[userID])
}

func TestSubmit_IncorrectLeavesProgressAlone(t *testing.T) {
	q := fixtureQuestion()
	svc, repo, questions, progress, _ := newTestService(q)
	userID := uuid.New()

	_, result, err := svc.Submit(context.Background(), userID, q.ID, SubmitRequest{Answer: "no idea"})
	require.NoError(t, err)

	assert.False(t, result.IsCorrect)
	assert.Len(t, repo.subs, 1)
	assert.Equal(t, 0, progress.count[userID])
	assert.Equal(t, []bool{false}, questions.recorded)
}

func TestSubmit_RequiresAuthentication(t *testing.T) {
	q := fixtureQuestion()
	svc, repo, _, _, _ := newTestService(q)

	_, _, err := svc.Submit(context.Background(), uuid.Nil, q.ID, SubmitRequest{Answer: "x"})
	assert.ErrorIs(t, err, httperrors.ErrAuthenticationRequired)
	assert.Empty(t, repo.subs)
}

func TestSubmit_RejectsNegativeTime(t *testing.T) {
	q := fixtureQuestion()
	svc, repo, _, _, _ := newTestService(q)

	_, _, err := svc.Submit(context.Background(), uuid.New(), q.ID, SubmitRequest{Answer: "x", TimeTakenSeconds: -1})
	assert.ErrorIs(t, err, httperrors.ErrValidation)
	assert.Empty(t, repo.subs)
}

func TestSubmit_UnknownQuestion(t *testing.T) {
	q := fixtureQuestion()
	svc, repo, _, _, _ := newTestService(q)

	_, _, err := svc.Submit(context.Background(), uuid.New(), uuid.New(), SubmitRequest{Answer: "x"})
	assert.ErrorIs(t, err, httperrors.ErrNotFound)
	assert.Empty(t, repo.subs)
}

func TestSubmit_ProgressFailureSurfaces(t *testing.T) {
	q := fixtureQuestion()
	repo := &stubRepo{}
	questions := &stubQuestions{byID: map[uuid.UUID]question.Question{q.ID: q}}
	progress := newStubProgress()
	progress.err = errors.New("pg down")
	svc := NewService(repo, questions, progress, nil, zerolog.Nop())

	_, _, err := svc.Submit(context.Background(), uuid.New(), q.ID, SubmitRequest{Answer: q.CorrectAnswer})
	assert.Error(t, err)
	// The append happened before the progress failure.
	assert.Len(t, repo.subs, 1)
}

func TestListForUser_RequiresAuthentication(t *testing.T) {
	q := fixtureQuestion()
	svc, _, _, _, _ := newTestService(q)

	_, err := svc.ListForUser(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, httperrors.ErrAuthenticationRequired)
}

func TestGet_OwnerAndAdminOnly(t *testing.T) {
	q := fixtureQuestion()
	svc, repo, _, _, _ := newTestService(q)
	owner := uuid.New()

	sub, _, err := svc.Submit(context.Background(), owner, q.ID, SubmitRequest{Answer: "x"})
	require.NoError(t, err)
	require.Len(t, repo.subs, 1)

	got, err := svc.Get(context.Background(), sub.ID, owner, "standard")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)

	_, err = svc.Get(context.Background(), sub.ID, uuid.New(), "admin")
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), sub.ID, uuid.New(), "standard")
	assert.ErrorIs(t, err, httperrors.ErrAuthorizationDenied)
}
