package submission

import (
	"time"

	"github.com/google/uuid"
)

// Submission is one graded answer attempt. Records are append-only: once
// written they are never mutated or removed.
type Submission struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	QuestionID       uuid.UUID `json:"question_id"`
	Answer           string    `json:"answer"`
	IsCorrect        bool      `json:"is_correct"`
	Score            int       `json:"score"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
	CreatedAt        time.Time `json:"created_at"`
}

// SubmitRequest is the caller-supplied part of a submission.
type SubmitRequest struct {
	Answer           string `json:"answer"`
	TimeTakenSeconds int    `json:"time_taken_seconds"`
}
