package question

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	httperrors "github.com/prepgrind/theory-platform/pkg/http/errors"
)

// Difficulty constants.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Question type constants.
const (
	TypeMCQ         = "mcq"
	TypeShortAnswer = "short_answer"
	TypeLongAnswer  = "long_answer"
)

// Question is a theory interview question in the catalog.
type Question struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Difficulty    string    `json:"difficulty"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Prompt        string    `json:"question"`
	Type          string    `json:"type"`
	Options       []string  `json:"options,omitempty"`
	CorrectAnswer string    `json:"correct_answer,omitempty"`
	Explanation   string    `json:"explanation,omitempty"`
	Tags          []string  `json:"tags"`
	Companies     []string  `json:"companies"`

	// Aggregates. Submissions and votes only ever grow these; admin
	// updates may overwrite them.
	AcceptanceRate  float64 `json:"acceptance_rate"`
	SubmissionCount int     `json:"submissions"`
	AcceptedCount   int     `json:"accepted_count,omitempty"`
	Likes           int     `json:"likes"`
	Dislikes        int     `json:"dislikes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public strips grading data before the question is shown to non-admin
// callers.
func (q Question) Public() Question {
	q.CorrectAnswer = ""
	q.Explanation = ""
	return q
}

// Validate checks the structural invariants of a question record.
// MCQ questions must carry a non-empty option list containing the correct
// answer; every question needs a prompt, a title and a known type.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return fmt.Errorf("title is required: %w", httperrors.ErrValidation)
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("question text is required: %w", httperrors.ErrValidation)
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return fmt.Errorf("correct answer is required: %w", httperrors.ErrValidation)
	}

	switch q.Type {
	case TypeShortAnswer, TypeLongAnswer:
	case TypeMCQ:
		if len(q.Options) == 0 {
			return fmt.Errorf("mcq question requires options: %w", httperrors.ErrValidation)
		}
		found := false
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("mcq correct answer must be one of the options: %w", httperrors.ErrValidation)
		}
	default:
		return fmt.Errorf("unknown question type %q: %w", q.Type, httperrors.ErrValidation)
	}

	switch q.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("unknown difficulty %q: %w", q.Difficulty, httperrors.ErrValidation)
	}

	return nil
}

// Filter narrows a catalog listing. Zero values mean "no constraint".
type Filter struct {
	Difficulty string
	Category   string
	Tags       []string
	Search     string
}

// Matches reports whether a question satisfies the filter. Tag matching is
// any-match; search is a case-insensitive substring test over title,
// description and question text. Pure and order-preserving: callers apply
// it over the store's insertion order.
func (f Filter) Matches(q Question) bool {
	if f.Difficulty != "" && q.Difficulty != f.Difficulty {
		return false
	}
	if f.Category != "" && q.Category != f.Category {
		return false
	}
	if len(f.Tags) > 0 {
		any := false
		for _, want := range f.Tags {
			for _, have := range q.Tags {
				if have == want {
					any = true
					break
				}
			}
			if any {
				break
			}
		}
		if !any {
			return false
		}
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(q.Title), needle) &&
			!strings.Contains(strings.ToLower(q.Description), needle) &&
			!strings.Contains(strings.ToLower(q.Prompt), needle) {
			return false
		}
	}
	return true
}

// UpdateParams carries a shallow-merge partial update. Nil fields are left
// untouched.
type UpdateParams struct {
	Title         *string   `json:"title"`
	Difficulty    *string   `json:"difficulty"`
	Category      *string   `json:"category"`
	Description   *string   `json:"description"`
	Prompt        *string   `json:"question"`
	Type          *string   `json:"type"`
	Options       *[]string `json:"options"`
	CorrectAnswer *string   `json:"correct_answer"`
	Explanation   *string   `json:"explanation"`
	Tags          *[]string `json:"tags"`
	Companies     *[]string `json:"companies"`

	AcceptanceRate  *float64 `json:"acceptance_rate"`
	SubmissionCount *int     `json:"submissions"`
	Likes           *int     `json:"likes"`
	Dislikes        *int     `json:"dislikes"`
}

// Apply merges non-nil fields onto a copy of the question.
func (p UpdateParams) Apply(q Question) Question {
	if p.Title != nil {
		q.Title = *p.Title
	}
	if p.Difficulty != nil {
		q.Difficulty = *p.Difficulty
	}
	if p.Category != nil {
		q.Category = *p.Category
	}
	if p.Description != nil {
		q.Description = *p.Description
	}
	if p.Prompt != nil {
		q.Prompt = *p.Prompt
	}
	if p.Type != nil {
		q.Type = *p.Type
	}
	if p.Options != nil {
		q.Options = *p.Options
	}
	if p.CorrectAnswer != nil {
		q.CorrectAnswer = *p.CorrectAnswer
	}
	if p.Explanation != nil {
		q.Explanation = *p.Explanation
	}
	if p.Tags != nil {
		q.Tags = *p.Tags
	}
	if p.Companies != nil {
		q.Companies = *p.Companies
	}
	if p.AcceptanceRate != nil {
		q.AcceptanceRate = *p.AcceptanceRate
	}
	if p.SubmissionCount != nil {
		q.SubmissionCount = *p.SubmissionCount
	}
	if p.Likes != nil {
		q.Likes = *p.Likes
	}
	if p.Dislikes != nil {
		q.Dislikes = *p.Dislikes
	}
	return q
}

// Vote directions.
const (
	VoteLike    = "like"
	VoteDislike = "dislike"
)
