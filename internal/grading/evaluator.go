package grading

import (
	"math"
	"strings"
	"unicode"
)

// Question types understood by the evaluator.
const (
	TypeMCQ         = "mcq"
	TypeShortAnswer = "short_answer"
	TypeLongAnswer  = "long_answer"
)

// Score thresholds. The four feedback tiers (90/70/50/below) and the 70%
// correctness cutoff for free-text answers are a hard contract.
const (
	correctThreshold   = 70
	excellentThreshold = 90
	partialThreshold   = 50

	// minKeyTermLen is the exclusive lower bound: only canonical-answer
	// tokens longer than this count as key terms.
	minKeyTermLen = 3
)

// Feedback messages per tier.
const (
	FeedbackExcellent = "Excellent answer! You demonstrated a thorough understanding."
	FeedbackGood      = "Good answer! You covered most key points."
	FeedbackPartial   = "Partial answer. You got some points but missed important details."
	FeedbackIncorrect = "Incorrect answer. Please review the explanation and try again."
	FeedbackNotFound  = "Question not found"
)

// Result is the outcome of evaluating a candidate answer.
type Result struct {
	IsCorrect     bool   `json:"is_correct"`
	Score         int    `json:"score"`
	Feedback      string `json:"feedback"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

// NotFound is the soft-failure result returned when the question id does
// not resolve. Callers get a zero score instead of an error.
func NotFound() Result {
	return Result{IsCorrect: false, Score: 0, Feedback: FeedbackNotFound}
}

// Evaluate grades a candidate answer against the canonical correct answer.
// It is a pure function: deterministic, no side effects.
//
// MCQ answers require trimmed, case-insensitive equality and score 100 or 0.
// Free-text answers score round(100 * matched / total) over the canonical
// answer's key terms, matched by substring against the normalized candidate.
func Evaluate(questionType, correctAnswer, candidate string) Result {
	normalized := strings.ToLower(strings.TrimSpace(candidate))

	var (
		isCorrect bool
		score     int
	)

	if questionType == TypeMCQ {
		isCorrect = normalized == strings.ToLower(strings.TrimSpace(correctAnswer))
		if isCorrect {
			score = 100
		}
	} else {
		terms := KeyTerms(correctAnswer)
		if len(terms) == 0 {
			// All canonical tokens were too short to act as key terms.
			// Defined as zero score rather than a division by zero.
			return Result{IsCorrect: false, Score: 0, Feedback: FeedbackIncorrect, CorrectAnswer: correctAnswer}
		}

		matched := 0
		for _, term := range terms {
			if strings.Contains(normalized, term) {
				matched++
			}
		}

		// Repeated terms in the canonical answer are intentionally not
		// deduplicated: each occurrence counts in the denominator.
		score = int(math.Round(float64(matched) / float64(len(terms)) * 100))
		isCorrect = score >= correctThreshold
	}

	return Result{
		IsCorrect:     isCorrect,
		Score:         score,
		Feedback:      feedbackFor(score),
		CorrectAnswer: correctAnswer,
	}
}

// KeyTerms tokenizes a canonical answer by splitting on commas, periods and
// whitespace runs, keeping lowercased tokens longer than three characters.
func KeyTerms(correctAnswer string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(correctAnswer), func(r rune) bool {
		return r == ',' || r == '.' || unicode.IsSpace(r)
	})

	var terms []string
	for _, tok := range tokens {
		if len(tok) > minKeyTermLen {
			terms = append(terms, tok)
		}
	}
	return terms
}

func feedbackFor(score int) string {
	switch {
	case score >= excellentThreshold:
		return FeedbackExcellent
	case score >= correctThreshold:
		return FeedbackGood
	case score >= partialThreshold:
		return FeedbackPartial
	default:
		return FeedbackIncorrect
	}
}
