package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateMCQExactMatch(t *testing.T) {
	correct := "Process has its own memory space, thread shares memory with other threads"

	cases := []struct {
		name      string
		candidate string
		want      bool
	}{
		{"exact", correct, true},
		{"case insensitive", "process HAS its own MEMORY space, thread shares memory with other threads", true},
		{"surrounding whitespace", "  " + correct + "\n", true},
		{"wrong option", "Process and thread are the same thing", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(TypeMCQ, correct, tc.candidate)
			assert.Equal(t, tc.want, got.IsCorrect)
			if tc.want {
				assert.Equal(t, 100, got.Score)
			} else {
				assert.Equal(t, 0, got.Score)
			}
		})
	}
}

func TestEvaluateFreeTextWorkedExample(t *testing.T) {
	// Key terms: hypertext, transfer, protocol, used, transferring, pages
	// ("web" is exactly three characters and excluded). The candidate
	// matches three of six, so the score is 50.
	correct := "HyperText Transfer Protocol used for transferring web pages"

	got := Evaluate(TypeShortAnswer, correct, "HyperText Transfer Protocol")

	assert.Equal(t, 50, got.Score)
	assert.False(t, got.IsCorrect)
	assert.Equal(t, FeedbackPartial, got.Feedback)
	assert.Equal(t, correct, got.CorrectAnswer)
}

func TestEvaluateFreeTextCanonicalAnswerScoresFull(t *testing.T) {
	correct := "1NF: Each column contains atomic values, no repeating groups. 2NF: 1NF + no partial dependencies on composite primary keys. 3NF: 2NF + no transitive dependencies."

	got := Evaluate(TypeLongAnswer, correct, correct)

	assert.Equal(t, 100, got.Score)
	assert.True(t, got.IsCorrect)
	assert.Equal(t, FeedbackExcellent, got.Feedback)
}

func TestEvaluateFreeTextRepeatedTermsCountPerOccurrence(t *testing.T) {
	// "cache" appears three times in the canonical answer and is counted
	// three times in the denominator. A candidate containing "cache" but
	// not "miss" matches 3 of 4 terms.
	got := Evaluate(TypeShortAnswer, "cache cache cache miss", "a cache")

	assert.Equal(t, 75, got.Score)
	assert.True(t, got.IsCorrect)
}

func TestEvaluateFreeTextNoKeyTerms(t *testing.T) {
	// Every canonical token is three characters or fewer, so there are no
	// key terms. Defined result: zero score, not correct, no panic.
	got := Evaluate(TypeShortAnswer, "a an the of, to. in", "anything at all")

	assert.Equal(t, 0, got.Score)
	assert.False(t, got.IsCorrect)
	assert.Equal(t, FeedbackIncorrect, got.Feedback)
}

func TestEvaluateFeedbackTiers(t *testing.T) {
	// Ten key terms make the score equal to 10x the matched count, which
	// pins each tier boundary exactly.
	correct := "alpha bravo charlie delta echos foxtrot golfs hotel india juliet"

	cases := []struct {
		name      string
		candidate string
		score     int
		feedback  string
		correct   bool
	}{
		{"90 excellent", "alpha bravo charlie delta echos foxtrot golfs hotel india", 90, FeedbackExcellent, true},
		{"70 good", "alpha bravo charlie delta echos foxtrot golfs", 70, FeedbackGood, true},
		{"50 partial", "alpha bravo charlie delta echos", 50, FeedbackPartial, false},
		{"40 incorrect", "alpha bravo charlie delta", 40, FeedbackIncorrect, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(TypeLongAnswer, correct, tc.candidate)
			assert.Equal(t, tc.score, got.Score)
			assert.Equal(t, tc.feedback, got.Feedback)
			assert.Equal(t, tc.correct, got.IsCorrect)
		})
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	correct := "HyperText Transfer Protocol used for transferring web pages"

	first := Evaluate(TypeShortAnswer, correct, "transfer protocol")
	second := Evaluate(TypeShortAnswer, correct, "transfer protocol")

	assert.Equal(t, first, second)
}

func TestKeyTerms(t *testing.T) {
	terms := KeyTerms("BST: Simple implementation, O(n) worst case.")

	// "bst:" survives because the colon is not a separator; "o(n)" is kept
	// for the same reason. Tokens of three characters or fewer are dropped.
	assert.Equal(t, []string{"bst:", "simple", "implementation", "o(n)", "worst", "case"}, terms)
}

func TestNotFoundResult(t *testing.T) {
	got := NotFound()

	assert.False(t, got.IsCorrect)
	assert.Equal(t, 0, got.Score)
	assert.Equal(t, FeedbackNotFound, got.Feedback)
	assert.Empty(t, got.CorrectAnswer)
}
