package grading

import (
	"testing"

	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateScore(t *testing.T) {
	checker := NewChecker()

	questions := []models.Question{
		{ID: "q1", Type: models.MultipleChoice, Points: 4, Content: mustContent(t, models.MultipleChoiceContent{
			Choices: []models.Choice{{ID: "a", Correct: true}, {ID: "b"}},
		})},
		{ID: "q2", Type: models.TrueFalse, Points: 2, Content: mustContent(t, models.TrueFalseContent{Correct: false})},
		{ID: "q3", Type: models.FillBlank, Points: 4, Content: mustContent(t, models.FillBlankContent{
			Answers: []string{"x", "y"},
		})},
	}

	t.Run("aggregates points, counts and percentage", func(t *testing.T) {
		answers := map[string]models.UserAnswer{
			"q1": models.TextAnswer("a"),
			"q2": models.TextAnswer("true"), // wrong
			"q3": models.ListAnswer("x", "nope"),
		}

		summary, err := checker.CalculateScore(questions, answers)
		require.NoError(t, err)

		assert.Equal(t, 3, summary.TotalQuestions)
		assert.Equal(t, 1, summary.CorrectCount)
		assert.Equal(t, 6.0, summary.EarnedPoints) // 4 + 0 + 2
		assert.Equal(t, 10.0, summary.TotalPoints)
		assert.Equal(t, 60, summary.Percentage)
		require.Len(t, summary.Results, 3)
		assert.True(t, summary.Results["q1"].IsCorrect)
		assert.False(t, summary.Results["q2"].IsCorrect)
	})

	t.Run("missing answers count as unanswered", func(t *testing.T) {
		summary, err := checker.CalculateScore(questions, nil)
		require.NoError(t, err)
		assert.Zero(t, summary.EarnedPoints)
		assert.Zero(t, summary.CorrectCount)
		assert.Equal(t, 10.0, summary.TotalPoints)
		assert.Zero(t, summary.Percentage)
		assert.Len(t, summary.Results, 3)
	})

	t.Run("no questions yields zero percentage, not NaN", func(t *testing.T) {
		summary, err := checker.CalculateScore(nil, nil)
		require.NoError(t, err)
		assert.Zero(t, summary.Percentage)
		assert.Zero(t, summary.TotalPoints)
	})

	t.Run("unknown type propagates", func(t *testing.T) {
		bad := append([]models.Question{}, questions...)
		bad = append(bad, models.Question{ID: "q4", Type: "matrix", Points: 1})
		_, err := checker.CalculateScore(bad, nil)
		assert.ErrorIs(t, err, ErrUnknownQuestionType)
	})

	t.Run("detail payloads survive aggregation", func(t *testing.T) {
		summary, err := checker.CalculateScore(questions, map[string]models.UserAnswer{
			"q3": models.ListAnswer("x", "y"),
		})
		require.NoError(t, err)
		assert.Len(t, summary.Results["q3"].Blanks, 2)
		assert.NotNil(t, summary.Results["q1"].Choices)
	})
}

func TestScoreSummary_HasPendingAIGrades(t *testing.T) {
	checker := NewChecker()
	questions := []models.Question{
		{ID: "q1", Type: models.FreeText, Points: 5, Content: mustContent(t, models.FreeTextContent{
			AIGradingEnabled: true,
		})},
	}

	summary, err := checker.CalculateScore(questions, map[string]models.UserAnswer{
		"q1": models.TextAnswer("an attempt"),
	})
	require.NoError(t, err)
	assert.True(t, summary.HasPendingAIGrades())

	summary, err = checker.CalculateScore(questions, nil)
	require.NoError(t, err)
	assert.False(t, summary.HasPendingAIGrades())
}
