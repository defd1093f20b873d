package grading

import (
	"context"
	"errors"
	"testing"

	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/quizforge/quiz-engine/internal/richtext"
	"github.com/quizforge/quiz-engine/pkg/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	verdict ai.Verdict
	err     error
	input   ai.GradingInput
}

func (s *stubProvider) GradeAnswer(_ context.Context, input ai.GradingInput) (ai.Verdict, error) {
	s.input = input
	return s.verdict, s.err
}

func aiQuestion(t *testing.T) models.Question {
	t.Helper()
	return models.Question{
		ID:     "q1",
		Type:   models.FreeText,
		Points: 10,
		Text:   richtext.Text("Explain photosynthesis"),
		Content: mustContent(t, models.FreeTextContent{
			ReferenceAnswer:  richtext.Text("Plants convert light into chemical energy"),
			AIGradingEnabled: true,
		}),
	}
}

func TestGradeWithAI_Success(t *testing.T) {
	checker := NewChecker()
	q := aiQuestion(t)
	provider := &stubProvider{verdict: ai.Verdict{Score: 0.875, Correct: true}}

	res := checker.GradeWithAI(context.Background(), &q, models.TextAnswer("light becomes sugar"), provider)

	assert.True(t, res.IsCorrect)
	assert.Equal(t, 8.75, res.EarnedPoints)
	assert.Equal(t, 10.0, res.MaxPoints)
	require.NotNil(t, res.FreeText)
	assert.True(t, res.FreeText.GradedByAI)
	assert.Empty(t, res.FreeText.AIError)

	// the provider sees plain text, not rich content
	assert.Equal(t, "Explain photosynthesis", provider.input.QuestionText)
	assert.Equal(t, "Plants convert light into chemical energy", provider.input.ReferenceAnswer)
	assert.Equal(t, "light becomes sugar", provider.input.Submission)
}

func TestGradeWithAI_ScoreClamping(t *testing.T) {
	checker := NewChecker()
	q := aiQuestion(t)

	res := checker.GradeWithAI(context.Background(), &q, models.TextAnswer("x"), &stubProvider{
		verdict: ai.Verdict{Score: 1.7, Correct: true},
	})
	assert.Equal(t, 10.0, res.EarnedPoints)

	res = checker.GradeWithAI(context.Background(), &q, models.TextAnswer("x"), &stubProvider{
		verdict: ai.Verdict{Score: -0.3},
	})
	assert.Zero(t, res.EarnedPoints)
}

func TestGradeWithAI_ProviderFailure(t *testing.T) {
	checker := NewChecker()
	q := aiQuestion(t)

	res := checker.GradeWithAI(context.Background(), &q, models.TextAnswer("x"), &stubProvider{
		err: errors.New("rate limited"),
	})

	assert.False(t, res.IsCorrect)
	assert.Zero(t, res.EarnedPoints)
	require.NotNil(t, res.FreeText)
	assert.False(t, res.FreeText.GradedByAI)
	assert.Contains(t, res.FreeText.AIError, "rate limited")
}

func TestGradeWithAI_NoProvider(t *testing.T) {
	checker := NewChecker()
	q := aiQuestion(t)

	res := checker.GradeWithAI(context.Background(), &q, models.TextAnswer("x"), nil)
	assert.Zero(t, res.EarnedPoints)
	assert.NotEmpty(t, res.FreeText.AIError)
}
