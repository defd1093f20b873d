package grading

import (
	"context"

	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/quizforge/quiz-engine/pkg/ai"
)

// GradeWithAI resolves a free-text result the checker flagged PendingAIGrade.
// It never fails: any provider error comes back as a zero-point result whose
// FreeText detail carries the message, so callers can always fall back to
// "ungraded" without special-casing the bridge.
func (c *Checker) GradeWithAI(ctx context.Context, q *models.Question, ans models.UserAnswer, provider ai.Provider) models.CheckResult {
	res := models.CheckResult{MaxPoints: q.Points, FreeText: &models.FreeTextResult{}}

	var content models.FreeTextContent
	if err := q.DecodeContent(&content); err != nil {
		res.FreeText.AIError = err.Error()
		return res
	}
	if provider == nil {
		res.FreeText.AIError = "no AI grading provider configured"
		return res
	}

	text, _ := ans.AsText()
	verdict, err := provider.GradeAnswer(ctx, ai.GradingInput{
		QuestionText:    c.extract(q.Text),
		ReferenceAnswer: c.extract(content.ReferenceAnswer),
		Submission:      text,
	})
	if err != nil {
		res.FreeText.AIError = err.Error()
		return res
	}

	score := verdict.Score
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	res.EarnedPoints = round2(score * q.Points)
	res.IsCorrect = verdict.Correct
	res.FreeText.GradedByAI = true
	return res
}
