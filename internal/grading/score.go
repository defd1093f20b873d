package grading

import (
	"math"

	"github.com/quizforge/quiz-engine/internal/models"
)

// CalculateScore folds per-question results into quiz-level totals. A missing
// entry in answers counts as unanswered. The only error path is a question the
// checker cannot dispatch on.
func (c *Checker) CalculateScore(questions []models.Question, answers map[string]models.UserAnswer) (*models.ScoreSummary, error) {
	summary := &models.ScoreSummary{
		TotalQuestions: len(questions),
		Results:        make(map[string]models.CheckResult, len(questions)),
	}

	for i := range questions {
		q := &questions[i]
		result, err := c.CheckAnswer(q, answers[q.ID])
		if err != nil {
			return nil, err
		}

		summary.EarnedPoints += result.EarnedPoints
		summary.TotalPoints += result.MaxPoints
		if result.IsCorrect {
			summary.CorrectCount++
		}
		summary.Results[q.ID] = result
	}

	if summary.TotalPoints > 0 {
		summary.Percentage = int(math.Round(summary.EarnedPoints / summary.TotalPoints * 100))
	}
	return summary, nil
}
