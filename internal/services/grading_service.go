package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/quizforge/quiz-engine/internal/events"
	"github.com/quizforge/quiz-engine/internal/grading"
	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/quizforge/quiz-engine/internal/repositories"
	"github.com/quizforge/quiz-engine/pkg/ai"
	"gorm.io/gorm"
)

// GradingService grades answers against a quiz's questions
type GradingService interface {
	// GradeQuestion grades a single answer
	GradeQuestion(ctx context.Context, questionID string, answer models.UserAnswer) (models.CheckResult, error)

	// GradeQuiz grades a full answer set, resolving AI-gradable free text
	// answers when a provider is configured
	GradeQuiz(ctx context.Context, quizID, userID string, answers map[string]models.UserAnswer) (*models.ScoreSummary, error)

	// GradeQuestions grades an answer set against an explicit question list
	GradeQuestions(ctx context.Context, questions []models.Question, answers map[string]models.UserAnswer) (*models.ScoreSummary, error)
}

type gradingService struct {
	quizRepo     repositories.QuizRepository
	questionRepo repositories.QuestionRepository
	checker      *grading.Checker
	aiProvider   ai.Provider
	publisher    events.EventPublisher
	logger       *ServiceLogger
}

func NewGradingService(
	quizRepo repositories.QuizRepository,
	questionRepo repositories.QuestionRepository,
	checker *grading.Checker,
	aiProvider ai.Provider,
	publisher events.EventPublisher,
	logger *slog.Logger,
) GradingService {
	return &gradingService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		checker:      checker,
		aiProvider:   aiProvider,
		publisher:    publisher,
		logger:       NewServiceLogger(logger, "grading"),
	}
}

func (s *gradingService) GradeQuestion(ctx context.Context, questionID string, answer models.UserAnswer) (models.CheckResult, error) {
	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CheckResult{}, ErrQuestionNotFound
		}
		return models.CheckResult{}, fmt.Errorf("failed to load question: %w", err)
	}

	result, err := s.checker.CheckAnswer(question, answer)
	if err != nil {
		return models.CheckResult{}, err
	}

	if result.FreeText != nil && result.FreeText.PendingAIGrade && s.aiProvider != nil {
		result = s.checker.GradeWithAI(ctx, question, answer, s.aiProvider)
	}

	return result, nil
}

func (s *gradingService) GradeQuiz(ctx context.Context, quizID, userID string, answers map[string]models.UserAnswer) (*models.ScoreSummary, error) {
	op := s.logger.WithOperation(ctx, "grade_quiz", userID)

	quiz, err := s.quizRepo.GetByIDWithDetails(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrQuizNotFound
		}
		op.LogResult(quizID, "quiz", err)
		return nil, err
	}

	summary, err := s.gradeWithAIResolution(ctx, quiz.Questions, answers)
	if err != nil {
		op.LogResult(quizID, "quiz", err)
		return nil, err
	}

	s.publishGraded(ctx, "", quizID, userID, summary)
	op.LogResult(quizID, "quiz", nil)
	return summary, nil
}

func (s *gradingService) GradeQuestions(ctx context.Context, questions []models.Question, answers map[string]models.UserAnswer) (*models.ScoreSummary, error) {
	return s.gradeWithAIResolution(ctx, questions, answers)
}

// gradeWithAIResolution runs the checker over all questions, then resolves
// results left pending for AI grading and folds them back into the totals.
func (s *gradingService) gradeWithAIResolution(ctx context.Context, questions []models.Question, answers map[string]models.UserAnswer) (*models.ScoreSummary, error) {
	summary, err := s.checker.CalculateScore(questions, answers)
	if err != nil {
		return nil, err
	}

	if s.aiProvider == nil || !summary.HasPendingAIGrades() {
		return summary, nil
	}

	for i := range questions {
		q := &questions[i]
		result, ok := summary.Results[q.ID]
		if !ok || result.FreeText == nil || !result.FreeText.PendingAIGrade {
			continue
		}
		resolved := s.checker.GradeWithAI(ctx, q, answers[q.ID], s.aiProvider)
		summary.Results[q.ID] = resolved

		if s.publisher != nil && resolved.FreeText != nil && resolved.FreeText.GradedByAI {
			event := events.NewAIGradingCompletedEvent("", q.ID, resolved.EarnedPoints, resolved.IsCorrect)
			if err := s.publisher.PublishEvent(ctx, event); err != nil {
				s.logger.logger.Warn("failed to publish ai grading event", "question_id", q.ID, "error", err)
			}
		}
	}

	recomputeTotals(summary)
	return summary, nil
}

// recomputeTotals rebuilds the aggregate fields from per-question results
func recomputeTotals(summary *models.ScoreSummary) {
	var earned, total float64
	correct := 0
	for _, result := range summary.Results {
		earned += result.EarnedPoints
		total += result.MaxPoints
		if result.IsCorrect {
			correct++
		}
	}
	summary.EarnedPoints = earned
	summary.TotalPoints = total
	summary.CorrectCount = correct
	if total > 0 {
		summary.Percentage = int(math.Round(earned / total * 100))
	} else {
		summary.Percentage = 0
	}
}

func (s *gradingService) publishGraded(ctx context.Context, sessionID, quizID, userID string, summary *models.ScoreSummary) {
	if s.publisher == nil {
		return
	}

	event := events.NewQuizGradedEvent(
		sessionID, quizID, userID,
		summary.CorrectCount, summary.TotalQuestions,
		summary.EarnedPoints, summary.TotalPoints,
		summary.Percentage, summary.HasPendingAIGrades(),
	)
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.logger.Warn("failed to publish graded event", "quiz_id", quizID, "error", err)
	}

	var manualIDs []string
	for id, result := range summary.Results {
		if result.FileUpload != nil && result.FileUpload.PendingManualGrade {
			manualIDs = append(manualIDs, id)
		}
	}
	if len(manualIDs) > 0 {
		event := events.NewManualGradingRequiredEvent(sessionID, quizID, manualIDs)
		if err := s.publisher.PublishEvent(ctx, event); err != nil {
			s.logger.logger.Warn("failed to publish manual grading event", "quiz_id", quizID, "error", err)
		}
	}
}
