package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/quizforge/quiz-engine/internal/grading"
	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func TestExportScoreReport(t *testing.T) {
	quizRepo := &MockQuizRepository{}
	svc := NewReportService(quizRepo, slog.Default())

	chA := "ch-a"
	quiz := &models.Quiz{
		ID:       "quiz-1",
		Title:    "Midterm",
		Status:   models.QuizPublished,
		Chapters: []models.Chapter{{ID: chA, QuizID: "quiz-1", Name: "Basics"}},
		Questions: []models.Question{
			trueFalseQuestion(t, "q1", "quiz-1", &chA, true),
			trueFalseQuestion(t, "q2", "quiz-1", nil, false),
		},
	}
	quizRepo.On("GetByIDWithDetails", mock.Anything, "quiz-1").Return(quiz, nil)

	summary, err := grading.NewChecker().CalculateScore(quiz.Questions, map[string]models.UserAnswer{
		"q1": models.TextAnswer("true"),
		"q2": models.TextAnswer("true"),
	})
	require.NoError(t, err)

	data, err := svc.ExportScoreReport(context.Background(), "quiz-1", summary)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Score Report", "A1")
	require.NoError(t, err)
	assert.Equal(t, "#", header)

	chapter, err := f.GetCellValue("Score Report", "D2")
	require.NoError(t, err)
	assert.Equal(t, "Basics", chapter)

	status, err := f.GetCellValue("Score Report", "H2")
	require.NoError(t, err)
	assert.Equal(t, "correct", status)

	status, err = f.GetCellValue("Score Report", "H3")
	require.NoError(t, err)
	assert.Equal(t, "incorrect", status)

	// Totals block sits one blank row below the two question rows
	correct, err := f.GetCellValue("Score Report", "B5")
	require.NoError(t, err)
	assert.Equal(t, "1 / 2", correct)

	percentage, err := f.GetCellValue("Score Report", "B7")
	require.NoError(t, err)
	assert.Equal(t, "50%", percentage)
}

func TestExportScoreReport_QuizNotFound(t *testing.T) {
	quizRepo := &MockQuizRepository{}
	svc := NewReportService(quizRepo, slog.Default())
	quizRepo.On("GetByIDWithDetails", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.ExportScoreReport(context.Background(), "missing", &models.ScoreSummary{})
	assert.ErrorIs(t, err, ErrQuizNotFound)
}
