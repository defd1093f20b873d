package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/quizforge/quiz-engine/internal/repositories"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportService exports grading results to Excel workbooks
type ReportService interface {
	// ExportScoreReport renders a per-question breakdown plus totals
	ExportScoreReport(ctx context.Context, quizID string, summary *models.ScoreSummary) ([]byte, error)
}

type reportService struct {
	quizRepo repositories.QuizRepository
	logger   *ServiceLogger
}

func NewReportService(quizRepo repositories.QuizRepository, logger *slog.Logger) ReportService {
	return &reportService{
		quizRepo: quizRepo,
		logger:   NewServiceLogger(logger, "report"),
	}
}

func (s *reportService) ExportScoreReport(ctx context.Context, quizID string, summary *models.ScoreSummary) ([]byte, error) {
	quiz, err := s.quizRepo.GetByIDWithDetails(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Score Report"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"#", "Question", "Type", "Chapter", "Correct", "Earned Points", "Max Points", "Status",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for i, question := range quiz.Questions {
		result, graded := summary.Results[question.ID]

		chapterName := ""
		if question.ChapterID != nil {
			if ch := quiz.ChapterByID(*question.ChapterID); ch != nil {
				chapterName = ch.Name
			}
		}

		row := []interface{}{
			i + 1,
			question.Text.Plain(),
			string(question.Type),
			chapterName,
		}
		if graded {
			row = append(row, result.IsCorrect, result.EarnedPoints, result.MaxPoints, resultStatus(result))
		} else {
			row = append(row, "", "", question.Points, "not graded")
		}

		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex)
			f.SetCellValue(sheetName, cell, value)
		}
		rowIndex++
	}

	// Totals block below the question rows
	rowIndex++
	totals := [][]interface{}{
		{"Correct", fmt.Sprintf("%d / %d", summary.CorrectCount, summary.TotalQuestions)},
		{"Points", fmt.Sprintf("%.2f / %.2f", summary.EarnedPoints, summary.TotalPoints)},
		{"Percentage", fmt.Sprintf("%d%%", summary.Percentage)},
	}
	for _, pair := range totals {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), pair[0])
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), pair[1])
		rowIndex++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func resultStatus(result models.CheckResult) string {
	switch {
	case result.FreeText != nil && result.FreeText.PendingAIGrade:
		return "pending AI grade"
	case result.FreeText != nil && result.FreeText.GradedByAI:
		return "graded by AI"
	case result.FileUpload != nil && result.FileUpload.PendingManualGrade:
		return "pending manual grade"
	case result.IsCorrect:
		return "correct"
	default:
		return "incorrect"
	}
}
