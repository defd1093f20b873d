package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/quizforge/quiz-engine/internal/services"
	"github.com/quizforge/quiz-engine/internal/utils"
	"github.com/quizforge/quiz-engine/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type GradingHandler struct {
	BaseHandler
	gradingService services.GradingService
	reportService  services.ReportService
	validator      *validator.Validator
}

type CheckAnswerRequest struct {
	QuestionID string            `json:"question_id" validate:"required,uuid"`
	Answer     models.UserAnswer `json:"answer"`
}

type GradeQuizRequest struct {
	UserID  string                       `json:"user_id" validate:"required"`
	Answers map[string]models.UserAnswer `json:"answers" validate:"required"`
}

func NewGradingHandler(
	gradingService services.GradingService,
	reportService services.ReportService,
	v *validator.Validator,
	logger utils.Logger,
) *GradingHandler {
	return &GradingHandler{
		BaseHandler:    NewBaseHandler(logger),
		gradingService: gradingService,
		reportService:  reportService,
		validator:      v,
	}
}

// CheckAnswer grades a single answer against its question
func (h *GradingHandler) CheckAnswer(c *gin.Context) {
	var req CheckAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validator.ToValidationErrors(err),
		})
		return
	}

	result, err := h.gradingService.GradeQuestion(c.Request.Context(), req.QuestionID, req.Answer)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GradeQuiz grades a full answer set for a quiz
func (h *GradingHandler) GradeQuiz(c *gin.Context) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return
	}

	var req GradeQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validator.ToValidationErrors(err),
		})
		return
	}

	h.LogRequest(c, "Grading quiz", "quiz_id", quizID, "user_id", req.UserID, "answers", len(req.Answers))

	summary, err := h.gradingService.GradeQuiz(c.Request.Context(), quizID, req.UserID, req.Answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ExportReport grades a quiz and streams the breakdown as an Excel workbook
func (h *GradingHandler) ExportReport(c *gin.Context) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return
	}

	var req GradeQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validator.ToValidationErrors(err),
		})
		return
	}

	summary, err := h.gradingService.GradeQuiz(c.Request.Context(), quizID, req.UserID, req.Answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	data, err := h.reportService.ExportScoreReport(c.Request.Context(), quizID, summary)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("score-report-%s-%s.xlsx", quizID, time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
