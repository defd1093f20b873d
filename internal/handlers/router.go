package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/quizforge/quiz-engine/internal/services"
	"github.com/quizforge/quiz-engine/internal/utils"
	"github.com/quizforge/quiz-engine/internal/validator"
)

type HandlerManager struct {
	quizHandler    *QuizHandler
	sessionHandler *SessionHandler
	gradingHandler *GradingHandler
}

func NewHandlerManager(
	quizService services.QuizService,
	sessionService services.SessionService,
	gradingService services.GradingService,
	reportService services.ReportService,
	v *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:    NewQuizHandler(quizService, v, logger),
		sessionHandler: NewSessionHandler(sessionService, v, logger),
		gradingHandler: NewGradingHandler(gradingService, reportService, v, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "quiz-engine",
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Quiz authoring routes
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.GET("/:id/details", hm.quizHandler.GetQuizWithDetails)
			quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)
			quizzes.POST("/:id/publish", hm.quizHandler.PublishQuiz)
			quizzes.POST("/:id/archive", hm.quizHandler.ArchiveQuiz)

			// Question management
			quizzes.POST("/:id/questions", hm.quizHandler.AddQuestion)
			quizzes.POST("/:id/questions/batch", hm.quizHandler.AddQuestionsBatch)
			quizzes.PUT("/:id/questions/reorder", hm.quizHandler.ReorderQuestions)

			// Chapter management
			quizzes.POST("/:id/chapters", hm.quizHandler.AddChapter)

			// Grading
			quizzes.POST("/:id/grade", hm.gradingHandler.GradeQuiz)
			quizzes.POST("/:id/report", hm.gradingHandler.ExportReport)
		}

		questions := v1.Group("/questions")
		{
			questions.PUT("/:question_id", hm.quizHandler.UpdateQuestion)
			questions.DELETE("/:question_id", hm.quizHandler.DeleteQuestion)
		}

		chapters := v1.Group("/chapters")
		{
			chapters.DELETE("/:chapter_id", hm.quizHandler.DeleteChapter)
		}

		// Review session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.GET("/:id/batches/:index", hm.sessionHandler.GetBatch)
			sessions.POST("/:id/batches/:index/submit", hm.sessionHandler.SubmitBatch)
			sessions.POST("/:id/complete", hm.sessionHandler.CompleteSession)
		}

		// Grading utilities
		grading := v1.Group("/grading")
		{
			grading.POST("/check", hm.gradingHandler.CheckAnswer)
		}
	}
}
