package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quiz-engine/internal/cache"
	"github.com/quizforge/quiz-engine/internal/config"
	"github.com/quizforge/quiz-engine/internal/grading"
	"github.com/quizforge/quiz-engine/internal/handlers"
	"github.com/quizforge/quiz-engine/internal/repositories/postgres"
	"github.com/quizforge/quiz-engine/internal/services"
	"github.com/quizforge/quiz-engine/internal/utils"
	"github.com/quizforge/quiz-engine/internal/validator"
	"github.com/quizforge/quiz-engine/pkg"
	"github.com/quizforge/quiz-engine/pkg/ai"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var logger utils.Logger
	if cfg.IsDevelopment() {
		logger = utils.NewDevelopmentLogger()
	} else {
		logger = utils.NewDefaultLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := pkg.Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		log.Fatalf("failed to create event publisher: %v", err)
	}
	defer publisher.Close()

	var aiProvider ai.Provider
	if cfg.OpenAIAPIKey != "" {
		provider, err := ai.NewOpenAIProvider(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: slogLogger,
		})
		if err != nil {
			log.Fatalf("failed to create AI provider: %v", err)
		}
		aiProvider = provider
	} else {
		slogLogger.Warn("OPENAI_API_KEY not set, free text answers stay pending for manual grading")
	}

	quizRepo := postgres.NewQuizPostgreSQL(db)
	questionRepo := postgres.NewQuestionPostgreSQL(db)
	chapterRepo := postgres.NewChapterPostgreSQL(db)

	cacheService := cache.NewRedisCache(redisClient, slogLogger)
	v := validator.New()
	checker := grading.NewChecker()

	quizService := services.NewQuizService(quizRepo, questionRepo, chapterRepo, v, slogLogger)
	gradingService := services.NewGradingService(quizRepo, questionRepo, checker, aiProvider, publisher, slogLogger)
	sessionService := services.NewSessionService(quizRepo, questionRepo, gradingService, cacheService, publisher, slogLogger, cfg.SessionTTL)
	reportService := services.NewReportService(quizRepo, slogLogger)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(
		quizService,
		sessionService,
		gradingService,
		reportService,
		v,
		logger,
	)
	handlerManager.SetupRoutes(router)

	slogLogger.Info("starting quiz engine", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
