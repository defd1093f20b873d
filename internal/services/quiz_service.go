package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/quizforge/quiz-engine/internal/repositories"
	"github.com/quizforge/quiz-engine/internal/validator"
	"gorm.io/gorm"
)

// QuizService covers quiz authoring: quizzes, chapters and questions
type QuizService interface {
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)
	GetQuizWithDetails(ctx context.Context, id string) (*models.Quiz, error)
	ListQuizzes(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error)
	UpdateQuiz(ctx context.Context, quiz *models.Quiz) error
	DeleteQuiz(ctx context.Context, id string) error

	// PublishQuiz validates the quiz and transitions it to published
	PublishQuiz(ctx context.Context, id string) error
	ArchiveQuiz(ctx context.Context, id string) error

	AddQuestion(ctx context.Context, question *models.Question) error
	AddQuestionsBatch(ctx context.Context, questions []*models.Question) error
	UpdateQuestion(ctx context.Context, question *models.Question) error
	DeleteQuestion(ctx context.Context, id string) error
	ReorderQuestions(ctx context.Context, quizID string, orderedIDs []string) error

	AddChapter(ctx context.Context, chapter *models.Chapter) error
	DeleteChapter(ctx context.Context, id string) error
}

type quizService struct {
	quizRepo     repositories.QuizRepository
	questionRepo repositories.QuestionRepository
	chapterRepo  repositories.ChapterRepository
	validator    *validator.Validator
	logger       *ServiceLogger
}

func NewQuizService(
	quizRepo repositories.QuizRepository,
	questionRepo repositories.QuestionRepository,
	chapterRepo repositories.ChapterRepository,
	v *validator.Validator,
	logger *slog.Logger,
) QuizService {
	return &quizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		chapterRepo:  chapterRepo,
		validator:    v,
		logger:       NewServiceLogger(logger, "quiz"),
	}
}

func (s *quizService) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	op := s.logger.WithOperation(ctx, "create_quiz", quiz.CreatedBy)

	if err := s.validator.ValidateStruct(quiz); err != nil {
		ve := validator.ToValidationErrors(err)
		if len(ve) > 0 {
			op.LogResult(quiz.ID, "quiz", ve)
			return ve
		}
		op.LogResult(quiz.ID, "quiz", err)
		return err
	}

	err := s.quizRepo.Create(ctx, quiz)
	op.LogResult(quiz.ID, "quiz", err)
	return err
}

func (s *quizService) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuizNotFound
	}
	return quiz, err
}

func (s *quizService) GetQuizWithDetails(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, err := s.quizRepo.GetByIDWithDetails(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuizNotFound
	}
	return quiz, err
}

func (s *quizService) ListQuizzes(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	return s.quizRepo.List(ctx, filters)
}

func (s *quizService) UpdateQuiz(ctx context.Context, quiz *models.Quiz) error {
	op := s.logger.WithOperation(ctx, "update_quiz", quiz.CreatedBy)

	current, err := s.GetQuiz(ctx, quiz.ID)
	if err != nil {
		op.LogResult(quiz.ID, "quiz", err)
		return err
	}
	if current.Status == models.QuizArchived {
		op.LogResult(quiz.ID, "quiz", ErrQuizNotEditable)
		return ErrQuizNotEditable
	}

	err = s.quizRepo.Update(ctx, quiz)
	op.LogResult(quiz.ID, "quiz", err)
	return err
}

func (s *quizService) DeleteQuiz(ctx context.Context, id string) error {
	err := s.quizRepo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrQuizNotFound
	}
	return err
}

// PublishQuiz runs full authoring validation before the transition. A quiz
// with broken questions or orphaned chapter references stays in draft.
func (s *quizService) PublishQuiz(ctx context.Context, id string) error {
	op := s.logger.WithOperation(ctx, "publish_quiz", "")

	quiz, err := s.GetQuizWithDetails(ctx, id)
	if err != nil {
		op.LogResult(id, "quiz", err)
		return err
	}
	if len(quiz.Questions) == 0 {
		op.LogResult(id, "quiz", ErrQuizEmpty)
		return ErrQuizEmpty
	}

	for i := range quiz.Questions {
		if err := s.validator.Question().ValidateQuestion(&quiz.Questions[i]); err != nil {
			err = fmt.Errorf("question %s: %w", quiz.Questions[i].ID, err)
			op.LogResult(id, "quiz", err)
			return err
		}
	}

	if refErrs := s.validator.Question().ValidateChapterRefs(quiz); len(refErrs) > 0 {
		op.LogResult(id, "quiz", refErrs)
		return refErrs
	}

	err = s.quizRepo.UpdateStatus(ctx, id, models.QuizPublished)
	op.LogResult(id, "quiz", err)
	return err
}

func (s *quizService) ArchiveQuiz(ctx context.Context, id string) error {
	err := s.quizRepo.UpdateStatus(ctx, id, models.QuizArchived)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrQuizNotFound
	}
	return err
}

func (s *quizService) AddQuestion(ctx context.Context, question *models.Question) error {
	op := s.logger.WithOperation(ctx, "add_question", "")

	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		op.LogResult(question.ID, "question", err)
		return fmt.Errorf("%w: %v", ErrQuestionInvalidContent, err)
	}

	err := s.questionRepo.Create(ctx, question)
	op.LogResult(question.ID, "question", err)
	return err
}

func (s *quizService) AddQuestionsBatch(ctx context.Context, questions []*models.Question) error {
	op := s.logger.WithOperation(ctx, "add_questions_batch", "")

	if err := s.validator.Question().ValidateBatch(questions); err != nil {
		op.LogResult("", "question", err)
		return fmt.Errorf("%w: %v", ErrQuestionInvalidContent, err)
	}

	err := s.questionRepo.CreateBatch(ctx, questions)
	op.LogResult("", "question", err)
	return err
}

func (s *quizService) UpdateQuestion(ctx context.Context, question *models.Question) error {
	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return fmt.Errorf("%w: %v", ErrQuestionInvalidContent, err)
	}
	return s.questionRepo.Update(ctx, question)
}

func (s *quizService) DeleteQuestion(ctx context.Context, id string) error {
	err := s.questionRepo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrQuestionNotFound
	}
	return err
}

func (s *quizService) ReorderQuestions(ctx context.Context, quizID string, orderedIDs []string) error {
	return s.questionRepo.Reorder(ctx, quizID, orderedIDs)
}

func (s *quizService) AddChapter(ctx context.Context, chapter *models.Chapter) error {
	if chapter.Name == "" {
		return ValidationErrors{*NewValidationError("name", "is required", chapter.Name)}
	}
	return s.chapterRepo.Create(ctx, chapter)
}

func (s *quizService) DeleteChapter(ctx context.Context, id string) error {
	err := s.chapterRepo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
