package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/quizforge/quiz-engine/internal/richtext"
	"github.com/quizforge/quiz-engine/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type quizFixture struct {
	service     QuizService
	quizRepo    *MockQuizRepository
	qRepo       *MockQuestionRepository
	chapterRepo *MockChapterRepository
}

func newQuizFixture(t *testing.T) *quizFixture {
	t.Helper()
	quizRepo := &MockQuizRepository{}
	qRepo := &MockQuestionRepository{}
	chapterRepo := &MockChapterRepository{}
	svc := NewQuizService(quizRepo, qRepo, chapterRepo, validator.New(), slog.Default())
	return &quizFixture{
		service:     svc,
		quizRepo:    quizRepo,
		qRepo:       qRepo,
		chapterRepo: chapterRepo,
	}
}

func TestCreateQuiz_MissingTitle(t *testing.T) {
	f := newQuizFixture(t)

	err := f.service.CreateQuiz(context.Background(), &models.Quiz{})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	f.quizRepo.AssertNotCalled(t, "Create")
}

func TestCreateQuiz_Valid(t *testing.T) {
	f := newQuizFixture(t)
	f.quizRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := f.service.CreateQuiz(context.Background(), &models.Quiz{Title: "Midterm review"})
	require.NoError(t, err)
	f.quizRepo.AssertExpectations(t)
}

func TestUpdateQuiz_ArchivedIsNotEditable(t *testing.T) {
	f := newQuizFixture(t)
	f.quizRepo.On("GetByID", mock.Anything, "quiz-1").
		Return(&models.Quiz{ID: "quiz-1", Title: "Old", Status: models.QuizArchived}, nil)

	err := f.service.UpdateQuiz(context.Background(), &models.Quiz{ID: "quiz-1", Title: "New"})
	assert.ErrorIs(t, err, ErrQuizNotEditable)
	f.quizRepo.AssertNotCalled(t, "Update")
}

func TestPublishQuiz_EmptyQuiz(t *testing.T) {
	f := newQuizFixture(t)
	f.quizRepo.On("GetByIDWithDetails", mock.Anything, "quiz-1").
		Return(&models.Quiz{ID: "quiz-1", Title: "Empty", Status: models.QuizDraft}, nil)

	err := f.service.PublishQuiz(context.Background(), "quiz-1")
	assert.ErrorIs(t, err, ErrQuizEmpty)
	f.quizRepo.AssertNotCalled(t, "UpdateStatus")
}

func TestPublishQuiz_InvalidQuestionStaysDraft(t *testing.T) {
	f := newQuizFixture(t)

	// multiple choice without a correct answer fails content validation
	broken := models.Question{
		ID:     "q1",
		QuizID: "quiz-1",
		Type:   models.MultipleChoice,
		Text:   richtext.Text("pick one"),
		Points: 10,
		Content: mustContent(t, models.MultipleChoiceContent{
			Choices: []models.Choice{
				{ID: "a", Text: richtext.Text("A")},
				{ID: "b", Text: richtext.Text("B")},
			},
		}),
	}
	f.quizRepo.On("GetByIDWithDetails", mock.Anything, "quiz-1").
		Return(&models.Quiz{
			ID:        "quiz-1",
			Title:     "Broken",
			Status:    models.QuizDraft,
			Questions: []models.Question{broken},
		}, nil)

	err := f.service.PublishQuiz(context.Background(), "quiz-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "q1")
	f.quizRepo.AssertNotCalled(t, "UpdateStatus")
}

func TestPublishQuiz_OrphanedChapterRef(t *testing.T) {
	f := newQuizFixture(t)

	ghost := "ch-ghost"
	f.quizRepo.On("GetByIDWithDetails", mock.Anything, "quiz-1").
		Return(&models.Quiz{
			ID:       "quiz-1",
			Title:    "Dangling",
			Status:   models.QuizDraft,
			Chapters: []models.Chapter{{ID: "ch-a", QuizID: "quiz-1", Name: "Basics"}},
			Questions: []models.Question{
				trueFalseQuestion(t, "q1", "quiz-1", &ghost, true),
			},
		}, nil)

	err := f.service.PublishQuiz(context.Background(), "quiz-1")
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var ve ValidationErrors
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve, 1)
	assert.Equal(t, "chapter_ref", ve[0].Rule)
	f.quizRepo.AssertNotCalled(t, "UpdateStatus")
}

func TestPublishQuiz_Valid(t *testing.T) {
	f := newQuizFixture(t)

	chA := "ch-a"
	f.quizRepo.On("GetByIDWithDetails", mock.Anything, "quiz-1").
		Return(&models.Quiz{
			ID:       "quiz-1",
			Title:    "Ready",
			Status:   models.QuizDraft,
			Chapters: []models.Chapter{{ID: chA, QuizID: "quiz-1", Name: "Basics"}},
			Questions: []models.Question{
				trueFalseQuestion(t, "q1", "quiz-1", &chA, true),
				trueFalseQuestion(t, "q2", "quiz-1", nil, false),
			},
		}, nil)
	f.quizRepo.On("UpdateStatus", mock.Anything, "quiz-1", models.QuizPublished).Return(nil)

	err := f.service.PublishQuiz(context.Background(), "quiz-1")
	require.NoError(t, err)
	f.quizRepo.AssertExpectations(t)
}

func TestAddQuestion_InvalidContent(t *testing.T) {
	f := newQuizFixture(t)

	question := models.Question{
		ID:      "q1",
		QuizID:  "quiz-1",
		Type:    models.FillBlank,
		Text:    richtext.Text("fill in"),
		Points:  10,
		Content: mustContent(t, models.FillBlankContent{Answers: nil}),
	}

	err := f.service.AddQuestion(context.Background(), &question)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuestionInvalidContent)
	f.qRepo.AssertNotCalled(t, "Create")
}

func TestAddQuestion_Valid(t *testing.T) {
	f := newQuizFixture(t)
	f.qRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	question := trueFalseQuestion(t, "q1", "quiz-1", nil, true)
	err := f.service.AddQuestion(context.Background(), &question)
	require.NoError(t, err)
	f.qRepo.AssertExpectations(t)
}

func TestAddChapter_MissingName(t *testing.T) {
	f := newQuizFixture(t)

	err := f.service.AddChapter(context.Background(), &models.Chapter{QuizID: "quiz-1"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	f.chapterRepo.AssertNotCalled(t, "Create")
}
