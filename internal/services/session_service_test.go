package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/quizforge/quiz-engine/internal/events"
	"github.com/quizforge/quiz-engine/internal/grading"
	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/quizforge/quiz-engine/internal/richtext"
	"github.com/quizforge/quiz-engine/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func mustContent(t *testing.T, v interface{}) datatypes.JSON {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return datatypes.JSON(data)
}

func trueFalseQuestion(t *testing.T, id, quizID string, chapterID *string, correct bool) models.Question {
	return models.Question{
		ID:        id,
		QuizID:    quizID,
		Type:      models.TrueFalse,
		Text:      richtext.Text("statement " + id),
		Points:    10,
		ChapterID: chapterID,
		Content:   mustContent(t, models.TrueFalseContent{Correct: correct}),
	}
}

type sessionFixture struct {
	service   SessionService
	quizRepo  *MockQuizRepository
	qRepo     *MockQuestionRepository
	publisher *events.MockEventPublisher
	cache     *memoryCache
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	logger := slog.Default()
	quizRepo := &MockQuizRepository{}
	qRepo := &MockQuestionRepository{}
	publisher := events.NewMockEventPublisher(logger)
	mem := newMemoryCache()

	gradingSvc := NewGradingService(quizRepo, qRepo, grading.NewChecker(), nil, nil, logger)
	svc := NewSessionService(quizRepo, qRepo, gradingSvc, mem, publisher, logger, time.Hour)

	return &sessionFixture{
		service:   svc,
		quizRepo:  quizRepo,
		qRepo:     qRepo,
		publisher: publisher,
		cache:     mem,
	}
}

func chapteredQuiz(t *testing.T) *models.Quiz {
	chA := "ch-a"
	chB := "ch-b"
	return &models.Quiz{
		ID:      "quiz-1",
		Title:   "Networking basics",
		Status:  models.QuizPublished,
		Version: 2,
		Chapters: []models.Chapter{
			{ID: chA, QuizID: "quiz-1", Name: "Basics", Position: 0},
			{ID: chB, QuizID: "quiz-1", Name: "Advanced", Position: 1},
		},
		Questions: []models.Question{
			trueFalseQuestion(t, "q1", "quiz-1", &chA, true),
			trueFalseQuestion(t, "q2", "quiz-1", &chA, false),
			trueFalseQuestion(t, "q3", "quiz-1", &chB, true),
			trueFalseQuestion(t, "q4", "quiz-1", nil, true),
		},
	}
}

func TestStartSession_ChapterBatches(t *testing.T) {
	f := newSessionFixture(t)
	quiz := chapteredQuiz(t)
	f.quizRepo.On("GetByIDWithDetails", mock.Anything, "quiz-1").Return(quiz, nil)

	sess, err := f.service.StartSession(context.Background(), StartSessionRequest{
		QuizID:    "quiz-1",
		UserID:    "user-1",
		BatchSize: session.BatchPerChapter,
	})
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	// Basics, Advanced, then the question without a chapter
	require.Len(t, sess.Batches, 3)
	assert.Equal(t, "Basics", sess.Batches[0].ChapterName)
	assert.Equal(t, []string{"q1", "q2"}, sess.Batches[0].QuestionIDs)
	assert.Equal(t, "Advanced", sess.Batches[1].ChapterName)
	assert.Equal(t, session.UncategorizedLabel, sess.Batches[2].ChapterName)
	assert.Equal(t, []string{"q4"}, sess.Batches[2].QuestionIDs)

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventSessionStarted, published[0].Type)

	// Session round-trips through the cache
	loaded, err := f.service.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Batches, loaded.Batches)
	assert.False(t, loaded.Completed)
}

func TestStartSession_SeededShuffleIsDeterministic(t *testing.T) {
	quiz := chapteredQuiz(t)
	seed := int64(42)

	var first []SessionBatch
	for i := 0; i < 2; i++ {
		f := newSessionFixture(t)
		f.quizRepo.On("GetByIDWithDetails", mock.Anything, "quiz-1").Return(quiz, nil)

		sess, err := f.service.StartSession(context.Background(), StartSessionRequest{
			QuizID:      "quiz-1",
			UserID:      "user-1",
			ShuffleMode: session.ShuffleFull,
			BatchSize:   session.BatchAll,
			Seed:        &seed,
		})
		require.NoError(t, err)
		if first == nil {
			first = sess.Batches
		} else {
			assert.Equal(t, first, sess.Batches)
		}
	}
}

func TestStartSession_RejectsUnpublishedQuiz(t *testing.T) {
	f := newSessionFixture(t)
	quiz := chapteredQuiz(t)
	quiz.Status = models.QuizDraft
	f.quizRepo.On("GetByIDWithDetails", mock.Anything, "quiz-1").Return(quiz, nil)

	_, err := f.service.StartSession(context.Background(), StartSessionRequest{
		QuizID: "quiz-1",
		UserID: "user-1",
	})
	assert.ErrorIs(t, err, ErrQuizNotPublished)
}

func TestStartSession_RejectsEmptyQuiz(t *testing.T) {
	f := newSessionFixture(t)
	quiz := chapteredQuiz(t)
	quiz.Questions = nil
	f.quizRepo.On("GetByIDWithDetails", mock.Anything, "quiz-1").Return(quiz, nil)

	_, err := f.service.StartSession(context.Background(), StartSessionRequest{
		QuizID: "quiz-1",
		UserID: "user-1",
	})
	assert.ErrorIs(t, err, ErrQuizEmpty)
}

func TestGetSession_Missing(t *testing.T) {
	f := newSessionFixture(t)
	_, err := f.service.GetSession(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func startedSession(t *testing.T, f *sessionFixture, quiz *models.Quiz, batchSize session.BatchSize) *ReviewSession {
	t.Helper()
	f.quizRepo.On("GetByIDWithDetails", mock.Anything, quiz.ID).Return(quiz, nil)

	sess, err := f.service.StartSession(context.Background(), StartSessionRequest{
		QuizID:    quiz.ID,
		UserID:    "user-1",
		BatchSize: batchSize,
	})
	require.NoError(t, err)
	f.publisher.ClearEvents()
	return sess
}

func questionPointers(quiz *models.Quiz, ids []string) []*models.Question {
	byID := make(map[string]*models.Question)
	for i := range quiz.Questions {
		byID[quiz.Questions[i].ID] = &quiz.Questions[i]
	}
	out := make([]*models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out
}

func TestGetBatch(t *testing.T) {
	f := newSessionFixture(t)
	quiz := chapteredQuiz(t)
	sess := startedSession(t, f, quiz, session.BatchPerChapter)

	f.qRepo.On("GetByIDs", mock.Anything, []string{"q1", "q2"}).
		Return(questionPointers(quiz, []string{"q1", "q2"}), nil)

	batch, err := f.service.GetBatch(context.Background(), sess.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Basics", batch.ChapterName)
	require.Len(t, batch.Questions, 2)
	assert.Equal(t, "q1", batch.Questions[0].ID)

	_, err = f.service.GetBatch(context.Background(), sess.ID, 5)
	assert.ErrorIs(t, err, ErrBatchIndexOutOfRange)
}

func TestSubmitBatch(t *testing.T) {
	f := newSessionFixture(t)
	quiz := chapteredQuiz(t)
	sess := startedSession(t, f, quiz, session.BatchPerChapter)

	f.qRepo.On("GetByIDs", mock.Anything, []string{"q1", "q2"}).
		Return(questionPointers(quiz, []string{"q1", "q2"}), nil)

	answers := map[string]models.UserAnswer{
		"q1": models.TextAnswer("true"),  // correct
		"q2": models.TextAnswer("true"),  // wrong, expected false
		"q3": models.TextAnswer("false"), // not in this batch, must be ignored
	}
	summary, err := f.service.SubmitBatch(context.Background(), sess.ID, 0, answers)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CorrectCount)
	assert.Equal(t, 2, summary.TotalQuestions)
	assert.InDelta(t, 10.0, summary.EarnedPoints, 1e-9)

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventBatchGraded, published[0].Type)

	// Answers from other batches are not recorded
	loaded, err := f.service.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Submitted[0])
	assert.Contains(t, loaded.Answers, "q1")
	assert.NotContains(t, loaded.Answers, "q3")

	// Double submission is rejected
	_, err = f.service.SubmitBatch(context.Background(), sess.ID, 0, answers)
	assert.ErrorIs(t, err, ErrBatchAlreadySubmitted)
}

func TestCompleteSession(t *testing.T) {
	f := newSessionFixture(t)
	quiz := chapteredQuiz(t)
	sess := startedSession(t, f, quiz, session.BatchPerChapter)

	f.qRepo.On("GetByIDs", mock.Anything, []string{"q1", "q2"}).
		Return(questionPointers(quiz, []string{"q1", "q2"}), nil)
	f.qRepo.On("GetByIDs", mock.Anything, []string{"q1", "q2", "q3", "q4"}).
		Return(questionPointers(quiz, []string{"q1", "q2", "q3", "q4"}), nil)

	_, err := f.service.SubmitBatch(context.Background(), sess.ID, 0, map[string]models.UserAnswer{
		"q1": models.TextAnswer("true"),
		"q2": models.TextAnswer("false"),
	})
	require.NoError(t, err)
	f.publisher.ClearEvents()

	summary, err := f.service.CompleteSession(context.Background(), sess.ID)
	require.NoError(t, err)

	// q1 and q2 answered correctly, q3 and q4 unanswered
	assert.Equal(t, 2, summary.CorrectCount)
	assert.Equal(t, 4, summary.TotalQuestions)
	assert.Equal(t, 50, summary.Percentage)

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventSessionCompleted, published[0].Type)

	// Completed sessions reject further submissions
	_, err = f.service.SubmitBatch(context.Background(), sess.ID, 1, nil)
	assert.ErrorIs(t, err, ErrSessionCompleted)
	_, err = f.service.CompleteSession(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrSessionCompleted)
}
