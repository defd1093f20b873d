package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/quizforge/quiz-engine/internal/cache"
	"github.com/quizforge/quiz-engine/internal/events"
	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/quizforge/quiz-engine/internal/repositories"
	"github.com/quizforge/quiz-engine/internal/session"
	"gorm.io/gorm"
)

// ReviewSession is the cached state of one user's pass through a quiz
type ReviewSession struct {
	ID          string                       `json:"id"`
	QuizID      string                       `json:"quiz_id"`
	UserID      string                       `json:"user_id"`
	QuizVersion int                          `json:"quiz_version"`
	ShuffleMode session.ShuffleMode          `json:"shuffle_mode"`
	BatchSize   session.BatchSize            `json:"batch_size"`
	Batches     []SessionBatch               `json:"batches"`
	Answers     map[string]models.UserAnswer `json:"answers"`
	Submitted   []bool                       `json:"submitted"`
	Completed   bool                         `json:"completed"`
	CreatedAt   time.Time                    `json:"created_at"`
}

// SessionBatch holds the question order of one batch
type SessionBatch struct {
	QuestionIDs []string `json:"question_ids"`
	ChapterName string   `json:"chapter_name,omitempty"`
}

// StartSessionRequest are the sequencing options for a new session
type StartSessionRequest struct {
	QuizID      string              `json:"quiz_id" validate:"required,uuid"`
	UserID      string              `json:"user_id" validate:"required"`
	ShuffleMode session.ShuffleMode `json:"shuffle_mode" validate:"omitempty,shuffle_mode"`
	BatchSize   session.BatchSize   `json:"batch_size"`
	Seed        *int64              `json:"seed,omitempty"`
}

// SessionService sequences quizzes into shuffled, batched review sessions
type SessionService interface {
	StartSession(ctx context.Context, req StartSessionRequest) (*ReviewSession, error)
	GetSession(ctx context.Context, sessionID string) (*ReviewSession, error)
	// GetBatch returns the resolved questions of one batch in session order
	GetBatch(ctx context.Context, sessionID string, index int) (*models.BatchInfo, error)
	// SubmitBatch grades one batch and records its answers in the session
	SubmitBatch(ctx context.Context, sessionID string, index int, answers map[string]models.UserAnswer) (*models.ScoreSummary, error)
	// CompleteSession grades everything answered so far and closes the session
	CompleteSession(ctx context.Context, sessionID string) (*models.ScoreSummary, error)
}

type sessionService struct {
	quizRepo     repositories.QuizRepository
	questionRepo repositories.QuestionRepository
	grading      GradingService
	cache        cache.CacheService
	publisher    events.EventPublisher
	logger       *ServiceLogger
	ttl          time.Duration
}

func NewSessionService(
	quizRepo repositories.QuizRepository,
	questionRepo repositories.QuestionRepository,
	gradingService GradingService,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	ttl time.Duration,
) SessionService {
	return &sessionService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		grading:      gradingService,
		cache:        cacheService,
		publisher:    publisher,
		logger:       NewServiceLogger(logger, "session"),
		ttl:          ttl,
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *sessionService) StartSession(ctx context.Context, req StartSessionRequest) (*ReviewSession, error) {
	op := s.logger.WithOperation(ctx, "start_session", req.UserID)

	quiz, err := s.quizRepo.GetByIDWithDetails(ctx, req.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrQuizNotFound
		}
		op.LogResult(req.QuizID, "quiz", err)
		return nil, err
	}
	if quiz.Status != models.QuizPublished {
		op.LogResult(req.QuizID, "quiz", ErrQuizNotPublished)
		return nil, ErrQuizNotPublished
	}
	if len(quiz.Questions) == 0 {
		op.LogResult(req.QuizID, "quiz", ErrQuizEmpty)
		return nil, ErrQuizEmpty
	}

	var rng *rand.Rand
	if req.Seed != nil {
		rng = rand.New(rand.NewSource(*req.Seed))
	}
	sequencer := session.NewSequencer(rng)

	mode := req.ShuffleMode
	if mode == "" {
		mode = session.ShuffleNone
	}

	ordered := sequencer.Shuffle(quiz.Questions, quiz.Chapters, mode)
	batches := session.CreateBatches(ordered, req.BatchSize, quiz.Chapters)

	sess := &ReviewSession{
		ID:          uuid.NewString(),
		QuizID:      quiz.ID,
		UserID:      req.UserID,
		QuizVersion: quiz.Version,
		ShuffleMode: mode,
		BatchSize:   req.BatchSize,
		Batches:     make([]SessionBatch, len(batches)),
		Answers:     make(map[string]models.UserAnswer),
		Submitted:   make([]bool, len(batches)),
		CreatedAt:   time.Now(),
	}
	for i, batch := range batches {
		ids := make([]string, len(batch.Questions))
		for j, q := range batch.Questions {
			ids[j] = q.ID
		}
		sess.Batches[i] = SessionBatch{QuestionIDs: ids, ChapterName: batch.ChapterName}
	}

	if err := s.cache.Set(ctx, sessionKey(sess.ID), sess, s.ttl); err != nil {
		op.LogResult(req.QuizID, "quiz", err)
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	if s.publisher != nil {
		event := events.NewSessionStartedEvent(
			sess.ID, quiz.ID, req.UserID,
			len(ordered), len(batches), string(mode), sess.CreatedAt,
		)
		if err := s.publisher.PublishEvent(ctx, event); err != nil {
			s.logger.logger.Warn("failed to publish session started event", "session_id", sess.ID, "error", err)
		}
	}

	op.LogResult(sess.ID, "session", nil)
	return sess, nil
}

func (s *sessionService) GetSession(ctx context.Context, sessionID string) (*ReviewSession, error) {
	var sess ReviewSession
	err := s.cache.Get(ctx, sessionKey(sessionID), &sess)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &sess, nil
}

func (s *sessionService) GetBatch(ctx context.Context, sessionID string, index int) (*models.BatchInfo, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(sess.Batches) {
		return nil, ErrBatchIndexOutOfRange
	}

	batch := sess.Batches[index]
	questions, err := s.loadOrdered(ctx, batch.QuestionIDs)
	if err != nil {
		return nil, err
	}

	return &models.BatchInfo{
		Questions:   questions,
		ChapterName: batch.ChapterName,
	}, nil
}

func (s *sessionService) SubmitBatch(ctx context.Context, sessionID string, index int, answers map[string]models.UserAnswer) (*models.ScoreSummary, error) {
	op := s.logger.WithOperation(ctx, "submit_batch", "")

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		op.LogResult(sessionID, "session", err)
		return nil, err
	}
	if sess.Completed {
		op.LogResult(sessionID, "session", ErrSessionCompleted)
		return nil, ErrSessionCompleted
	}
	if index < 0 || index >= len(sess.Batches) {
		op.LogResult(sessionID, "session", ErrBatchIndexOutOfRange)
		return nil, ErrBatchIndexOutOfRange
	}
	if sess.Submitted[index] {
		op.LogResult(sessionID, "session", ErrBatchAlreadySubmitted)
		return nil, ErrBatchAlreadySubmitted
	}

	batch := sess.Batches[index]
	questions, err := s.loadOrdered(ctx, batch.QuestionIDs)
	if err != nil {
		op.LogResult(sessionID, "session", err)
		return nil, err
	}

	// Only answers belonging to this batch are recorded
	batchAnswers := make(map[string]models.UserAnswer, len(batch.QuestionIDs))
	for _, id := range batch.QuestionIDs {
		if ans, ok := answers[id]; ok {
			batchAnswers[id] = ans
			sess.Answers[id] = ans
		}
	}

	summary, err := s.grading.GradeQuestions(ctx, questions, batchAnswers)
	if err != nil {
		op.LogResult(sessionID, "session", err)
		return nil, err
	}

	sess.Submitted[index] = true
	if err := s.cache.Set(ctx, sessionKey(sess.ID), sess, s.ttl); err != nil {
		op.LogResult(sessionID, "session", err)
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	if s.publisher != nil {
		event := events.NewBatchGradedEvent(
			sess.ID, sess.QuizID, sess.UserID,
			index, summary.CorrectCount, summary.TotalQuestions,
		)
		if err := s.publisher.PublishEvent(ctx, event); err != nil {
			s.logger.logger.Warn("failed to publish batch graded event", "session_id", sess.ID, "error", err)
		}
	}

	op.LogResult(sessionID, "session", nil)
	return summary, nil
}

func (s *sessionService) CompleteSession(ctx context.Context, sessionID string) (*models.ScoreSummary, error) {
	op := s.logger.WithOperation(ctx, "complete_session", "")

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		op.LogResult(sessionID, "session", err)
		return nil, err
	}
	if sess.Completed {
		op.LogResult(sessionID, "session", ErrSessionCompleted)
		return nil, ErrSessionCompleted
	}

	var allIDs []string
	for _, batch := range sess.Batches {
		allIDs = append(allIDs, batch.QuestionIDs...)
	}
	questions, err := s.loadOrdered(ctx, allIDs)
	if err != nil {
		op.LogResult(sessionID, "session", err)
		return nil, err
	}

	summary, err := s.grading.GradeQuestions(ctx, questions, sess.Answers)
	if err != nil {
		op.LogResult(sessionID, "session", err)
		return nil, err
	}

	sess.Completed = true
	if err := s.cache.Set(ctx, sessionKey(sess.ID), sess, s.ttl); err != nil {
		op.LogResult(sessionID, "session", err)
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	if s.publisher != nil {
		event := events.NewSessionCompletedEvent(
			sess.ID, sess.QuizID, sess.UserID,
			summary.CorrectCount, summary.TotalQuestions,
			summary.EarnedPoints, summary.TotalPoints,
			summary.Percentage,
		)
		if err := s.publisher.PublishEvent(ctx, event); err != nil {
			s.logger.logger.Warn("failed to publish session completed event", "session_id", sess.ID, "error", err)
		}
	}

	op.LogResult(sessionID, "session", nil)
	return summary, nil
}

// loadOrdered fetches questions by ID and restores the given order.
// Questions deleted since the session started are skipped.
func (s *sessionService) loadOrdered(ctx context.Context, ids []string) ([]models.Question, error) {
	fetched, err := s.questionRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	byID := make(map[string]*models.Question, len(fetched))
	for _, q := range fetched {
		byID[q.ID] = q
	}

	ordered := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, *q)
		}
	}
	return ordered, nil
}
