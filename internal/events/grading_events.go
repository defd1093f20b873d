package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of engine events
type EventType string

const (
	// Session events
	EventSessionStarted   EventType = "session.started"
	EventSessionCompleted EventType = "session.completed"
	EventBatchGraded      EventType = "session.batch_graded"

	// Grading events
	EventQuizGraded            EventType = "quiz.graded"
	EventAIGradingCompleted    EventType = "grading.ai_completed"
	EventManualGradingRequired EventType = "grading.manual_required"
)

// Event is the base structure for all published events
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Session event payloads

type SessionStartedEvent struct {
	SessionID     string    `json:"session_id"`
	QuizID        string    `json:"quiz_id"`
	UserID        string    `json:"user_id"`
	QuestionCount int       `json:"question_count"`
	BatchCount    int       `json:"batch_count"`
	ShuffleMode   string    `json:"shuffle_mode"`
	StartedAt     time.Time `json:"started_at"`
}

type SessionCompletedEvent struct {
	SessionID      string    `json:"session_id"`
	QuizID         string    `json:"quiz_id"`
	UserID         string    `json:"user_id"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	EarnedPoints   float64   `json:"earned_points"`
	TotalPoints    float64   `json:"total_points"`
	Percentage     int       `json:"percentage"`
	CompletedAt    time.Time `json:"completed_at"`
}

type BatchGradedEvent struct {
	SessionID     string    `json:"session_id"`
	QuizID        string    `json:"quiz_id"`
	UserID        string    `json:"user_id"`
	BatchIndex    int       `json:"batch_index"`
	CorrectCount  int       `json:"correct_count"`
	QuestionCount int       `json:"question_count"`
	GradedAt      time.Time `json:"graded_at"`
}

// Grading event payloads

type QuizGradedEvent struct {
	SessionID       string    `json:"session_id"`
	QuizID          string    `json:"quiz_id"`
	UserID          string    `json:"user_id"`
	CorrectCount    int       `json:"correct_count"`
	TotalQuestions  int       `json:"total_questions"`
	EarnedPoints    float64   `json:"earned_points"`
	TotalPoints     float64   `json:"total_points"`
	Percentage      int       `json:"percentage"`
	PendingAIGrades bool      `json:"pending_ai_grades"`
	GradedAt        time.Time `json:"graded_at"`
}

type AIGradingCompletedEvent struct {
	SessionID  string    `json:"session_id"`
	QuestionID string    `json:"question_id"`
	Score      float64   `json:"score"`
	Correct    bool      `json:"correct"`
	GradedAt   time.Time `json:"graded_at"`
}

type ManualGradingRequiredEvent struct {
	SessionID   string    `json:"session_id"`
	QuizID      string    `json:"quiz_id"`
	QuestionIDs []string  `json:"question_ids"`
	RequiredAt  time.Time `json:"required_at"`
}

// Event factory functions

func newEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "quiz-engine",
		Version:   "1.0",
		Data:      data,
	}
}

func NewSessionStartedEvent(sessionID, quizID, userID string, questionCount, batchCount int, shuffleMode string, startedAt time.Time) *Event {
	return newEvent(EventSessionStarted, SessionStartedEvent{
		SessionID:     sessionID,
		QuizID:        quizID,
		UserID:        userID,
		QuestionCount: questionCount,
		BatchCount:    batchCount,
		ShuffleMode:   shuffleMode,
		StartedAt:     startedAt,
	})
}

func NewSessionCompletedEvent(sessionID, quizID, userID string, correctCount, totalQuestions int, earnedPoints, totalPoints float64, percentage int) *Event {
	return newEvent(EventSessionCompleted, SessionCompletedEvent{
		SessionID:      sessionID,
		QuizID:         quizID,
		UserID:         userID,
		CorrectCount:   correctCount,
		TotalQuestions: totalQuestions,
		EarnedPoints:   earnedPoints,
		TotalPoints:    totalPoints,
		Percentage:     percentage,
		CompletedAt:    time.Now(),
	})
}

func NewBatchGradedEvent(sessionID, quizID, userID string, batchIndex, correctCount, questionCount int) *Event {
	return newEvent(EventBatchGraded, BatchGradedEvent{
		SessionID:     sessionID,
		QuizID:        quizID,
		UserID:        userID,
		BatchIndex:    batchIndex,
		CorrectCount:  correctCount,
		QuestionCount: questionCount,
		GradedAt:      time.Now(),
	})
}

func NewQuizGradedEvent(sessionID, quizID, userID string, correctCount, totalQuestions int, earnedPoints, totalPoints float64, percentage int, pendingAI bool) *Event {
	return newEvent(EventQuizGraded, QuizGradedEvent{
		SessionID:       sessionID,
		QuizID:          quizID,
		UserID:          userID,
		CorrectCount:    correctCount,
		TotalQuestions:  totalQuestions,
		EarnedPoints:    earnedPoints,
		TotalPoints:     totalPoints,
		Percentage:      percentage,
		PendingAIGrades: pendingAI,
		GradedAt:        time.Now(),
	})
}

func NewAIGradingCompletedEvent(sessionID, questionID string, score float64, correct bool) *Event {
	return newEvent(EventAIGradingCompleted, AIGradingCompletedEvent{
		SessionID:  sessionID,
		QuestionID: questionID,
		Score:      score,
		Correct:    correct,
		GradedAt:   time.Now(),
	})
}

func NewManualGradingRequiredEvent(sessionID, quizID string, questionIDs []string) *Event {
	return newEvent(EventManualGradingRequired, ManualGradingRequiredEvent{
		SessionID:   sessionID,
		QuizID:      quizID,
		QuestionIDs: questionIDs,
		RequiredAt:  time.Now(),
	})
}
