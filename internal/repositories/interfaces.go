package repositories

import (
	"context"
	"time"

	"github.com/quizforge/quiz-engine/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	Status    *models.QuizStatus `json:"status"`
	CreatedBy *string            `json:"created_by"`
	DateFrom  *time.Time         `json:"date_from"`
	DateTo    *time.Time         `json:"date_to"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "title"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type QuestionFilters struct {
	Type      *models.QuestionType `json:"type"`
	ChapterID *string              `json:"chapter_id"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

// QuizRepository covers quiz-level persistence including chapters
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id string) (*models.Quiz, error)
	// GetByIDWithDetails loads chapters and questions in authored order
	GetByIDWithDetails(ctx context.Context, id string) (*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)
	ExistsByTitle(ctx context.Context, title, createdBy string, excludeID *string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status models.QuizStatus) error
}

// QuestionRepository covers question persistence
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id string) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id string) error

	CreateBatch(ctx context.Context, questions []*models.Question) error
	GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error)
	GetByQuiz(ctx context.Context, quizID string, filters QuestionFilters) ([]*models.Question, error)
	Reorder(ctx context.Context, quizID string, orderedIDs []string) error
}

// ChapterRepository covers chapter persistence
type ChapterRepository interface {
	Create(ctx context.Context, chapter *models.Chapter) error
	GetByQuiz(ctx context.Context, quizID string) ([]*models.Chapter, error)
	Update(ctx context.Context, chapter *models.Chapter) error
	Delete(ctx context.Context, id string) error
}
