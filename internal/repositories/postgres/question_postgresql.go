package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/quizforge/quiz-engine/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

// Create creates a new question appended at the end of its quiz
func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if question.ID == "" {
			question.ID = uuid.NewString()
		}

		var maxPosition int
		err := tx.Model(&models.Question{}).
			Where("quiz_id = ?", question.QuizID).
			Select("COALESCE(MAX(position), -1)").
			Scan(&maxPosition).Error
		if err != nil {
			return fmt.Errorf("failed to determine question position: %w", err)
		}
		question.Position = maxPosition + 1

		if err := tx.Create(question).Error; err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a question by ID
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	err := q.db.WithContext(ctx).First(&question, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// Update updates a question
func (q *QuestionPostgreSQL) Update(ctx context.Context, question *models.Question) error {
	result := q.db.WithContext(ctx).Save(question)
	if result.Error != nil {
		return fmt.Errorf("failed to update question: %w", result.Error)
	}
	return nil
}

// Delete removes a question
func (q *QuestionPostgreSQL) Delete(ctx context.Context, id string) error {
	result := q.db.WithContext(ctx).Delete(&models.Question{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateBatch creates multiple questions in a single transaction
func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, question := range questions {
			if question.ID == "" {
				question.ID = uuid.NewString()
			}
			question.Position = i
		}
		if err := tx.Create(&questions).Error; err != nil {
			return fmt.Errorf("failed to create questions: %w", err)
		}
		return nil
	})
}

// GetByIDs retrieves questions by their IDs
func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var questions []*models.Question
	err := q.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	return questions, nil
}

// GetByQuiz retrieves a quiz's questions in authored order
func (q *QuestionPostgreSQL) GetByQuiz(ctx context.Context, quizID string, filters repositories.QuestionFilters) ([]*models.Question, error) {
	query := q.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("position ASC")

	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.ChapterID != nil {
		query = query.Where("chapter_id = ?", *filters.ChapterID)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var questions []*models.Question
	if err := query.Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get quiz questions: %w", err)
	}
	return questions, nil
}

// Reorder rewrites the authored order of a quiz's questions
func (q *QuestionPostgreSQL) Reorder(ctx context.Context, quizID string, orderedIDs []string) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count quiz questions: %w", err)
		}
		if int(count) != len(orderedIDs) {
			return fmt.Errorf("reorder must include all %d questions, got %d", count, len(orderedIDs))
		}

		for position, id := range orderedIDs {
			result := tx.Model(&models.Question{}).
				Where("id = ? AND quiz_id = ?", id, quizID).
				Update("position", position)
			if result.Error != nil {
				return fmt.Errorf("failed to reorder question %s: %w", id, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("question %s does not belong to quiz %s", id, quizID)
			}
		}
		return nil
	})
}
