package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/quizforge/quiz-engine/internal/repositories"
	"gorm.io/gorm"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

// Create creates a new quiz in draft status
func (q *QuizPostgreSQL) Create(ctx context.Context, quiz *models.Quiz) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := q.ExistsByTitle(ctx, quiz.Title, quiz.CreatedBy, nil)
		if err != nil {
			return fmt.Errorf("failed to check title uniqueness: %w", err)
		}
		if exists {
			return fmt.Errorf("quiz with title '%s' already exists for this creator", quiz.Title)
		}

		if quiz.ID == "" {
			quiz.ID = uuid.NewString()
		}
		quiz.Status = models.QuizDraft
		quiz.Version = 1

		if err := tx.Create(quiz).Error; err != nil {
			return fmt.Errorf("failed to create quiz: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a quiz by ID without associations
func (q *QuizPostgreSQL) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := q.db.WithContext(ctx).
		First(&quiz, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// GetByIDWithDetails retrieves a quiz with chapters and questions in authored order
func (q *QuizPostgreSQL) GetByIDWithDetails(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := q.db.WithContext(ctx).
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&quiz, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// Update updates a quiz and bumps its version
func (q *QuizPostgreSQL) Update(ctx context.Context, quiz *models.Quiz) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Quiz
		if err := tx.First(&current, "id = ?", quiz.ID).Error; err != nil {
			return fmt.Errorf("quiz not found: %w", err)
		}

		if quiz.Title != current.Title {
			exists, err := q.ExistsByTitle(ctx, quiz.Title, quiz.CreatedBy, &quiz.ID)
			if err != nil {
				return fmt.Errorf("failed to check title uniqueness: %w", err)
			}
			if exists {
				return fmt.Errorf("quiz with title '%s' already exists for this creator", quiz.Title)
			}
		}

		quiz.Version = current.Version + 1
		if err := tx.Save(quiz).Error; err != nil {
			return fmt.Errorf("failed to update quiz: %w", err)
		}
		return nil
	})
}

// Delete soft-deletes a quiz
func (q *QuizPostgreSQL) Delete(ctx context.Context, id string) error {
	result := q.db.WithContext(ctx).Delete(&models.Quiz{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete quiz: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List retrieves quizzes matching the filters together with a total count
func (q *QuizPostgreSQL) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	query := q.db.WithContext(ctx).Model(&models.Quiz{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count quizzes: %w", err)
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortOrder := filters.SortOrder
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var quizzes []*models.Quiz
	if err := query.Find(&quizzes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, total, nil
}

// ExistsByTitle checks title uniqueness per creator
func (q *QuizPostgreSQL) ExistsByTitle(ctx context.Context, title, createdBy string, excludeID *string) (bool, error) {
	query := q.db.WithContext(ctx).Model(&models.Quiz{}).
		Where("title = ? AND created_by = ?", title, createdBy)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateStatus transitions a quiz to the given status
func (q *QuizPostgreSQL) UpdateStatus(ctx context.Context, id string, status models.QuizStatus) error {
	result := q.db.WithContext(ctx).Model(&models.Quiz{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update quiz status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
