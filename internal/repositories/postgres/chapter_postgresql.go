package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/quizforge/quiz-engine/internal/repositories"
	"gorm.io/gorm"
)

type ChapterPostgreSQL struct {
	db *gorm.DB
}

func NewChapterPostgreSQL(db *gorm.DB) repositories.ChapterRepository {
	return &ChapterPostgreSQL{db: db}
}

// Create creates a new chapter appended at the end of its quiz
func (c *ChapterPostgreSQL) Create(ctx context.Context, chapter *models.Chapter) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if chapter.ID == "" {
			chapter.ID = uuid.NewString()
		}

		var maxPosition int
		err := tx.Model(&models.Chapter{}).
			Where("quiz_id = ?", chapter.QuizID).
			Select("COALESCE(MAX(position), -1)").
			Scan(&maxPosition).Error
		if err != nil {
			return fmt.Errorf("failed to determine chapter position: %w", err)
		}
		chapter.Position = maxPosition + 1

		if err := tx.Create(chapter).Error; err != nil {
			return fmt.Errorf("failed to create chapter: %w", err)
		}
		return nil
	})
}

// GetByQuiz retrieves a quiz's chapters in authored order
func (c *ChapterPostgreSQL) GetByQuiz(ctx context.Context, quizID string) ([]*models.Chapter, error) {
	var chapters []*models.Chapter
	err := c.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("position ASC").
		Find(&chapters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz chapters: %w", err)
	}
	return chapters, nil
}

// Update updates a chapter
func (c *ChapterPostgreSQL) Update(ctx context.Context, chapter *models.Chapter) error {
	result := c.db.WithContext(ctx).Save(chapter)
	if result.Error != nil {
		return fmt.Errorf("failed to update chapter: %w", result.Error)
	}
	return nil
}

// Delete removes a chapter. Questions keep their chapter reference and
// are treated as uncategorized from then on.
func (c *ChapterPostgreSQL) Delete(ctx context.Context, id string) error {
	result := c.db.WithContext(ctx).Delete(&models.Chapter{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete chapter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
