package models

import (
	"time"

	"gorm.io/gorm"
)

type QuizStatus string

const (
	QuizDraft     QuizStatus = "draft"
	QuizPublished QuizStatus = "published"
	QuizArchived  QuizStatus = "archived"
)

// Chapter is a named grouping of questions used for display ordering and
// chapter-aware shuffling/batching.
type Chapter struct {
	ID       string `json:"id" gorm:"primaryKey;size:64"`
	QuizID   string `json:"quiz_id" gorm:"index;size:64"`
	Name     string `json:"name" gorm:"not null;size:200"`
	Position int    `json:"position"`
}

func (Chapter) TableName() string {
	return "chapters"
}

type Quiz struct {
	ID          string     `json:"id" gorm:"primaryKey;size:64"`
	Title       string     `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string    `json:"description,omitempty" gorm:"type:text" validate:"omitempty,max=1000"`
	Status      QuizStatus `json:"status" gorm:"default:draft;index" validate:"omitempty,oneof=draft published archived"`

	CreatedBy string         `json:"created_by" gorm:"size:64;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Version control for the authoring save flow
	Version int `json:"version" gorm:"default:1"`

	// Relations
	Chapters  []Chapter  `json:"chapters" gorm:"foreignKey:QuizID"`
	Questions []Question `json:"questions" gorm:"foreignKey:QuizID"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// ChapterByID returns the chapter with the given id, or nil when the id is
// unknown (an orphaned reference).
func (q *Quiz) ChapterByID(id string) *Chapter {
	for i := range q.Chapters {
		if q.Chapters[i].ID == id {
			return &q.Chapters[i]
		}
	}
	return nil
}
