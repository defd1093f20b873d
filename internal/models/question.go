package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/quizforge/quiz-engine/internal/richtext"
	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	MultipleAnswer QuestionType = "multiple_answer"
	TrueFalse      QuestionType = "true_false"
	FillBlank      QuestionType = "fill_blank"
	Dropdown       QuestionType = "dropdown"
	FreeText       QuestionType = "free_text"
	Numeric        QuestionType = "numeric"
	FileUpload     QuestionType = "file_upload"
)

// QuestionTypes lists every known variant, in authoring order.
var QuestionTypes = []QuestionType{
	MultipleChoice, MultipleAnswer, TrueFalse, FillBlank,
	Dropdown, FreeText, Numeric, FileUpload,
}

func (t QuestionType) Valid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Question is the unit of grading. Type determines which content struct the
// Content payload decodes into; a question never carries another variant's
// grading fields.
type Question struct {
	ID        string           `json:"id" gorm:"primaryKey;size:64"`
	QuizID    string           `json:"quiz_id" gorm:"index;size:64"`
	Type      QuestionType     `json:"type" gorm:"not null;size:32" validate:"required"`
	Text      richtext.Content `json:"text" gorm:"type:jsonb"`
	Points    float64          `json:"points" gorm:"not null" validate:"min=0"`
	ChapterID *string          `json:"chapter_id,omitempty" gorm:"size:64;index"`
	Position  int              `json:"position"`

	// Type-specific grading key, decoded per Type
	Content datatypes.JSON `json:"content" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// Choice is one selectable option of a choice-like question.
type Choice struct {
	ID      string           `json:"id"`
	Text    richtext.Content `json:"text"`
	Correct bool             `json:"correct"`
}

// FillBlankTolerance selects the numeric tolerance applied to a fill-blank
// slot when its Numeric flag is set.
type FillBlankTolerance string

const (
	ToleranceOff      FillBlankTolerance = "off"
	TolerancePointOne FillBlankTolerance = "0.1"
	ToleranceOne      FillBlankTolerance = "1"
)

// Value returns the absolute deviation the tolerance admits.
func (t FillBlankTolerance) Value() float64 {
	switch t {
	case TolerancePointOne:
		return 0.1
	case ToleranceOne:
		return 1
	default:
		return 0
	}
}

type MultipleChoiceContent struct {
	Choices []Choice `json:"choices"`
}

type MultipleAnswerContent struct {
	Choices []Choice `json:"choices"`
}

type TrueFalseContent struct {
	Correct bool `json:"correct"`
}

type FillBlankContent struct {
	// One expected value per blank, in order.
	Answers       []string           `json:"answers"`
	CaseSensitive bool               `json:"case_sensitive"`
	Numeric       bool               `json:"numeric"`
	Tolerance     FillBlankTolerance `json:"tolerance,omitempty"`
}

type DropdownContent struct {
	Choices []Choice `json:"choices"`
	// One expected choice id per slot, in order.
	Answers []string `json:"answers"`
}

type FreeTextContent struct {
	ReferenceAnswer  richtext.Content `json:"reference_answer,omitempty"`
	AIGradingEnabled bool             `json:"ai_grading_enabled"`
}

type NumericContent struct {
	CorrectAnswer float64  `json:"correct_answer"`
	Tolerance     *float64 `json:"tolerance,omitempty"`
	Unit          string   `json:"unit,omitempty"`
}

type FileUploadContent struct {
	AcceptedTypes []string `json:"accepted_types,omitempty"`
	MaxFileSizeMB float64  `json:"max_file_size_mb,omitempty"`
}

// DecodeContent unmarshals the question's content payload into dest, which
// must be a pointer to the content struct matching the question's type.
func (q *Question) DecodeContent(dest any) error {
	if len(q.Content) == 0 {
		// Missing content is a schema-level fault, same class as an
		// unknown discriminant.
		return fmt.Errorf("question %s (%s): empty content payload", q.ID, q.Type)
	}
	if err := json.Unmarshal(q.Content, dest); err != nil {
		return fmt.Errorf("question %s (%s): decode content: %w", q.ID, q.Type, err)
	}
	return nil
}
