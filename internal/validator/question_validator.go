package validator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quizforge/quiz-engine/internal/models"
)

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateContent validates the content payload for the given question type
func (v *QuestionValidator) ValidateContent(questionType models.QuestionType, content []byte) error {
	if len(content) == 0 {
		return fmt.Errorf("content cannot be empty")
	}

	switch questionType {
	case models.MultipleChoice:
		return v.validateMultipleChoiceContent(content)
	case models.MultipleAnswer:
		return v.validateMultipleAnswerContent(content)
	case models.TrueFalse:
		return v.validateTrueFalseContent(content)
	case models.FillBlank:
		return v.validateFillBlankContent(content)
	case models.Dropdown:
		return v.validateDropdownContent(content)
	case models.FreeText:
		return v.validateFreeTextContent(content)
	case models.Numeric:
		return v.validateNumericContent(content)
	case models.FileUpload:
		return v.validateFileUploadContent(content)
	default:
		return fmt.Errorf("unsupported question type: %s", questionType)
	}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if strings.TrimSpace(question.Text.Plain()) == "" {
		return fmt.Errorf("question text is required")
	}

	if question.Points < 0 || question.Points > 100 {
		return fmt.Errorf("question points must be between 0 and 100")
	}

	return v.ValidateContent(question.Type, question.Content)
}

// ValidateBatch validates multiple questions
func (v *QuestionValidator) ValidateBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}

	for i, question := range questions {
		if err := v.ValidateQuestion(question); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}

// ValidateChapterRefs reports questions whose chapter reference does not
// match any chapter of the quiz. Grading and sequencing treat such
// questions as uncategorized, so these are authoring-time errors only.
func (v *QuestionValidator) ValidateChapterRefs(quiz *models.Quiz) ValidationErrors {
	known := make(map[string]bool, len(quiz.Chapters))
	for _, ch := range quiz.Chapters {
		known[ch.ID] = true
	}

	var errs ValidationErrors
	for _, q := range quiz.Questions {
		if q.ChapterID != nil && !known[*q.ChapterID] {
			errs = append(errs, ValidationError{
				Field:   "chapter_id",
				Message: fmt.Sprintf("question %s references unknown chapter %s", q.ID, *q.ChapterID),
				Value:   *q.ChapterID,
				Rule:    "chapter_ref",
			})
		}
	}
	return errs
}

// Private validation methods for each question type

func validateChoices(choices []models.Choice) (map[string]bool, error) {
	if len(choices) < 2 {
		return nil, fmt.Errorf("must have at least 2 choices")
	}
	if len(choices) > 10 {
		return nil, fmt.Errorf("cannot have more than 10 choices")
	}

	ids := make(map[string]bool, len(choices))
	for _, choice := range choices {
		if choice.ID == "" {
			return nil, fmt.Errorf("choice ID cannot be empty")
		}
		if ids[choice.ID] {
			return nil, fmt.Errorf("duplicate choice ID: %s", choice.ID)
		}
		if strings.TrimSpace(choice.Text.Plain()) == "" {
			return nil, fmt.Errorf("choice text cannot be empty")
		}
		ids[choice.ID] = true
	}
	return ids, nil
}

func countCorrect(choices []models.Choice) int {
	n := 0
	for _, c := range choices {
		if c.Correct {
			n++
		}
	}
	return n
}

func (v *QuestionValidator) validateMultipleChoiceContent(content []byte) error {
	var c models.MultipleChoiceContent
	if err := json.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("invalid multiple choice content: %w", err)
	}

	if _, err := validateChoices(c.Choices); err != nil {
		return err
	}

	if countCorrect(c.Choices) != 1 {
		return fmt.Errorf("must have exactly 1 correct choice")
	}

	return nil
}

func (v *QuestionValidator) validateMultipleAnswerContent(content []byte) error {
	var c models.MultipleAnswerContent
	if err := json.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("invalid multiple answer content: %w", err)
	}

	if _, err := validateChoices(c.Choices); err != nil {
		return err
	}

	if countCorrect(c.Choices) == 0 {
		return fmt.Errorf("must have at least 1 correct choice")
	}

	return nil
}

func (v *QuestionValidator) validateTrueFalseContent(content []byte) error {
	var c models.TrueFalseContent
	if err := json.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("invalid true/false content: %w", err)
	}
	return nil
}

func (v *QuestionValidator) validateFillBlankContent(content []byte) error {
	var c models.FillBlankContent
	if err := json.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("invalid fill-in-blank content: %w", err)
	}

	if len(c.Answers) == 0 {
		return fmt.Errorf("must have at least 1 blank")
	}

	for i, answer := range c.Answers {
		if strings.TrimSpace(answer) == "" {
			return fmt.Errorf("blank %d must have a non-empty answer", i+1)
		}
	}

	switch c.Tolerance {
	case "", models.ToleranceOff, models.TolerancePointOne, models.ToleranceOne:
	default:
		return fmt.Errorf("invalid tolerance: %s", c.Tolerance)
	}

	return nil
}

func (v *QuestionValidator) validateDropdownContent(content []byte) error {
	var c models.DropdownContent
	if err := json.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("invalid dropdown content: %w", err)
	}

	ids, err := validateChoices(c.Choices)
	if err != nil {
		return err
	}

	if len(c.Answers) == 0 {
		return fmt.Errorf("must have at least 1 answer slot")
	}

	for i, answerID := range c.Answers {
		if !ids[answerID] {
			return fmt.Errorf("answer slot %d references unknown choice: %s", i+1, answerID)
		}
	}

	return nil
}

func (v *QuestionValidator) validateFreeTextContent(content []byte) error {
	var c models.FreeTextContent
	if err := json.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("invalid free text content: %w", err)
	}

	if c.AIGradingEnabled && strings.TrimSpace(c.ReferenceAnswer.Plain()) == "" {
		return fmt.Errorf("AI grading requires a reference answer")
	}

	return nil
}

func (v *QuestionValidator) validateNumericContent(content []byte) error {
	var c models.NumericContent
	if err := json.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("invalid numeric content: %w", err)
	}

	if c.Tolerance != nil && *c.Tolerance < 0 {
		return fmt.Errorf("tolerance cannot be negative")
	}

	return nil
}

func (v *QuestionValidator) validateFileUploadContent(content []byte) error {
	var c models.FileUploadContent
	if err := json.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("invalid file upload content: %w", err)
	}

	if c.MaxFileSizeMB < 0 {
		return fmt.Errorf("max file size cannot be negative")
	}

	for i, t := range c.AcceptedTypes {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("accepted type %d cannot be empty", i+1)
		}
	}

	return nil
}
