package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/quizforge/quiz-engine/internal/session"
)

// Validator combines struct-tag validation with question content validation
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate performs complete validation: struct tags first, then
// type-specific question content rules when s is a question
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		return err
	}

	if q, ok := s.(*models.Question); ok {
		return v.questionValidator.ValidateQuestion(q)
	}

	return nil
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("quiz_status", validateQuizStatus)
	validate.RegisterValidation("shuffle_mode", validateShuffleMode)
	validate.RegisterValidation("blank_tolerance", validateBlankTolerance)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).Valid()
}

func validateQuizStatus(fl validator.FieldLevel) bool {
	switch models.QuizStatus(fl.Field().String()) {
	case models.QuizDraft, models.QuizPublished, models.QuizArchived:
		return true
	}
	return false
}

func validateShuffleMode(fl validator.FieldLevel) bool {
	switch session.ShuffleMode(fl.Field().String()) {
	case session.ShuffleNone, session.ShuffleFull, session.ShuffleWithinChapters,
		session.ShuffleChaptersOnly, session.ShuffleBoth:
		return true
	}
	return false
}

func validateBlankTolerance(fl validator.FieldLevel) bool {
	switch models.FillBlankTolerance(fl.Field().String()) {
	case models.ToleranceOff, models.TolerancePointOne, models.ToleranceOne:
		return true
	}
	return false
}
