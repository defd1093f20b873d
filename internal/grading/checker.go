// Package grading implements the answer-evaluation engine: per-question-type
// checking, score aggregation, and the fold-in of AI grading verdicts. All of
// it is pure; callers own persistence and transport.
package grading

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/quizforge/quiz-engine/internal/models"
	"github.com/quizforge/quiz-engine/internal/richtext"
)

// ErrUnknownQuestionType signals a question whose discriminant the dispatch
// does not know. This is a schema fault, not a user condition: the type model
// and the checker have drifted out of sync.
var ErrUnknownQuestionType = errors.New("unknown question type")

// ExtractFunc renders the plain text of a rich-content value. The default is
// richtext.Plain; callers with their own content model substitute theirs.
type ExtractFunc func(richtext.Content) string

type Checker struct {
	extract ExtractFunc
}

type Option func(*Checker)

// WithTextExtractor overrides the plain-text renderer used for dropdown
// display values and free-text reference answers.
func WithTextExtractor(fn ExtractFunc) Option {
	return func(c *Checker) { c.extract = fn }
}

func NewChecker(opts ...Option) *Checker {
	c := &Checker{extract: richtext.Plain}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CheckAnswer grades a single submission against its question. Malformed or
// missing user input always degrades to an incorrect result; the only error
// returned is an unrecognized question type or an undecodable content
// payload, both of which indicate authoring-schema drift and must not be
// swallowed.
func (c *Checker) CheckAnswer(q *models.Question, ans models.UserAnswer) (models.CheckResult, error) {
	switch q.Type {
	case models.MultipleChoice:
		return c.checkMultipleChoice(q, ans)
	case models.MultipleAnswer:
		return c.checkMultipleAnswer(q, ans)
	case models.TrueFalse:
		return c.checkTrueFalse(q, ans)
	case models.FillBlank:
		return c.checkFillBlank(q, ans)
	case models.Dropdown:
		return c.checkDropdown(q, ans)
	case models.FreeText:
		return c.checkFreeText(q, ans)
	case models.Numeric:
		return c.checkNumeric(q, ans)
	case models.FileUpload:
		return c.checkFileUpload(q, ans), nil
	default:
		return models.CheckResult{}, fmt.Errorf("%w: %q (question %s)", ErrUnknownQuestionType, q.Type, q.ID)
	}
}

func (c *Checker) checkMultipleChoice(q *models.Question, ans models.UserAnswer) (models.CheckResult, error) {
	var content models.MultipleChoiceContent
	if err := q.DecodeContent(&content); err != nil {
		return models.CheckResult{}, err
	}

	res := models.CheckResult{MaxPoints: q.Points, Choices: make(map[string]models.ChoiceState)}

	correctID := ""
	for _, ch := range content.Choices {
		if ch.Correct {
			res.Choices[ch.ID] = models.ChoiceCorrect
			if correctID == "" {
				correctID = ch.ID
			}
		}
	}

	selected, _ := ans.AsText()
	if selected != "" && correctID != "" && selected == correctID {
		res.IsCorrect = true
		res.EarnedPoints = q.Points
	} else if selected != "" {
		res.Choices[selected] = models.ChoiceIncorrect
	}
	return res, nil
}

func (c *Checker) checkMultipleAnswer(q *models.Question, ans models.UserAnswer) (models.CheckResult, error) {
	var content models.MultipleAnswerContent
	if err := q.DecodeContent(&content); err != nil {
		return models.CheckResult{}, err
	}

	res := models.CheckResult{MaxPoints: q.Points, Choices: make(map[string]models.ChoiceState)}

	correct := make(map[string]bool, len(content.Choices))
	for _, ch := range content.Choices {
		if ch.Correct {
			correct[ch.ID] = true
			res.Choices[ch.ID] = models.ChoiceCorrect
		}
	}
	totalCorrect := len(correct)

	selectedList, _ := ans.AsList()
	selected := make(map[string]bool, len(selectedList))
	for _, id := range selectedList {
		selected[id] = true
	}

	correctSelected, incorrectSelected := 0, 0
	for id := range selected {
		if correct[id] {
			correctSelected++
		} else {
			incorrectSelected++
			res.Choices[id] = models.ChoiceIncorrect
		}
	}

	if totalCorrect > 0 {
		ratio := float64(correctSelected-incorrectSelected) / float64(totalCorrect)
		if ratio < 0 {
			ratio = 0
		}
		res.EarnedPoints = round2(ratio * q.Points)
		res.IsCorrect = correctSelected == totalCorrect && incorrectSelected == 0
	}
	return res, nil
}

func (c *Checker) checkTrueFalse(q *models.Question, ans models.UserAnswer) (models.CheckResult, error) {
	var content models.TrueFalseContent
	if err := q.DecodeContent(&content); err != nil {
		return models.CheckResult{}, err
	}

	res := models.CheckResult{MaxPoints: q.Points}

	text, _ := ans.AsText()
	var submitted bool
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true":
		submitted = true
	case "false":
		submitted = false
	default:
		// empty or unrecognized submissions are never treated as "false"
		return res, nil
	}

	if submitted == content.Correct {
		res.IsCorrect = true
		res.EarnedPoints = q.Points
	}
	return res, nil
}

func (c *Checker) checkFillBlank(q *models.Question, ans models.UserAnswer) (models.CheckResult, error) {
	var content models.FillBlankContent
	if err := q.DecodeContent(&content); err != nil {
		return models.CheckResult{}, err
	}

	submitted, _ := ans.AsList()
	res := models.CheckResult{MaxPoints: q.Points, Blanks: make([]models.BlankResult, 0, len(content.Answers))}

	correctCount := 0
	for i, expected := range content.Answers {
		value := ""
		if i < len(submitted) {
			value = submitted[i]
		}
		ok := matchBlank(value, expected, &content)
		if ok {
			correctCount++
		}
		res.Blanks = append(res.Blanks, models.BlankResult{
			Index:     i,
			Correct:   ok,
			Submitted: value,
			Expected:  expected,
		})
	}

	if total := len(content.Answers); total > 0 {
		res.EarnedPoints = round2(float64(correctCount) / float64(total) * q.Points)
		res.IsCorrect = correctCount == total
	}
	return res, nil
}

// matchBlank applies the per-question comparison policy to one slot.
func matchBlank(submitted, expected string, content *models.FillBlankContent) bool {
	if content.Numeric && content.Tolerance != "" && content.Tolerance != models.ToleranceOff {
		sub, errS := strconv.ParseFloat(strings.TrimSpace(submitted), 64)
		exp, errE := strconv.ParseFloat(strings.TrimSpace(expected), 64)
		if errS == nil && errE == nil {
			return math.Abs(sub-exp) <= content.Tolerance.Value()
		}
		// unparseable on either side falls through to string comparison
	}
	if content.CaseSensitive {
		return strings.TrimSpace(submitted) == strings.TrimSpace(expected)
	}
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(expected))
}

func (c *Checker) checkDropdown(q *models.Question, ans models.UserAnswer) (models.CheckResult, error) {
	var content models.DropdownContent
	if err := q.DecodeContent(&content); err != nil {
		return models.CheckResult{}, err
	}

	choiceText := make(map[string]string, len(content.Choices))
	for _, ch := range content.Choices {
		choiceText[ch.ID] = c.extract(ch.Text)
	}

	submitted, _ := ans.AsList()
	res := models.CheckResult{MaxPoints: q.Points, Blanks: make([]models.BlankResult, 0, len(content.Answers))}

	correctCount := 0
	for i, expectedID := range content.Answers {
		value := ""
		if i < len(submitted) {
			value = submitted[i]
		}
		// slots hold choice ids; comparison is by id, display by text
		ok := value == expectedID
		if ok {
			correctCount++
		}
		res.Blanks = append(res.Blanks, models.BlankResult{
			Index:     i,
			Correct:   ok,
			Submitted: value,
			Expected:  choiceText[expectedID],
		})
	}

	if total := len(content.Answers); total > 0 {
		res.EarnedPoints = round2(float64(correctCount) / float64(total) * q.Points)
		res.IsCorrect = correctCount == total
	}
	return res, nil
}

func (c *Checker) checkFreeText(q *models.Question, ans models.UserAnswer) (models.CheckResult, error) {
	var content models.FreeTextContent
	if err := q.DecodeContent(&content); err != nil {
		return models.CheckResult{}, err
	}

	res := models.CheckResult{MaxPoints: q.Points, FreeText: &models.FreeTextResult{}}

	text, _ := ans.AsText()
	submitted := strings.TrimSpace(text)
	if submitted == "" {
		return res, nil
	}

	reference := strings.TrimSpace(c.extract(content.ReferenceAnswer))
	if reference != "" && strings.EqualFold(submitted, reference) {
		res.IsCorrect = true
		res.EarnedPoints = q.Points
		res.FreeText.ExactMatch = true
		return res, nil
	}

	if content.AIGradingEnabled {
		// The checker never calls the network; the caller resolves this
		// through GradeWithAI.
		res.FreeText.PendingAIGrade = true
	}
	return res, nil
}

func (c *Checker) checkNumeric(q *models.Question, ans models.UserAnswer) (models.CheckResult, error) {
	var content models.NumericContent
	if err := q.DecodeContent(&content); err != nil {
		return models.CheckResult{}, err
	}

	res := models.CheckResult{MaxPoints: q.Points}

	text, _ := ans.AsText()
	submitted, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return res, nil
	}

	tolerance := 0.0
	if content.Tolerance != nil {
		tolerance = *content.Tolerance
	}
	if math.Abs(submitted-content.CorrectAnswer) <= tolerance {
		res.IsCorrect = true
		res.EarnedPoints = q.Points
	}
	return res, nil
}

func (c *Checker) checkFileUpload(q *models.Question, ans models.UserAnswer) models.CheckResult {
	// never auto-graded; an instructor reviews the upload
	return models.CheckResult{
		MaxPoints: q.Points,
		FileUpload: &models.FileUploadResult{
			PendingManualGrade: true,
			HasSubmission:      !ans.IsEmpty(),
		},
	}
}

// round2 rounds half-up to two decimal places. Partial-credit fixtures assert
// exact decimal results, so the rounding mode matters.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
