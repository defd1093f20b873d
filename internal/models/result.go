package models

// ChoiceState classifies a choice for result highlighting.
type ChoiceState string

const (
	// ChoiceCorrect marks a choice that belongs to the answer key.
	ChoiceCorrect ChoiceState = "correct"
	// ChoiceIncorrect marks a wrong choice the learner selected.
	ChoiceIncorrect ChoiceState = "incorrect"
)

// BlankResult is the per-slot outcome of a fill-blank or dropdown question.
type BlankResult struct {
	Index     int    `json:"index"`
	Correct   bool   `json:"correct"`
	Submitted string `json:"submitted"`
	// Expected is the answer key value; for dropdowns it is the expected
	// choice's plain text, not its id.
	Expected string `json:"expected"`
}

// FreeTextResult records how a free-text answer was (or was not) graded.
type FreeTextResult struct {
	// ExactMatch is set when the submission matched the reference answer.
	ExactMatch bool `json:"exact_match"`
	// PendingAIGrade is set when local matching was inconclusive and the
	// question opts into AI grading; the caller must resolve it through the
	// AI bridge before treating the result as final.
	PendingAIGrade bool `json:"pending_ai_grade,omitempty"`
	// GradedByAI is set once the AI bridge produced the score.
	GradedByAI bool `json:"graded_by_ai,omitempty"`
	// AIError carries the bridge failure, if any; the result then stays at
	// zero points.
	AIError string `json:"ai_error,omitempty"`
}

// FileUploadResult flags a submission that needs manual review.
type FileUploadResult struct {
	PendingManualGrade bool `json:"pending_manual_grade"`
	HasSubmission      bool `json:"has_submission"`
}

// CheckResult is the grading outcome for a single question.
// 0 <= EarnedPoints <= MaxPoints always, and MaxPoints equals the question's
// Points.
type CheckResult struct {
	IsCorrect    bool    `json:"is_correct"`
	EarnedPoints float64 `json:"earned_points"`
	MaxPoints    float64 `json:"max_points"`

	// Type-specific detail, at most one of which is populated.
	Choices    map[string]ChoiceState `json:"choices,omitempty"`
	Blanks     []BlankResult          `json:"blanks,omitempty"`
	FreeText   *FreeTextResult        `json:"free_text,omitempty"`
	FileUpload *FileUploadResult      `json:"file_upload,omitempty"`
}

// ScoreSummary is the quiz-level aggregate over a set of per-question results.
type ScoreSummary struct {
	CorrectCount   int     `json:"correct_count"`
	TotalQuestions int     `json:"total_questions"`
	EarnedPoints   float64 `json:"earned_points"`
	TotalPoints    float64 `json:"total_points"`
	// Percentage is round(earned/total*100), or 0 when no points are at stake.
	Percentage int `json:"percentage"`

	Results map[string]CheckResult `json:"results"`
}

// HasPendingAIGrades reports whether any result still awaits the AI bridge.
func (s *ScoreSummary) HasPendingAIGrades() bool {
	for _, r := range s.Results {
		if r.FreeText != nil && r.FreeText.PendingAIGrade {
			return true
		}
	}
	return false
}

// BatchInfo is one presentation batch of a review session. ChapterName is set
// only for chapter-mode batches.
type BatchInfo struct {
	Questions   []Question `json:"questions"`
	ChapterName string     `json:"chapter_name,omitempty"`
}
