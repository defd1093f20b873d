package ai

import "context"

// GradingInput carries everything a provider needs to judge one free-text
// answer. Text fields are plain text; rich-content extraction happens before
// the bridge.
type GradingInput struct {
	QuestionText    string
	ReferenceAnswer string
	Submission      string
}

// Verdict is the provider's normalized judgement. Score is clamped to [0,1];
// callers scale it into points.
type Verdict struct {
	Score    float64 `json:"score"`
	Correct  bool    `json:"correct"`
	Feedback string  `json:"feedback,omitempty"`
}

// Provider grades free-text answers against a model. Implementations must
// return an error rather than a fabricated verdict when the backend fails.
type Provider interface {
	GradeAnswer(ctx context.Context, input GradingInput) (Verdict, error)
}
