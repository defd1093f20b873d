package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	openai "github.com/sashabaranov/go-openai"
)

var (
	gradeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quizforge",
		Subsystem: "ai",
		Name:      "grading_duration_seconds",
		Help:      "Duration of AI grading requests",
	}, []string{"model"})

	gradeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quizforge",
		Subsystem: "ai",
		Name:      "grading_failures_total",
		Help:      "Number of AI grading failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI grader.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      *slog.Logger
}

// OpenAIProvider implements Provider against the OpenAI chat completion API.
type OpenAIProvider struct {
	client *openai.Client
	cfg    OpenAIConfig
	logger *slog.Logger
}

// NewOpenAIProvider builds a provider using the given configuration.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 256
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey)),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// GradeAnswer sends the grading request to OpenAI and parses the response.
func (p *OpenAIProvider) GradeAnswer(ctx context.Context, input GradingInput) (Verdict, error) {
	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: graderSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildGradingPrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := p.client.CreateChatCompletion(ctx, request)
	gradeDuration.WithLabelValues(p.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		gradeFailures.WithLabelValues(p.cfg.Model).Inc()
		return Verdict{}, fmt.Errorf("openai grade answer: %w", err)
	}
	if len(resp.Choices) == 0 {
		gradeFailures.WithLabelValues(p.cfg.Model).Inc()
		return Verdict{}, fmt.Errorf("no choices returned from openai")
	}

	verdict, err := parseVerdict(strings.TrimSpace(resp.Choices[0].Message.Content))
	if err != nil {
		gradeFailures.WithLabelValues(p.cfg.Model).Inc()
		return Verdict{}, err
	}

	p.logger.Debug("AI grading verdict",
		"model", p.cfg.Model,
		"score", verdict.Score,
		"correct", verdict.Correct)

	return verdict, nil
}

func graderSystemPrompt() string {
	return "You are grading a learner's free-text answer to a quiz question. Respond with a JSON object containing score " +
		"(0-1, how close the answer is to the reference), correct (boolean), and feedback (one short sentence). Judge meaning, " +
		"not wording."
}

func buildGradingPrompt(input GradingInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Question\n")
	builder.WriteString(input.QuestionText)
	if input.ReferenceAnswer != "" {
		builder.WriteString("\n\n## Reference Answer\n")
		builder.WriteString(input.ReferenceAnswer)
	}
	builder.WriteString("\n\n## Learner Answer\n")
	builder.WriteString(input.Submission)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseVerdict(content string) (Verdict, error) {
	var verdict Verdict
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return Verdict{}, fmt.Errorf("parse grading json: %w", err)
	}
	if verdict.Score < 0 {
		verdict.Score = 0
	}
	if verdict.Score > 1 {
		verdict.Score = 1
	}
	return verdict, nil
}
