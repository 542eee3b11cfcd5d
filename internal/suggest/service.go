// Package suggest asks a completion provider for a form-field answer and
// turns whatever comes back into a renderable Result.
package suggest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"formsuggest/internal/llm"
	"formsuggest/internal/logging"
	"formsuggest/internal/purpose"
	"formsuggest/internal/question"
)

const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 100

	maxDiagnosticRunes = 200
)

// InputContext is everything the model sees for one field.
type InputContext struct {
	Question     string       `json:"question"`
	Purpose      string       `json:"purpose"`
	Confidence   purpose.Tier `json:"purposeConfidence"`
	Type         string       `json:"type"`
	CurrentValue string       `json:"currentValue"`
	PageExcerpt  string       `json:"pageExcerpt"`
	MainContent  string       `json:"mainContent"`
}

// Result is the answer shown in the popup.
type Result struct {
	AnswerText  string  `json:"answerText"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// Failed reports whether r is the zero-confidence error form.
func (r Result) Failed() bool {
	return r.AnswerText == "" && r.Confidence == 0
}

// Fallback builds the zero-confidence result carrying a short diagnostic.
func Fallback(diagnostic string) Result {
	return Result{Explanation: truncateRunes(diagnostic, maxDiagnosticRunes)}
}

// Service produces suggestions and generated questions.
type Service struct {
	client      llm.Client
	temperature float64
	maxTokens   int
}

// Option configures a Service.
type Option func(*Service)

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(s *Service) { s.temperature = t }
}

// WithMaxTokens overrides the output token ceiling.
func WithMaxTokens(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// NewService creates a service. A nil client makes every call degrade to
// the fallback result.
func NewService(client llm.Client, opts ...Option) *Service {
	s := &Service{
		client:      client,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ question.Generator = (*Service)(nil)

// Suggest never returns an error. Every failure becomes Fallback.
func (s *Service) Suggest(ctx context.Context, in InputContext) (result Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logging.Get(logging.CategorySuggest).Error("suggest panicked: %v", r)
			result = Fallback(diagnostic(fmt.Errorf("panic: %v", r)))
		}
	}()

	if s.client == nil {
		return Fallback(diagnostic(llm.ErrNoAPIKey))
	}

	logging.SuggestDebug("requesting suggestion: purpose=%q question=%q main=%d page=%d",
		in.Purpose, in.Question, len(in.MainContent), len(in.PageExcerpt))

	raw, err := s.client.Complete(ctx, llm.Request{
		System:      suggestionSystemPrompt,
		User:        buildSuggestionPrompt(in),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		JSON:        true,
	})
	if err != nil {
		logging.Get(logging.CategorySuggest).Warn("completion failed after %v: %v", time.Since(start), err)
		return Fallback(diagnostic(err))
	}

	res, stage, err := ParseResponse(raw)
	if err != nil {
		logging.Get(logging.CategorySuggest).Warn("unusable response (%d bytes): %v", len(raw), err)
		return Fallback(diagnostic(err))
	}

	logging.Suggest("suggestion ready via %s parse in %v (confidence %.0f)", stage, time.Since(start), res.Confidence)
	return res
}

// GenerateQuestion asks the model for a bare question. On any failure it
// returns "Please provide <purpose>".
func (s *Service) GenerateQuestion(ctx context.Context, purposeLabel, fieldType string) (q string) {
	defer func() {
		if r := recover(); r != nil {
			logging.Get(logging.CategorySuggest).Error("question generation panicked: %v", r)
			q = question.Fallback(purposeLabel)
		}
	}()

	if s.client == nil {
		return question.Fallback(purposeLabel)
	}

	raw, err := s.client.Complete(ctx, llm.Request{
		System:      questionSystemPrompt,
		User:        buildQuestionPrompt(purposeLabel, fieldType),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		logging.SuggestDebug("question generation failed: %v", err)
		return question.Fallback(purposeLabel)
	}

	q = strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), "\"'“”"))
	if q == "" {
		return question.Fallback(purposeLabel)
	}
	return q
}

func diagnostic(err error) string {
	return "Failed to generate a valid response: " + err.Error()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
