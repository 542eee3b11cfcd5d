package suggest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrNotRecoverable means no usable answer could be read from the model output.
var ErrNotRecoverable = errors.New("response not recoverable")

// RawTextExplanation is attached to answers taken verbatim from non-JSON output.
const RawTextExplanation = "Fallback response - direct text from API"

// RawTextConfidence is the fixed confidence of a raw-text answer.
const RawTextConfidence = 50

// Stage names the parser layer that produced a result.
type Stage int

const (
	StageNone Stage = iota
	StageStrict
	StageEmbedded
	StageRawText
)

func (s Stage) String() string {
	switch s {
	case StageStrict:
		return "strict"
	case StageEmbedded:
		return "embedded"
	case StageRawText:
		return "raw-text"
	default:
		return "none"
	}
}

// wireResult mirrors the JSON object the model is asked to produce.
// Confidence is a pointer so a missing value is distinguishable from 0.
type wireResult struct {
	AnswerText  string   `json:"answerText" validate:"required"`
	Confidence  *float64 `json:"confidence" validate:"required"`
	Explanation string   `json:"explanation" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseResponse reads a model response through the strict, embedded and
// raw-text layers in that order.
func ParseResponse(raw string) (Result, Stage, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{}, StageNone, fmt.Errorf("%w: empty response", ErrNotRecoverable)
	}

	if r, err := parseStrict(trimmed); err == nil {
		return r, StageStrict, nil
	}

	// Try each top-level object in turn; report the first failure.
	var firstErr error
	rest := trimmed
	for {
		obj, end, ok := findJSONObject(rest)
		if !ok {
			break
		}
		r, err := parseStrict(obj)
		if err == nil {
			return r, StageEmbedded, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		rest = rest[end:]
	}
	if firstErr != nil {
		return Result{}, StageNone, fmt.Errorf("%w: embedded object: %v", ErrNotRecoverable, firstErr)
	}
	return Result{AnswerText: trimmed, Confidence: RawTextConfidence, Explanation: RawTextExplanation}, StageRawText, nil
}

func parseStrict(payload string) (Result, error) {
	var w wireResult
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return Result{}, fmt.Errorf("decode: %w", err)
	}
	if err := validate.Struct(w); err != nil {
		return Result{}, fmt.Errorf("validate: %w", err)
	}
	return Result{
		AnswerText:  w.AnswerText,
		Confidence:  clampConfidence(*w.Confidence),
		Explanation: w.Explanation,
	}, nil
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	default:
		return c
	}
}

// findJSONObject returns the first balanced top-level {...} in input and the
// offset just past it, ignoring braces inside string literals.
func findJSONObject(input string) (string, int, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(input); i++ {
		ch := input[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' && depth > 0 {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				return input[start : i+1], i + 1, true
			}
		}
	}
	return "", 0, false
}
