// Package question determines the human-readable question a form field asks.
package question

import (
	"context"
	"strings"

	"formsuggest/internal/field"
	"formsuggest/internal/logging"
	"formsuggest/internal/purpose"
)

// LabelSource finds the text of a <label for=id> element.
type LabelSource interface {
	LabelFor(ctx context.Context, id string) (string, error)
}

// Generator produces a question from a purpose when markup has none.
type Generator interface {
	GenerateQuestion(ctx context.Context, purpose, fieldType string) string
}

// Fallback is the literal question used when generation fails.
func Fallback(purposeLabel string) string {
	return "Please provide " + purposeLabel
}

// Resolver walks the label, placeholder, name, aria-label chain and falls
// back to a generated question.
type Resolver struct {
	labels    LabelSource
	generator Generator
}

// NewResolver creates a resolver. Either dependency may be nil.
func NewResolver(labels LabelSource, generator Generator) *Resolver {
	return &Resolver{labels: labels, generator: generator}
}

// Resolve returns the first non-empty question for f.
func (r *Resolver) Resolve(ctx context.Context, f field.Field) string {
	if q := r.fromMarkup(ctx, f); q != "" {
		return q
	}

	p := purpose.Classify(f.Attributes())
	if r.generator != nil {
		if q := strings.TrimSpace(r.generator.GenerateQuestion(ctx, p.Purpose, f.EffectiveType())); q != "" {
			return q
		}
	}
	return Fallback(p.Purpose)
}

func (r *Resolver) fromMarkup(ctx context.Context, f field.Field) string {
	if f.ID != "" && r.labels != nil {
		label, err := r.labels.LabelFor(ctx, f.ID)
		if err != nil {
			logging.PopupDebug("question: label lookup for %s failed: %v", f.ID, err)
		} else if label = strings.TrimSpace(label); label != "" {
			return label
		}
	}
	for _, candidate := range []string{f.Placeholder, f.Name, f.AriaLabel} {
		if c := strings.TrimSpace(candidate); c != "" {
			return c
		}
	}
	return ""
}
