package suggest

import (
	"context"

	"formsuggest/internal/extract"
	"formsuggest/internal/field"
	"formsuggest/internal/purpose"
	"formsuggest/internal/question"
)

// Page is the document a field lives in.
type Page interface {
	extract.Document
	question.LabelSource
}

// BuildInput classifies f, resolves its question and extracts the page
// excerpt. gen may be nil.
func BuildInput(ctx context.Context, f field.Field, page Page, ex *extract.Extractor, gen question.Generator, mainContent string) InputContext {
	if ex == nil {
		ex = extract.NewExtractor(extract.Options{})
	}
	p := purpose.Classify(f.Attributes())
	return InputContext{
		Question:     question.NewResolver(page, gen).Resolve(ctx, f),
		Purpose:      p.Purpose,
		Confidence:   p.Confidence,
		Type:         f.EffectiveType(),
		CurrentValue: f.Value,
		PageExcerpt:  ex.Extract(ctx, page),
		MainContent:  mainContent,
	}
}
