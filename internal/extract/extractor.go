// Package extract produces a bounded plain-text excerpt of the page around
// a form, used as fallback context for suggestions.
package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"formsuggest/internal/logging"
)

// DefaultMaxChars bounds the excerpt so prompts stay small.
const DefaultMaxChars = 2000

// Ellipsis is appended when the excerpt is truncated.
const Ellipsis = "…"

// DefaultSelectors are tried in order; the first with text wins.
var DefaultSelectors = []string{
	"main",
	"article",
	`[role="main"]`,
	".main-content",
	"#main-content",
	".content",
	"#content",
}

// Document is the read-only view of a page the extractor needs.
type Document interface {
	// TextOf returns the text content of the first element matching selector,
	// or "" when nothing matches.
	TextOf(ctx context.Context, selector string) (string, error)
	// VisibleBodyText returns the body text with script, style, noscript and
	// aria-hidden subtrees removed.
	VisibleBodyText(ctx context.Context) (string, error)
}

// Options configures an Extractor.
type Options struct {
	MaxChars  int
	Selectors []string
}

// Extractor extracts page excerpts.
type Extractor struct {
	maxChars  int
	selectors []string
}

// NewExtractor creates an extractor, filling unset options with defaults.
func NewExtractor(opts Options) *Extractor {
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if len(opts.Selectors) == 0 {
		opts.Selectors = DefaultSelectors
	}
	return &Extractor{maxChars: opts.MaxChars, selectors: opts.Selectors}
}

// Extract uses the default options.
func Extract(ctx context.Context, doc Document) string {
	return NewExtractor(Options{}).Extract(ctx, doc)
}

// Extract returns the normalized, truncated excerpt. It never fails;
// document errors degrade to the next source and finally to "".
func (e *Extractor) Extract(ctx context.Context, doc Document) string {
	if doc == nil {
		return ""
	}

	text := ""
	for _, sel := range e.selectors {
		t, err := doc.TextOf(ctx, sel)
		if err != nil {
			logging.SuggestDebug("extract: selector %s failed: %v", sel, err)
			continue
		}
		if t = Normalize(t); t != "" {
			text = t
			break
		}
	}

	if text == "" {
		body, err := doc.VisibleBodyText(ctx)
		if err != nil {
			logging.SuggestDebug("extract: body text failed: %v", err)
			return ""
		}
		text = Normalize(body)
	}

	return Truncate(text, e.maxChars)
}

// Normalize collapses whitespace runs into single spaces and trims.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate caps s at max runes, appending Ellipsis when it cuts.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + Ellipsis
}
