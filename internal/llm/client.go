// Package llm talks to chat-completion providers for formsuggest.
// Every client issues exactly one request per call: no retries, no backoff.
package llm

import (
	"context"
	"errors"
)

// ErrNoAPIKey is returned when a request is attempted without credentials.
var ErrNoAPIKey = errors.New("API key not configured")

// ErrEmptyCompletion is returned when the provider answers without choices.
var ErrEmptyCompletion = errors.New("no completion returned")

// Request is a single system+user exchange.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	JSON        bool // ask the provider for a JSON object response
}

// Client is a completion provider.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Model() string
}

// ClientFunc adapts a function to Client. Used by tests and by hosts that
// route completions elsewhere.
type ClientFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Model reports a placeholder model name.
func (f ClientFunc) Model() string {
	return "func"
}
