// Package store persists the user's main content and the suggestions toggle.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Keys in the settings table.
const (
	KeyMainContent        = "mainContent"
	KeySuggestionsEnabled = "suggestionsEnabled"
)

// ErrNotFound is returned by KV.Get for a missing key.
var ErrNotFound = errors.New("key not found")

// KV is a string key-value store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Settings reads and writes the typed values on top of a KV.
type Settings struct {
	kv KV
}

// NewSettings wraps kv.
func NewSettings(kv KV) *Settings {
	return &Settings{kv: kv}
}

// MainContent returns the stored main content, or "" if none was saved.
func (s *Settings) MainContent(ctx context.Context) (string, error) {
	v, err := s.kv.Get(ctx, KeyMainContent)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read main content: %w", err)
	}
	return v, nil
}

// SetMainContent stores content with surrounding whitespace removed.
func (s *Settings) SetMainContent(ctx context.Context, content string) error {
	if err := s.kv.Set(ctx, KeyMainContent, strings.TrimSpace(content)); err != nil {
		return fmt.Errorf("write main content: %w", err)
	}
	return nil
}

// SuggestionsEnabled defaults to true when unset or unparsable.
func (s *Settings) SuggestionsEnabled(ctx context.Context) (bool, error) {
	v, err := s.kv.Get(ctx, KeySuggestionsEnabled)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("read suggestionsEnabled: %w", err)
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return true, nil
	}
	return enabled, nil
}

// SetSuggestionsEnabled stores the toggle.
func (s *Settings) SetSuggestionsEnabled(ctx context.Context, enabled bool) error {
	if err := s.kv.Set(ctx, KeySuggestionsEnabled, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("write suggestionsEnabled: %w", err)
	}
	return nil
}

// Close closes the underlying KV.
func (s *Settings) Close() error {
	return s.kv.Close()
}
