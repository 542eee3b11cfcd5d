// Package registry tracks fields the user has dismissed for the session and
// the field that currently has focus.
package registry

import (
	"sync"

	"formsuggest/internal/field"
)

// Registry is keyed by field.Identifier. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	disabled map[string]struct{}
	active   *field.Field
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{disabled: make(map[string]struct{})}
}

// IsDisabled reports whether suggestions were suppressed for f.
func (r *Registry) IsDisabled(f field.Field) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.disabled[f.Identifier()]
	return ok
}

// Disable suppresses suggestions for f until Enable or Reset.
func (r *Registry) Disable(f field.Field) {
	r.mu.Lock()
	r.disabled[f.Identifier()] = struct{}{}
	r.mu.Unlock()
}

// Enable lifts a previous Disable.
func (r *Registry) Enable(f field.Field) {
	r.mu.Lock()
	delete(r.disabled, f.Identifier())
	r.mu.Unlock()
}

// Disabled returns the number of suppressed fields.
func (r *Registry) Disabled() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.disabled)
}

// SetActive records the field that last received focus.
func (r *Registry) SetActive(f field.Field) {
	r.mu.Lock()
	r.active = &f
	r.mu.Unlock()
}

// Active returns the focused field, if any.
func (r *Registry) Active() (field.Field, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == nil {
		return field.Field{}, false
	}
	return *r.active, true
}

// Reset forgets everything.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.disabled = make(map[string]struct{})
	r.active = nil
	r.mu.Unlock()
}
