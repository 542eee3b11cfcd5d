package popup

import (
	"time"

	"formsuggest/internal/field"
	"formsuggest/internal/registry"
	"formsuggest/internal/suggest"

	"github.com/google/uuid"
)

// Session is the per-page state: the dismissed-field registry and the one
// popup that may be open. A new Session replaces the old one on navigation.
type Session struct {
	ID       string
	Started  time.Time
	Registry *registry.Registry

	popup *instance
}

func newSession() *Session {
	return &Session{
		ID:       uuid.NewString(),
		Started:  time.Now(),
		Registry: registry.New(),
	}
}

// instance is one popup lifetime. Results are matched to it by id.
type instance struct {
	id       string
	field    field.Field
	state    State
	question string
	result   suggest.Result
	message  string
}

func newInstance(f field.Field) *instance {
	return &instance{id: uuid.NewString(), field: f, state: StateLoading}
}
