package popup

import (
	"context"

	"formsuggest/internal/extract"
	"formsuggest/internal/field"
	"formsuggest/internal/question"
)

// Events is how a host reports user activity. Callbacks may be invoked from
// any goroutine.
type Events interface {
	OnTrigger(func(Trigger))
	OnAction(func(Action))
	OnDynamicNodesAdded(func([]field.Field))
	OnNavigate(func())
}

// Surface is what the controller asks a host to do. Implementations must
// not call back into the Controller synchronously.
type Surface interface {
	// Scan lists the fields currently in the document.
	Scan(ctx context.Context) ([]field.Field, error)
	// Watch attaches trigger listeners to fields.
	Watch(ctx context.Context, fields []field.Field) error
	// Render creates or updates the single popup node.
	Render(ctx context.Context, view View) error
	// Remove deletes the popup node if it still shows popupID.
	Remove(ctx context.Context, popupID string) error
	// Fill writes value into the field and dispatches input and change.
	Fill(ctx context.Context, f field.Field, value string) error
	// Refresh re-reads the field, including its current value.
	Refresh(ctx context.Context, f field.Field) (field.Field, error)
}

// Host is a complete environment adapter: a live browser page, a parsed
// HTML file, or a terminal.
type Host interface {
	Events
	Surface
	extract.Document
	question.LabelSource
}
