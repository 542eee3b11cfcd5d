package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"formsuggest/internal/field"
	"formsuggest/internal/htmldoc"
	"formsuggest/internal/popup"
)

// PreviewRef addresses the previewed field when it is not part of a page.
const PreviewRef = "preview"

type viewMsg struct{ view popup.View }

type removedMsg struct{ popupID string }

type filledMsg struct {
	ref   string
	value string
}

// Host serves a single field to the popup controller. Page reads go to an
// htmldoc.Document; popup updates are queued as tea messages.
type Host struct {
	doc    *htmldoc.Document
	events chan interface{}

	mu       sync.Mutex
	target   field.Field
	watched  []field.Field
	onAction func(popup.Action)
	onTrig   func(popup.Trigger)
}

// NewHost wraps doc, which may be nil, around the field being previewed.
func NewHost(doc *htmldoc.Document, target field.Field) *Host {
	if doc == nil {
		doc, _ = htmldoc.ParseString("")
	}
	if target.Ref == "" {
		target.Ref = PreviewRef
	}
	return &Host{doc: doc, target: target, events: make(chan interface{}, 64)}
}

// Target returns the previewed field with its current value.
func (h *Host) Target() field.Field {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.target
}

// Watched returns the fields the controller attached to.
func (h *Host) Watched() []field.Field {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]field.Field(nil), h.watched...)
}

func (h *Host) OnTrigger(fn func(popup.Trigger)) {
	h.mu.Lock()
	h.onTrig = fn
	h.mu.Unlock()
}

func (h *Host) OnAction(fn func(popup.Action)) {
	h.mu.Lock()
	h.onAction = fn
	h.mu.Unlock()
}

// Terminal pages never grow or navigate.
func (h *Host) OnDynamicNodesAdded(func([]field.Field)) {}
func (h *Host) OnNavigate(func())                       {}

// Trigger opens the popup for the target as if the shortcut was pressed.
func (h *Host) Trigger() {
	h.mu.Lock()
	fn, f := h.onTrig, h.target
	h.mu.Unlock()
	if fn != nil {
		fn(popup.Trigger{Source: popup.SourceShortcut, Field: f})
	}
}

// Act forwards a key press to the controller.
func (h *Host) Act(a popup.Action) {
	h.mu.Lock()
	fn := h.onAction
	h.mu.Unlock()
	if fn != nil {
		fn(a)
	}
}

func (h *Host) Scan(context.Context) ([]field.Field, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fields := []field.Field{h.target}
	for _, f := range h.doc.Fields() {
		if f.Ref != h.target.Ref {
			fields = append(fields, f)
		}
	}
	return fields, nil
}

func (h *Host) Watch(_ context.Context, fields []field.Field) error {
	h.mu.Lock()
	h.watched = append(h.watched, fields...)
	h.mu.Unlock()
	return nil
}

func (h *Host) Render(_ context.Context, view popup.View) error {
	return h.push(viewMsg{view: view})
}

func (h *Host) Remove(_ context.Context, popupID string) error {
	return h.push(removedMsg{popupID: popupID})
}

func (h *Host) Fill(_ context.Context, f field.Field, value string) error {
	h.mu.Lock()
	if f.Ref != h.target.Ref {
		h.mu.Unlock()
		return fmt.Errorf("unknown field %q", f.Ref)
	}
	h.target.Value = value
	h.mu.Unlock()

	if f.Ref != PreviewRef {
		if err := h.doc.SetValue(f.Ref, value); err != nil {
			return err
		}
	}
	return h.push(filledMsg{ref: f.Ref, value: value})
}

func (h *Host) Refresh(_ context.Context, f field.Field) (field.Field, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f.Ref == h.target.Ref {
		return h.target, nil
	}
	if got, ok := h.doc.Field(f.Ref); ok {
		return got, nil
	}
	return field.Field{}, fmt.Errorf("unknown field %q", f.Ref)
}

func (h *Host) TextOf(ctx context.Context, selector string) (string, error) {
	return h.doc.TextOf(ctx, selector)
}

func (h *Host) VisibleBodyText(ctx context.Context) (string, error) {
	return h.doc.VisibleBodyText(ctx)
}

func (h *Host) LabelFor(ctx context.Context, id string) (string, error) {
	return h.doc.LabelFor(ctx, id)
}

// push never blocks the controller, which holds its lock while rendering.
func (h *Host) push(msg interface{}) error {
	select {
	case h.events <- msg:
		return nil
	default:
		return fmt.Errorf("tui event queue full (%s)", strings.TrimPrefix(fmt.Sprintf("%T", msg), "tui."))
	}
}

var _ popup.Host = (*Host)(nil)
