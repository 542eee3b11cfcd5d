package popup

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"formsuggest/internal/field"
	"formsuggest/internal/suggest"
)

// Source is what caused a trigger.
type Source int

const (
	SourceFocus Source = iota
	SourceClick
	SourceShortcut
)

func (s Source) String() string {
	switch s {
	case SourceFocus:
		return "focus"
	case SourceClick:
		return "click"
	case SourceShortcut:
		return "shortcut"
	default:
		return "unknown"
	}
}

// Trigger asks for a popup on Field.
type Trigger struct {
	Source Source
	Field  field.Field
}

// ActionKind is a user action on an open popup.
type ActionKind int

const (
	ActionAccept ActionKind = iota
	ActionClose
	ActionEscape
	ActionClickOutside
)

func (k ActionKind) String() string {
	switch k {
	case ActionAccept:
		return "accept"
	case ActionClose:
		return "close"
	case ActionEscape:
		return "escape"
	case ActionClickOutside:
		return "click-outside"
	default:
		return "unknown"
	}
}

// Action targets the open popup. An empty PopupID matches whatever is open.
type Action struct {
	Kind    ActionKind
	PopupID string
}

// State of a popup instance.
type State string

const (
	StateClosed  State = "closed"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Position is relative to the field's viewport rect. Hosts add scroll.
type Position struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// View is everything a host needs to draw the popup.
type View struct {
	PopupID       string          `json:"popupId"`
	State         State           `json:"state"`
	FieldRef      string          `json:"fieldRef"`
	TypeLabel     string          `json:"typeLabel"`
	Question      string          `json:"question,omitempty"`
	Result        *suggest.Result `json:"result,omitempty"`
	Message       string          `json:"message,omitempty"`
	AcceptEnabled bool            `json:"acceptEnabled"`
	Position      Position        `json:"position"`
	ShortcutHint  string          `json:"shortcutHint,omitempty"`
}

// TypeLabel renders a field type as "Email Field".
func TypeLabel(fieldType string) string {
	t := strings.TrimSpace(fieldType)
	if t == "" {
		t = "text"
	}
	r, size := utf8.DecodeRuneInString(t)
	return string(unicode.ToUpper(r)) + t[size:] + " Field"
}

// ErrorMessage formats a failure for the Error view.
func ErrorMessage(err error) string {
	return "Failed to generate suggestion: " + err.Error()
}
