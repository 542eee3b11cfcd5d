package browser

import (
	"formsuggest/internal/field"
	"formsuggest/internal/popup"
)

// rawField is what the page scripts report for one element.
type rawField struct {
	Ref         string     `json:"ref"`
	Tag         string     `json:"tag"`
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ClassName   string     `json:"className"`
	Type        string     `json:"type"`
	Value       string     `json:"value"`
	Placeholder string     `json:"placeholder"`
	AriaLabel   string     `json:"ariaLabel"`
	Title       string     `json:"title"`
	FormID      string     `json:"formId"`
	FormName    string     `json:"formName"`
	Rect        field.Rect `json:"rect"`
	Disabled    bool       `json:"disabled"`
	InPopup     bool       `json:"inPopup"`
	AriaHidden  bool       `json:"ariaHidden"`
	Style       styleInfo  `json:"style"`
}

func (r rawField) toField() field.Field {
	return field.Field{
		Ref:         r.Ref,
		Tag:         r.Tag,
		ID:          r.ID,
		Name:        r.Name,
		ClassName:   r.ClassName,
		Type:        r.Type,
		Value:       r.Value,
		Placeholder: r.Placeholder,
		AriaLabel:   r.AriaLabel,
		Title:       r.Title,
		FormID:      r.FormID,
		FormName:    r.FormName,
		Rect:        r.Rect,
		Visible:     len(concealmentReasons(r)) == 0,
		Disabled:    r.Disabled,
		InPopup:     r.InPopup,
	}
}

func toFields(raw []rawField) []field.Field {
	out := make([]field.Field, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toField())
	}
	return out
}

// pageEvent is one entry of the in-page event buffer.
type pageEvent struct {
	Type    string     `json:"type"` // trigger, action, nodes
	Source  string     `json:"source"`
	Action  string     `json:"action"`
	PopupID string     `json:"popupId"`
	Field   *rawField  `json:"field"`
	Fields  []rawField `json:"fields"`
	TS      float64    `json:"ts"`
}

func parseSource(s string) (popup.Source, bool) {
	switch s {
	case "focus":
		return popup.SourceFocus, true
	case "click":
		return popup.SourceClick, true
	case "shortcut":
		return popup.SourceShortcut, true
	}
	return 0, false
}

func parseAction(s string) (popup.ActionKind, bool) {
	switch s {
	case "accept":
		return popup.ActionAccept, true
	case "close":
		return popup.ActionClose, true
	case "escape":
		return popup.ActionEscape, true
	case "click-outside":
		return popup.ActionClickOutside, true
	}
	return 0, false
}
