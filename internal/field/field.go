// Package field models the form controls formsuggest can fill.
// Fields are owned by the host page; the core only reads their attributes
// and writes a value back through the host on explicit acceptance.
package field

import (
	"fmt"
	"math"
	"strings"
)

// Rect is a field's bounding box in viewport coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom returns the y coordinate of the lower edge.
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Field is a snapshot of an input or textarea element.
type Field struct {
	Ref         string `json:"ref,omitempty"` // host handle used to address the node again
	Tag         string `json:"tag"`           // input, textarea
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	ClassName   string `json:"className,omitempty"`
	Type        string `json:"type,omitempty"`
	Value       string `json:"value,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	AriaLabel   string `json:"ariaLabel,omitempty"`
	Title       string `json:"title,omitempty"`
	FormID      string `json:"formId,omitempty"`
	FormName    string `json:"formName,omitempty"`
	Rect        Rect   `json:"rect"`
	Visible     bool   `json:"visible"`
	Disabled    bool   `json:"disabled,omitempty"`
	InPopup     bool   `json:"inPopup,omitempty"`
}

// Identifier derives the stable key used for disabled-set membership.
// Present attributes are joined in fixed order; position is always included.
func (f Field) Identifier() string {
	parts := make([]string, 0, 6)
	if f.ID != "" {
		parts = append(parts, "id:"+f.ID)
	}
	if f.Name != "" {
		parts = append(parts, "name:"+f.Name)
	}
	if f.ClassName != "" {
		parts = append(parts, "class:"+f.ClassName)
	}
	parts = append(parts, fmt.Sprintf("pos:%d,%d", round(f.Rect.Left), round(f.Rect.Top)))
	if f.FormID != "" {
		parts = append(parts, "form:"+f.FormID)
	}
	if f.FormName != "" {
		parts = append(parts, "form:"+f.FormName)
	}
	return strings.Join(parts, "|")
}

// Attributes returns the markup attributes the classifier inspects.
// Empty values are omitted.
func (f Field) Attributes() map[string]string {
	attrs := make(map[string]string, 10)
	set := func(k, v string) {
		if v != "" {
			attrs[k] = v
		}
	}
	set("id", f.ID)
	set("name", f.Name)
	set("placeholder", f.Placeholder)
	set("aria-label", f.AriaLabel)
	set("title", f.Title)
	set("type", f.EffectiveType())
	set("class", f.ClassName)
	set("value", f.Value)
	set("formId", f.FormID)
	set("formName", f.FormName)
	return attrs
}

// EffectiveType returns the type the browser would report:
// "textarea" for textarea elements and "text" for untyped inputs.
func (f Field) EffectiveType() string {
	if strings.EqualFold(f.Tag, "textarea") {
		return "textarea"
	}
	if f.Type == "" {
		return "text"
	}
	return strings.ToLower(f.Type)
}

// Eligible reports whether the field may receive a suggestion popup.
func (f Field) Eligible() bool {
	if f.InPopup || f.Disabled || !f.Visible {
		return false
	}
	switch strings.ToLower(f.Tag) {
	case "textarea":
		return true
	case "input", "":
		return f.EffectiveType() != "hidden"
	default:
		return false
	}
}

// SameNode reports whether two snapshots describe the same element.
func (f Field) SameNode(other Field) bool {
	if f.Ref != "" || other.Ref != "" {
		return f.Ref == other.Ref
	}
	return f.Identifier() == other.Identifier()
}

// round matches browser Math.round: halves go toward +Inf.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
