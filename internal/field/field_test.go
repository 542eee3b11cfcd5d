package field

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		want  string
	}{
		{
			name:  "all parts",
			field: Field{ID: "email", Name: "user_email", ClassName: "form-control", Rect: Rect{Left: 10.4, Top: 20.5}, FormID: "signup", FormName: "register"},
			want:  "id:email|name:user_email|class:form-control|pos:10,21|form:signup|form:register",
		},
		{
			name:  "position only",
			field: Field{Rect: Rect{Left: 0, Top: 99.49}},
			want:  "pos:0,99",
		},
		{
			name:  "negative half rounds up",
			field: Field{Name: "q", Rect: Rect{Left: -2.5, Top: 3}},
			want:  "name:q|pos:-2,3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.field.Identifier())
		})
	}
}

func TestIdentifierStable(t *testing.T) {
	f := Field{ID: "a", Name: "b", Rect: Rect{Left: 1.2, Top: 3.4}}
	assert.Equal(t, f.Identifier(), f.Identifier())

	moved := f
	moved.Rect.Top = 40
	assert.NotEqual(t, f.Identifier(), moved.Identifier())
}

func TestAttributes(t *testing.T) {
	f := Field{Tag: "textarea", Name: "bio", Placeholder: "Tell us", Value: "x", FormName: "profile"}
	want := map[string]string{
		"name":        "bio",
		"placeholder": "Tell us",
		"type":        "textarea",
		"value":       "x",
		"formName":    "profile",
	}
	if diff := cmp.Diff(want, f.Attributes()); diff != "" {
		t.Errorf("Attributes() mismatch (-want +got):\n%s", diff)
	}
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		want  bool
	}{
		{"visible text input", Field{Tag: "input", Type: "text", Visible: true}, true},
		{"untyped input", Field{Tag: "input", Visible: true}, true},
		{"textarea", Field{Tag: "textarea", Visible: true}, true},
		{"hidden type", Field{Tag: "input", Type: "hidden", Visible: true}, false},
		{"not visible", Field{Tag: "input", Type: "text"}, false},
		{"disabled", Field{Tag: "input", Visible: true, Disabled: true}, false},
		{"inside popup", Field{Tag: "input", Visible: true, InPopup: true}, false},
		{"select", Field{Tag: "select", Visible: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.field.Eligible())
		})
	}
}

func TestSameNode(t *testing.T) {
	a := Field{Ref: "1", ID: "x"}
	b := Field{Ref: "1", ID: "x", Value: "changed"}
	c := Field{Ref: "2", ID: "x"}
	assert.True(t, a.SameNode(b))
	assert.False(t, a.SameNode(c))

	noRef := Field{ID: "x", Rect: Rect{Left: 1}}
	assert.True(t, noRef.SameNode(Field{ID: "x", Rect: Rect{Left: 1}}))
}
