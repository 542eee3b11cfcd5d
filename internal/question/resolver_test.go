package question

import (
	"context"
	"errors"
	"testing"

	"formsuggest/internal/field"

	"github.com/stretchr/testify/assert"
)

type labels map[string]string

func (l labels) LabelFor(_ context.Context, id string) (string, error) {
	if id == "broken" {
		return "", errors.New("detached")
	}
	return l[id], nil
}

type generatorFunc func(purpose, fieldType string) string

func (g generatorFunc) GenerateQuestion(_ context.Context, purpose, fieldType string) string {
	return g(purpose, fieldType)
}

func TestResolve_Chain(t *testing.T) {
	noGen := generatorFunc(func(string, string) string {
		t.Fatal("generator must not be called when markup has a question")
		return ""
	})
	r := NewResolver(labels{"email": "  Work email  "}, noGen)
	ctx := context.Background()

	tests := []struct {
		name  string
		field field.Field
		want  string
	}{
		{"label wins over placeholder", field.Field{ID: "email", Placeholder: "you@example.com"}, "Work email"},
		{"placeholder", field.Field{ID: "nolabel", Placeholder: "Your city", Name: "city"}, "Your city"},
		{"name", field.Field{Name: "company", AriaLabel: "Company"}, "company"},
		{"aria-label", field.Field{AriaLabel: "Start date"}, "Start date"},
		{"label error falls through", field.Field{ID: "broken", Name: "zip"}, "zip"},
		{"whitespace placeholder skipped", field.Field{Placeholder: "   ", Name: "q"}, "q"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(ctx, tt.field))
		})
	}
}

func TestResolve_GeneratedQuestion(t *testing.T) {
	var gotPurpose, gotType string
	gen := generatorFunc(func(purpose, fieldType string) string {
		gotPurpose, gotType = purpose, fieldType
		return " What is your phone number? "
	})
	r := NewResolver(labels{}, gen)

	q := r.Resolve(context.Background(), field.Field{Tag: "input", Type: "tel"})
	assert.Equal(t, "What is your phone number?", q)
	assert.Equal(t, "phone number", gotPurpose)
	assert.Equal(t, "tel", gotType)
}

func TestResolve_FallbackLiteral(t *testing.T) {
	empty := generatorFunc(func(string, string) string { return "" })
	r := NewResolver(nil, empty)
	assert.Equal(t, "Please provide detailed text information", r.Resolve(context.Background(), field.Field{Tag: "textarea"}))

	r = NewResolver(nil, nil)
	assert.Equal(t, "Please provide text information", r.Resolve(context.Background(), field.Field{Tag: "input"}))
}
