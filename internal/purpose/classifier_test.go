package purpose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Keywords(t *testing.T) {
	tests := []struct {
		name    string
		attrs   map[string]string
		purpose string
	}{
		{"email in name", map[string]string{"name": "email_address", "type": "text"}, "email address"},
		{"full name id", map[string]string{"id": "full_name"}, "name input"},
		{"phone placeholder", map[string]string{"placeholder": "Mobile number"}, "phone number"},
		{"birthday", map[string]string{"name": "birthday"}, "age or date of birth"},
		{"zip", map[string]string{"id": "zip"}, "address information"},
		{"password name", map[string]string{"name": "pwd"}, "password"},
		{"login", map[string]string{"name": "login"}, "username or account identifier"},
		{"search placeholder", map[string]string{"placeholder": "Search products", "type": "search"}, "search query"},
		{"feedback", map[string]string{"name": "feedback"}, "comment or feedback"},
		{"bio", map[string]string{"id": "bio"}, "biographical information"},
		{"employer", map[string]string{"name": "employer"}, "company or organization name"},
		{"occupation", map[string]string{"name": "occupation"}, "job title or position"},
		{"website", map[string]string{"name": "website"}, "website URL"},
		{"country", map[string]string{"name": "country"}, "country or region"},
		{"gender", map[string]string{"id": "gender"}, "gender information"},
		{"cvv", map[string]string{"name": "cvv"}, "payment information"},
		{"aria label only", map[string]string{"aria-label": "Your Email"}, "email address"},
		{"class attribute", map[string]string{"class": "input-cvv"}, "payment information"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.attrs)
			assert.Equal(t, tt.purpose, got.Purpose)
			assert.Equal(t, TierHigh, got.Confidence)
		})
	}
}

func TestClassify_TableOrderWins(t *testing.T) {
	got := Classify(map[string]string{"name": "email", "placeholder": "Your phone"})
	assert.Equal(t, "email address", got.Purpose)

	got = Classify(map[string]string{"id": "phone", "name": "fullname"})
	assert.Equal(t, "name input", got.Purpose)

	got = Classify(map[string]string{"name": "user_password"})
	assert.Equal(t, "password", got.Purpose, "password precedes username")
}

func TestClassify_TypeFallback(t *testing.T) {
	tests := []struct {
		name    string
		attrs   map[string]string
		purpose string
		tier    Tier
	}{
		{"tel", map[string]string{"type": "tel"}, "phone number", TierHigh},
		{"email type", map[string]string{"type": "EMAIL", "name": "x1"}, "email address", TierHigh},
		{"date", map[string]string{"type": "date", "name": "start"}, "date information", TierHigh},
		{"number", map[string]string{"type": "number", "name": "qty"}, "numeric information", TierMedium},
		{"checkbox", map[string]string{"type": "checkbox", "name": "agree"}, "yes/no selection", TierMedium},
		{"radio", map[string]string{"type": "radio", "name": "plan"}, "option selection", TierMedium},
		{"textarea", map[string]string{"type": "textarea", "name": "notes"}, "detailed text information", TierMedium},
		{"unknown type", map[string]string{"type": "color", "name": "fg"}, DefaultPurpose, TierLow},
		{"empty", map[string]string{}, DefaultPurpose, TierLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.attrs)
			assert.Equal(t, tt.purpose, got.Purpose)
			assert.Equal(t, tt.tier, got.Confidence)
		})
	}
}

func TestClassify_KeepsAttributes(t *testing.T) {
	attrs := map[string]string{"name": "email"}
	got := Classify(attrs)
	assert.Equal(t, attrs, got.Attributes)
}

func TestClassify_NilMap(t *testing.T) {
	got := Classify(nil)
	assert.Equal(t, DefaultPurpose, got.Purpose)
	assert.Equal(t, TierLow, got.Confidence)
}

func TestBuildHaystackDeterministic(t *testing.T) {
	attrs := map[string]string{"b": "Second", "a": "First", "c": "THIRD"}
	for i := 0; i < 10; i++ {
		assert.Equal(t, "first second third", buildHaystack(attrs))
	}
}
