// Package purpose infers what a form field is asking for from its markup.
package purpose

import (
	"sort"
	"strings"
)

// Tier is a coarse confidence level for a classification.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// DefaultPurpose is returned when neither keywords nor type match.
const DefaultPurpose = "text information"

// Result is the outcome of one classification.
type Result struct {
	Purpose    string            `json:"purpose"`
	Confidence Tier              `json:"confidence"`
	Attributes map[string]string `json:"attributes"`
}

type category struct {
	keywords []string
	purpose  string
}

// Table order is the priority policy: the first matching category wins.
var categories = []category{
	{[]string{"name", "fullname", "full-name", "full_name", "firstname", "lastname"}, "name input"},
	{[]string{"email", "e-mail", "mail"}, "email address"},
	{[]string{"phone", "mobile", "cell", "telephone"}, "phone number"},
	{[]string{"age", "years", "birthday", "birth", "dob", "date of birth"}, "age or date of birth"},
	{[]string{"address", "street", "city", "state", "zip", "postal"}, "address information"},
	{[]string{"password", "pwd", "pass"}, "password"},
	{[]string{"username", "user", "login", "account"}, "username or account identifier"},
	{[]string{"search", "find", "query", "lookup"}, "search query"},
	{[]string{"comment", "message", "feedback", "review"}, "comment or feedback"},
	{[]string{"bio", "about", "introduction", "profile", "description"}, "biographical information"},
	{[]string{"company", "organization", "business", "employer"}, "company or organization name"},
	{[]string{"title", "position", "job", "role", "occupation"}, "job title or position"},
	{[]string{"website", "url", "site", "homepage"}, "website URL"},
	{[]string{"country", "nation", "region"}, "country or region"},
	{[]string{"gender", "sex"}, "gender information"},
	{[]string{"payment", "credit", "card", "cvv", "expiry", "expiration"}, "payment information"},
}

type typeRule struct {
	fieldType string
	purpose   string
	tier      Tier
}

var typeRules = []typeRule{
	{"email", "email address", TierHigh},
	{"tel", "phone number", TierHigh},
	{"password", "password", TierHigh},
	{"search", "search query", TierHigh},
	{"url", "website URL", TierHigh},
	{"date", "date information", TierHigh},
	{"number", "numeric information", TierMedium},
	{"checkbox", "yes/no selection", TierMedium},
	{"radio", "option selection", TierMedium},
	{"textarea", "detailed text information", TierMedium},
}

// Classify maps a field's attribute map to a purpose. It is total and pure.
func Classify(attrs map[string]string) Result {
	name := strings.ToLower(attrs["name"])
	id := strings.ToLower(attrs["id"])
	placeholder := strings.ToLower(attrs["placeholder"])
	haystack := buildHaystack(attrs)

	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(name, kw) ||
				strings.Contains(id, kw) ||
				strings.Contains(placeholder, kw) ||
				strings.Contains(haystack, kw) {
				return Result{Purpose: c.purpose, Confidence: TierHigh, Attributes: attrs}
			}
		}
	}

	fieldType := strings.ToLower(strings.TrimSpace(attrs["type"]))
	for _, r := range typeRules {
		if fieldType == r.fieldType {
			return Result{Purpose: r.purpose, Confidence: r.tier, Attributes: attrs}
		}
	}

	return Result{Purpose: DefaultPurpose, Confidence: TierLow, Attributes: attrs}
}

// buildHaystack joins lower-cased attribute values in key order.
func buildHaystack(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, strings.ToLower(attrs[k]))
	}
	return strings.Join(values, " ")
}
