package suggest

import (
	"fmt"
	"strings"
)

const suggestionSystemPrompt = `You are a helpful assistant that writes answers for web form fields.
Respond with ONLY a JSON object of exactly this shape:
{"answerText": "<a direct, concise answer the user can put into the field>", "confidence": <a number from 0 to 100>, "explanation": "<one short sentence on why this answer fits>"}

Do not write anything outside the JSON object.
Keep answerText short enough to fit the field.
If the user already typed something (current value), build on it.
If main content is provided, prefer it over page content.
Use page content only when main content is empty or unrelated.`

const questionSystemPrompt = `You write clear, concise questions for web form fields.
Respond with ONLY the question text. No JSON, no quotes, no explanation.
The question should read naturally and end with a question mark when appropriate.`

func buildSuggestionPrompt(in InputContext) string {
	var sb strings.Builder
	sb.WriteString("Write a direct, usable answer for this form field.\n\n")
	fmt.Fprintf(&sb, "Question: %s\n", in.Question)
	fmt.Fprintf(&sb, "Field purpose: %s\n", in.Purpose)
	if in.Type != "" {
		fmt.Fprintf(&sb, "Field type: %s\n", in.Type)
	}
	fmt.Fprintf(&sb, "Current value: %q\n\n", in.CurrentValue)

	sb.WriteString("Main content (priority):\n")
	sb.WriteString(orNone(in.MainContent))
	sb.WriteString("\n\nPage content (fallback):\n")
	sb.WriteString(orNone(in.PageExcerpt))
	sb.WriteString("\n")
	return sb.String()
}

func buildQuestionPrompt(purpose, fieldType string) string {
	return fmt.Sprintf("Write a clear, natural question for a form field whose purpose is %q.\nThe field type is: %s\n\nReturn ONLY the question text.", purpose, fieldType)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
