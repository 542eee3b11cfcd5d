package server

import (
	"formsuggest/internal/field"
	"formsuggest/internal/purpose"
	"formsuggest/internal/suggest"
)

type ClassifyRequest struct {
	Attributes map[string]string `json:"attributes" validate:"required"`
}

type QuestionRequest struct {
	Purpose string `json:"purpose" validate:"required"`
	Type    string `json:"type"`
}

type QuestionResponse struct {
	Question string `json:"question"`
}

// SuggestRequest carries the field and, optionally, the page HTML it sits
// in. Question overrides resolution when set.
type SuggestRequest struct {
	Field    field.Field `json:"field" validate:"required"`
	HTML     string      `json:"html"`
	Question string      `json:"question"`
}

type SuggestResponse struct {
	Input  suggest.InputContext `json:"input"`
	Result suggest.Result       `json:"result"`
}

type ContentRequest struct {
	MainContent string `json:"mainContent" validate:"max=100000"`
}

type ContentResponse struct {
	MainContent string `json:"mainContent"`
}

type SettingsRequest struct {
	SuggestionsEnabled *bool `json:"suggestionsEnabled" validate:"required"`
}

type SettingsResponse struct {
	SuggestionsEnabled bool `json:"suggestionsEnabled"`
}

type ClassifyResponse = purpose.Result
