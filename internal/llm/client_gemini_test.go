package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiClient_NoAPIKey(t *testing.T) {
	client := NewGeminiClient(GeminiConfig{})
	_, err := client.Complete(context.Background(), Request{User: "x"})
	assert.True(t, errors.Is(err, ErrNoAPIKey))
	assert.Equal(t, "gemini-2.5-flash", client.Model())
}

func TestGeminiClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasSystem := body["systemInstruction"]
		assert.True(t, hasSystem)

		genCfg, ok := body["generationConfig"].(map[string]interface{})
		require.True(t, ok, "generationConfig missing: %v", body)
		assert.EqualValues(t, 100, genCfg["maxOutputTokens"])
		thinking, ok := genCfg["thinkingConfig"].(map[string]interface{})
		require.True(t, ok, "thinkingConfig missing: %v", genCfg)
		budget, ok := thinking["thinkingBudget"]
		require.True(t, ok, "thinkingBudget missing: %v", thinking)
		assert.EqualValues(t, 0, budget)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"answerText\":\"Ada\",\"confidence\":80,\"explanation\":\"x\"}"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "g-key", BaseURL: server.URL, Model: "gemini-test"})
	out, err := client.Complete(context.Background(), Request{System: "sys", User: "usr", Temperature: 0.3, MaxTokens: 100, JSON: true})
	require.NoError(t, err)
	assert.Contains(t, out, `"answerText":"Ada"`)
}
