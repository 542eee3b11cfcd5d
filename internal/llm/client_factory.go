package llm

import (
	"fmt"

	"formsuggest/internal/config"
)

// NewClientFromConfig builds the provider selected in cfg.LLM.
// A missing API key is not an error here.
func NewClientFromConfig(cfg *config.Config) (Client, error) {
	llmCfg := cfg.LLM
	switch llmCfg.Provider {
	case config.ProviderGroq, config.ProviderOpenAI, "":
		return NewOpenAIClientWithConfig(OpenAIConfig{
			APIKey:  llmCfg.APIKey,
			BaseURL: llmCfg.ResolvedBaseURL(),
			Model:   llmCfg.ResolvedModel(),
			Timeout: cfg.GetLLMTimeout(),
		}), nil
	case config.ProviderGemini:
		return NewGeminiClient(GeminiConfig{
			APIKey:  llmCfg.APIKey,
			BaseURL: llmCfg.BaseURL,
			Model:   llmCfg.ResolvedModel(),
			Timeout: cfg.GetLLMTimeout(),
		}), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmCfg.Provider)
	}
}
