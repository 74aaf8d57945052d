package llm

import (
	"errors"
	"fmt"
	"strings"
)

const (
	ProviderNone     = "none"
	ProviderOllama   = "ollama"
	ProviderLMStudio = "lmstudio"
	ProviderOpenAI   = "openai"
)

const defaultTemperature = 0.2

// ErrDisabled is returned when the provider is "none".
var ErrDisabled = errors.New("llm provider disabled")

// NewClient creates an LLM client based on provider configuration.
func NewClient(provider, model, baseURL, apiKey string) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderNone, "off":
		return nil, ErrDisabled
	case "", ProviderOllama:
		return NewOllamaClient(model, baseURL)
	case ProviderLMStudio, "lm-studio":
		if baseURL == "" {
			baseURL = defaultLMStudioBaseURL
		}
		return NewOpenAIClient(model, baseURL, apiKey)
	case ProviderOpenAI:
		return NewOpenAIClient(model, baseURL, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
