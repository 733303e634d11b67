package factory

import (
	"fmt"

	"doc-chat-be/pkg/llm"
	"doc-chat-be/pkg/llm/gemini"
	"doc-chat-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an api key")
		}
		if modelName == "" {
			modelName = "gemini-1.5-flash"
		}
		return gemini.NewGeminiProvider(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
