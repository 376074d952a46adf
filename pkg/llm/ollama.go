package llm

import (
	"encoding/json"
	"fmt"
)

// ollamaPayload is the local-model request shape: sampling parameters live
// under options, not at the top level.
type ollamaPayload struct {
	Model    string        `json:"model"`
	Messages []Message     `json:"messages"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

func buildOllamaPayload(cfg Config, messages []Message) ([]byte, error) {
	data, err := json.Marshal(ollamaPayload{
		Model:    cfg.Model,
		Messages: messages,
		Options: ollamaOptions{
			Temperature: cfg.Temperature,
			NumPredict:  cfg.MaxTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return data, nil
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func extractOllamaContent(body []byte) (string, error) {
	var resp ollamaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return resp.Response, nil
}

// buildPayload dispatches to the kind's payload builder.
func buildPayload(kind Kind, cfg Config, messages []Message) ([]byte, error) {
	switch kind {
	case KindAnthropic:
		return buildAnthropicPayload(cfg, messages)
	case KindOllama:
		return buildOllamaPayload(cfg, messages)
	default:
		return buildOpenAIPayload(cfg, messages)
	}
}

// extractContent dispatches to the kind's response extractor.
func extractContent(kind Kind, body []byte) (string, error) {
	switch kind {
	case KindAnthropic:
		return extractAnthropicContent(body)
	case KindOllama:
		return extractOllamaContent(body)
	default:
		return extractOpenAIContent(body)
	}
}

// buildProbePayload builds the minimal test-connection request: a single
// greeting with a five-token budget.
func buildProbePayload(kind Kind, cfg Config) ([]byte, error) {
	cfg.MaxTokens = 5
	return buildPayload(kind, cfg, []Message{{Role: "user", Content: "你好"}})
}

// probeLooksValid checks kind-specific field presence in a probe response.
func probeLooksValid(kind Kind, body []byte) bool {
	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return false
	}
	switch kind {
	case KindAnthropic:
		_, hasContent := result["content"]
		_, hasError := result["error"]
		return hasContent || !hasError
	case KindOllama:
		_, hasResponse := result["response"]
		_, hasMessage := result["message"]
		return hasResponse || hasMessage
	default:
		choices, ok := result["choices"].([]any)
		return ok && len(choices) > 0
	}
}
