package llm

import "encoding/json"

// The Anthropic request deliberately reuses the OpenAI field names
// (max_tokens, top-level temperature, plain-string message content). This
// matches the deployed configuration surface; do not "correct" it to the
// documented Messages API shape.
func buildAnthropicPayload(cfg Config, messages []Message) ([]byte, error) {
	return buildOpenAIPayload(cfg, messages)
}

// extractAnthropicContent walks the response's content list for the first
// "text" block. Response shapes vary across API versions, so a failed walk
// falls back to an indexed lookup of the first element's text.
func extractAnthropicContent(body []byte) (string, error) {
	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	list, ok := result["content"].([]any)
	if !ok {
		return "", nil
	}

	for _, item := range list {
		block, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if block["type"] == "text" {
			text, _ := block["text"].(string)
			return text, nil
		}
	}

	// Older shapes omit the type discriminator.
	if len(list) > 0 {
		if block, ok := list[0].(map[string]any); ok {
			text, _ := block["text"].(string)
			return text, nil
		}
	}
	return "", nil
}
