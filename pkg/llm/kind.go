package llm

import "strings"

// Kind is the wire-format family of a chat endpoint. It is inferred once
// from the configured URL and drives payload shape, headers and response
// extraction.
type Kind string

const (
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
	KindOllama    Kind = "ollama"
	// KindGeneric is any unrecognized endpoint; it speaks the OpenAI shape.
	KindGeneric Kind = "generic"
)

// KindFromURL infers the provider kind from substrings of the endpoint URL.
func KindFromURL(apiURL string) Kind {
	u := strings.ToLower(apiURL)
	switch {
	case strings.Contains(u, "openai.com"):
		return KindOpenAI
	case strings.Contains(u, "anthropic.com"):
		return KindAnthropic
	case strings.Contains(u, "localhost"), strings.Contains(u, "127.0.0.1"):
		return KindOllama
	default:
		return KindGeneric
	}
}
