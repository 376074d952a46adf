package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestKindFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want Kind
	}{
		{"https://api.openai.com/v1/chat/completions", KindOpenAI},
		{"https://api.anthropic.com/v1/messages", KindAnthropic},
		{"http://localhost:11434/api/chat", KindOllama},
		{"http://127.0.0.1:8080/v1/chat/completions", KindOllama},
		{"https://llm.internal.example/v1/chat", KindGeneric},
		{"HTTPS://API.OPENAI.COM/v1", KindOpenAI},
	}
	for _, tt := range tests {
		if got := KindFromURL(tt.url); got != tt.want {
			t.Errorf("KindFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestHeaders_Anthropic(t *testing.T) {
	c := NewClient(Config{APIKey: "sk-test", APIURL: "https://api.anthropic.com/v1/messages"})
	h := c.headers()
	if h.Get("x-api-key") != "sk-test" {
		t.Fatalf("expected x-api-key header, got %q", h.Get("x-api-key"))
	}
	if h.Get("anthropic-version") == "" {
		t.Fatal("expected anthropic-version header")
	}
	if h.Get("Authorization") != "" {
		t.Fatal("anthropic kind must not send a bearer token")
	}
	if h.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type %q", h.Get("Content-Type"))
	}
}

func TestHeaders_Bearer(t *testing.T) {
	for _, url := range []string{
		"https://api.openai.com/v1/chat/completions",
		"https://llm.internal.example/v1/chat",
	} {
		c := NewClient(Config{APIKey: "sk-test", APIURL: url})
		if got := c.headers().Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("%s: expected bearer auth, got %q", url, got)
		}
	}
}

func TestBuildPayload_AnthropicSimplifiedShape(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = "claude-3-haiku"
	data, err := buildPayload(KindAnthropic, cfg, []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatal(err)
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatal(err)
	}
	if _, has := payload["max_tokens_to_sample"]; has {
		t.Fatal("simplified shape must not use max_tokens_to_sample")
	}
	if payload["max_tokens"] != float64(2048) {
		t.Fatalf("expected max_tokens 2048, got %v", payload["max_tokens"])
	}
	if payload["temperature"] != 0.7 {
		t.Fatalf("expected top-level temperature, got %v", payload["temperature"])
	}
}

func TestBuildPayload_OllamaOptions(t *testing.T) {
	cfg := DefaultConfig()
	data, err := buildPayload(KindOllama, cfg, []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatal(err)
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatal(err)
	}
	if _, has := payload["max_tokens"]; has {
		t.Fatal("ollama shape must not carry top-level max_tokens")
	}
	if _, has := payload["temperature"]; has {
		t.Fatal("ollama shape must not carry top-level temperature")
	}
	opts, ok := payload["options"].(map[string]any)
	if !ok {
		t.Fatal("expected options object")
	}
	if opts["num_predict"] != float64(2048) || opts["temperature"] != 0.7 {
		t.Fatalf("unexpected options: %v", opts)
	}
}

func TestExtractContent_OpenAI(t *testing.T) {
	body := `{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`
	got, err := extractContent(KindOpenAI, []byte(body))
	if err != nil || got != "hello" {
		t.Fatalf("got %q, err %v", got, err)
	}

	got, err = extractContent(KindOpenAI, []byte(`{"choices":[]}`))
	if err != nil || got != "" {
		t.Fatalf("empty choices should yield empty content, got %q, err %v", got, err)
	}
}

func TestExtractContent_AnthropicListWalk(t *testing.T) {
	body := `{"content":[{"type":"tool_use","id":"x"},{"type":"text","text":"the reply"}]}`
	got, err := extractContent(KindAnthropic, []byte(body))
	if err != nil || got != "the reply" {
		t.Fatalf("got %q, err %v", got, err)
	}
}

func TestExtractContent_AnthropicIndexedFallback(t *testing.T) {
	// Older response shape without a type discriminator.
	body := `{"content":[{"text":"legacy reply"}]}`
	got, err := extractContent(KindAnthropic, []byte(body))
	if err != nil || got != "legacy reply" {
		t.Fatalf("got %q, err %v", got, err)
	}
}

func TestExtractContent_Ollama(t *testing.T) {
	got, err := extractContent(KindOllama, []byte(`{"response":"local reply"}`))
	if err != nil || got != "local reply" {
		t.Fatalf("got %q, err %v", got, err)
	}
}

func TestChat_OllamaRoundTrip(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]string{"response": "你好！"})
	}))
	defer srv.Close()

	// httptest binds 127.0.0.1, so the URL infers the ollama kind.
	cfg := DefaultConfig()
	cfg.APIURL = srv.URL
	cfg.APIKey = "unused"
	c := NewClient(cfg)
	if c.Kind() != KindOllama {
		t.Fatalf("expected ollama kind for %s, got %s", srv.URL, c.Kind())
	}

	got, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "你好！" {
		t.Fatalf("unexpected reply %q", got)
	}
	if gotPayload["model"] != "gpt-3.5-turbo" {
		t.Fatalf("model not sent, payload: %v", gotPayload)
	}
}

func TestChat_EmptyContentIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"response": ""})
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.APIURL = srv.URL
	c := NewClient(cfg)
	if _, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}); err != ErrEmptyResponse {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestChat_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.APIURL = srv.URL
	c := NewClient(cfg)
	_, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("error should carry the status code: %v", err)
	}
}

func TestTestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		opts := payload["options"].(map[string]any)
		if opts["num_predict"] != float64(5) {
			t.Errorf("probe must use a 5-token budget, got %v", opts["num_predict"])
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.APIURL = srv.URL
	cfg.APIKey = "sk-test"
	if !NewClient(cfg).TestConnection(context.Background()) {
		t.Fatal("expected successful probe")
	}
}

func TestTestConnection_NoKey(t *testing.T) {
	c := NewClient(DefaultConfig())
	if c.TestConnection(context.Background()) {
		t.Fatal("probe without an API key must report failure")
	}
}

func TestTestConnection_NeverPropagates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIURL = "http://127.0.0.1:1" // nothing listens here
	cfg.APIKey = "sk-test"
	if NewClient(cfg).TestConnection(context.Background()) {
		t.Fatal("unreachable endpoint must report failure, not panic or error")
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []string{
		"API error (429): rate limited",
		"API error (503): overloaded",
		"send request: dial tcp: i/o timeout",
	}
	for _, msg := range retryable {
		if !isRetryable(errStr(msg)) {
			t.Errorf("expected %q to be retryable", msg)
		}
	}
	if isRetryable(errStr("API error (401): bad key")) {
		t.Error("auth failures must not be retried")
	}
}

type errStr string

func (e errStr) Error() string { return string(e) }
