// Package chat maintains a conversation with the configured LLM endpoint
// and replays replies through the streaming simulator.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/RobinCoderZhao/newsdesk/pkg/llm"
	"github.com/RobinCoderZhao/newsdesk/pkg/stream"
	"github.com/google/uuid"
)

const (
	systemPromptPlain   = "你是一个专业的新闻分析助手，可以回答各种问题。"
	systemPromptContext = "你是一个新闻分析助手。以下是相关的新闻信息：\n\n%s"
	noKeyReply          = "API密钥未设置，请在设置中配置有效的API密钥。"
)

// Session is one conversation. History is appended to, never reordered;
// only the session itself mutates it. A Session is driven from a single
// goroutine; replies arrive on the stream callback.
type Session struct {
	ID        string
	client    *llm.Client
	simulator *stream.Simulator
	history   []llm.Message
	busy      atomic.Bool
	logger    *slog.Logger
}

// NewSession creates a session over the given client.
func NewSession(client *llm.Client) *Session {
	return &Session{
		ID:        uuid.NewString(),
		client:    client,
		simulator: stream.NewSimulator(),
		logger:    slog.Default(),
	}
}

// History returns the conversation so far.
func (s *Session) History() []llm.Message {
	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Busy reports whether a request is in flight. Callers disable their send
// affordance while true and re-enable it on the terminal callback.
func (s *Session) Busy() bool { return s.busy.Load() }

// Reset clears the conversation history.
func (s *Session) Reset() { s.history = nil }

// Send appends the user message, requests a complete reply off the calling
// goroutine, and replays it incrementally through cb. The terminal
// done=true call is guaranteed exactly once — carrying the reply, a
// degraded-mode notice when no API key is configured, or a formatted error.
func (s *Session) Send(ctx context.Context, userMessage, newsContext string, cb stream.Callback) {
	s.history = append(s.history, llm.Message{Role: "user", Content: userMessage})

	if !s.client.HasAPIKey() {
		s.history = append(s.history, llm.Message{Role: "assistant", Content: noKeyReply})
		go cb(noKeyReply, true)
		return
	}

	messages := s.buildMessages(newsContext)
	s.busy.Store(true)

	// Clear the flag before delivering the terminal callback so a caller
	// reading Busy from inside it can re-enable its send affordance.
	terminal := func(accumulated string, done bool) {
		if done {
			s.busy.Store(false)
		}
		cb(accumulated, done)
	}

	go func() {
		reply, err := s.client.Chat(ctx, messages)
		if err != nil {
			s.logger.Error("chat request failed", "session", s.ID, "error", err)
			terminal(fmt.Sprintf("处理失败: %v\n\n请检查API设置和网络连接。", err), true)
			return
		}

		s.history = append(s.history, llm.Message{Role: "assistant", Content: reply})
		s.simulator.Run(reply, terminal)
	}()
}

// buildMessages prefixes the history with a system message, derived from
// the news context when one is given.
func (s *Session) buildMessages(newsContext string) []llm.Message {
	system := systemPromptPlain
	if newsContext != "" {
		system = fmt.Sprintf(systemPromptContext, newsContext)
	}
	messages := make([]llm.Message, 0, len(s.history)+1)
	messages = append(messages, llm.Message{Role: "system", Content: system})
	messages = append(messages, s.history...)
	return messages
}
