// Package stream replays a completed reply as incremental updates,
// emulating token streaming over a callback.
package stream

import (
	"fmt"
	"log/slog"
	"time"
)

// Callback receives the cumulative text so far. done is false for every
// partial update and true exactly once, on the terminal call.
type Callback func(accumulated string, done bool)

const (
	// DefaultChunkSize is the number of characters per partial update.
	DefaultChunkSize = 5
	// DefaultDelay is the pause between partial updates.
	DefaultDelay = 50 * time.Millisecond
)

// Simulator fans a reply out as fixed-size chunks. The zero value is not
// usable; construct with NewSimulator.
type Simulator struct {
	ChunkSize int
	Delay     time.Duration
	logger    *slog.Logger
}

// NewSimulator creates a simulator with the default chunking parameters.
func NewSimulator() *Simulator {
	return &Simulator{
		ChunkSize: DefaultChunkSize,
		Delay:     DefaultDelay,
		logger:    slog.Default(),
	}
}

// Run starts replaying reply on a new goroutine and returns immediately.
// The callback is invoked with growing prefixes of the reply, then exactly
// once with the complete text and done=true. The terminal call is
// guaranteed even if the replay fails internally; in that case it carries a
// formatted error message.
//
// Chunks are sliced on runes so multi-byte text never splits mid-character.
func (s *Simulator) Run(reply string, cb Callback) {
	go s.replay(reply, cb)
}

func (s *Simulator) replay(reply string, cb Callback) {
	defer func() {
		if r := recover(); r != nil {
			if s.logger != nil {
				s.logger.Error("stream replay failed", "error", r)
			}
			cb(fmt.Sprintf("处理失败: %v\n\n请检查API设置和网络连接。", r), true)
		}
	}()

	chunkSize := s.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	runes := []rune(reply)
	for i := 0; i < len(runes); i += chunkSize {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		cb(string(runes[:end]), false)
		time.Sleep(s.Delay)
	}
	cb(reply, true)
}
