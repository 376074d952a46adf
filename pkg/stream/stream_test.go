package stream

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// collect drains a full replay and returns the observed calls.
func collect(t *testing.T, s *Simulator, reply string) (partials []string, final string) {
	t.Helper()
	var mu sync.Mutex
	doneCh := make(chan struct{})
	finals := 0

	s.Run(reply, func(accumulated string, done bool) {
		mu.Lock()
		defer mu.Unlock()
		if done {
			finals++
			final = accumulated
			close(doneCh)
			return
		}
		partials = append(partials, accumulated)
	})

	select {
	case <-doneCh:
	case <-time.After(5 * time.Second):
		t.Fatal("terminal callback never arrived")
	}
	if finals != 1 {
		t.Fatalf("expected exactly one terminal call, got %d", finals)
	}
	return partials, final
}

func TestRun_ChunksAndTerminal(t *testing.T) {
	s := NewSimulator()
	s.Delay = time.Millisecond

	partials, final := collect(t, s, "HELLO WORLD")

	if len(partials) != 3 { // ceil(11/5)
		t.Fatalf("expected 3 partial calls, got %d: %v", len(partials), partials)
	}
	if partials[0] != "HELLO" {
		t.Fatalf("first partial should be the first chunk, got %q", partials[0])
	}
	for i := 1; i < len(partials); i++ {
		if !strings.HasPrefix(partials[i], partials[i-1]) {
			t.Fatalf("partials must be growing prefixes: %q then %q", partials[i-1], partials[i])
		}
	}
	if final != "HELLO WORLD" {
		t.Fatalf("terminal call must carry the complete text, got %q", final)
	}
}

func TestRun_EmptyReply(t *testing.T) {
	s := NewSimulator()
	s.Delay = 0

	partials, final := collect(t, s, "")
	if len(partials) != 0 {
		t.Fatalf("empty reply should produce no partials, got %v", partials)
	}
	if final != "" {
		t.Fatalf("unexpected terminal text %q", final)
	}
}

func TestRun_MultiByteRunesNeverSplit(t *testing.T) {
	s := NewSimulator()
	s.Delay = 0

	reply := "这是一段用于测试的中文回复内容"
	partials, final := collect(t, s, reply)

	for _, p := range partials {
		if strings.Contains(p, "�") {
			t.Fatalf("partial contains a split rune: %q", p)
		}
	}
	if final != reply {
		t.Fatalf("terminal text mismatch: %q", final)
	}
}

func TestRun_DoesNotBlockCaller(t *testing.T) {
	s := NewSimulator() // 50ms delay per chunk
	start := time.Now()
	s.Run(strings.Repeat("x", 500), func(string, bool) {})
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Fatalf("Run must return immediately, took %v", elapsed)
	}
}

func TestRun_PanickingCallbackStillTerminates(t *testing.T) {
	s := NewSimulator()
	s.Delay = 0

	var mu sync.Mutex
	doneCh := make(chan struct{})
	calls := 0

	s.Run("HELLO WORLD", func(accumulated string, done bool) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if done {
			if !strings.Contains(accumulated, "处理失败") {
				t.Errorf("terminal call after failure must carry an error payload, got %q", accumulated)
			}
			close(doneCh)
			return
		}
		panic("consumer blew up")
	})

	select {
	case <-doneCh:
	case <-time.After(5 * time.Second):
		t.Fatal("terminal callback never arrived after failure")
	}
}
