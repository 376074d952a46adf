package collector

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/RobinCoderZhao/newsdesk/internal/feed"
)

// EventKind discriminates background fetch events.
type EventKind int

const (
	// EventProgress reports per-source progress while a run is underway.
	EventProgress EventKind = iota
	// EventResult carries the aggregated records of a finished run.
	EventResult
	// EventError reports a run that failed outright.
	EventError
)

// Event is a single message from a background fetch run. Consumers receive
// zero or more EventProgress messages followed by exactly one EventResult
// or EventError, after which the channel is closed.
type Event struct {
	Kind    EventKind
	Percent int
	Source  string
	Records []feed.NewsRecord
	Err     error
}

// BackgroundFetcher runs a bulk fetch off the caller's goroutine and
// reports progress over a channel. The caller drains the channel on its own
// loop, so results never touch caller state from the worker.
type BackgroundFetcher struct {
	collector *Collector
	stopped   atomic.Bool
	logger    *slog.Logger
}

// NewBackgroundFetcher wraps a collector for background use.
func NewBackgroundFetcher(c *Collector) *BackgroundFetcher {
	return &BackgroundFetcher{collector: c, logger: slog.Default()}
}

// Stop requests that the current run end early. The flag is checked between
// per-source fetches only; a fetch already in flight runs to completion or
// timeout.
func (b *BackgroundFetcher) Stop() {
	b.stopped.Store(true)
}

// Run starts a bulk fetch on a new goroutine and returns its event channel.
// Sources are processed strictly in registration order and the collector's
// cache is replaced only after all sources finish or fail.
func (b *BackgroundFetcher) Run(ctx context.Context) <-chan Event {
	b.stopped.Store(false)
	events := make(chan Event, 1)

	go func() {
		defer close(events)

		sources := b.collector.Registry().List()
		total := len(sources)
		var all []feed.NewsRecord

		for i, src := range sources {
			if err := ctx.Err(); err != nil {
				events <- Event{Kind: EventError, Err: err}
				return
			}
			if b.stopped.Load() {
				b.logger.Info("background fetch stopped", "completed", i, "total", total)
				break
			}

			events <- Event{
				Kind:    EventProgress,
				Percent: (i + 1) * 100 / total,
				Source:  src.Name,
			}

			items, err := b.collector.fetchSource(ctx, src)
			if err != nil {
				b.logger.Error("failed to fetch source", "source", src.Name, "error", err)
				continue
			}
			all = append(all, items...)
		}

		b.collector.ReplaceCache(b.collector.deduplicate(all))
		events <- Event{Kind: EventResult, Percent: 100, Records: b.collector.Cached()}
	}()

	return events
}
