// Package collector orchestrates feed collection: fetch, parse, aggregate,
// deduplicate, cache, query.
package collector

import (
	"context"
	"log/slog"
	"strings"

	"github.com/RobinCoderZhao/newsdesk/internal/feed"
	"github.com/RobinCoderZhao/newsdesk/internal/fetch"
	"github.com/RobinCoderZhao/newsdesk/internal/source"
)

// CategoryAll is the sentinel category that matches every record.
const CategoryAll = "所有"

// DedupKeyFunc derives the identity key used to collapse duplicate records.
type DedupKeyFunc func(feed.NewsRecord) string

// KeyByTitle is the default dedup key. Distinct articles sharing a title
// collide under this key; that matches the historical behavior and is kept
// deliberately. Use KeyByLink for a stronger key.
func KeyByTitle(r feed.NewsRecord) string { return r.Title }

// KeyByLink keys records by their article URL.
func KeyByLink(r feed.NewsRecord) string { return r.Link }

// Collector fetches news from registered sources and maintains the
// in-memory cache. It is not safe for concurrent use; callers serialize
// access on their own loop.
type Collector struct {
	registry *source.Registry
	fetcher  fetch.Fetcher
	dedupKey DedupKeyFunc
	cache    []feed.NewsRecord
	logger   *slog.Logger
}

// New creates a collector over the given registry and fetcher.
func New(registry *source.Registry, fetcher fetch.Fetcher) *Collector {
	return &Collector{
		registry: registry,
		fetcher:  fetcher,
		dedupKey: KeyByTitle,
		logger:   slog.Default(),
	}
}

// SetDedupKey replaces the dedup key function. A nil fn restores the default.
func (c *Collector) SetDedupKey(fn DedupKeyFunc) {
	if fn == nil {
		fn = KeyByTitle
	}
	c.dedupKey = fn
}

// Registry returns the collector's source registry.
func (c *Collector) Registry() *source.Registry { return c.registry }

// Fetcher returns the underlying fetcher, shared with callers that retrieve
// article pages.
func (c *Collector) Fetcher() fetch.Fetcher { return c.fetcher }

// FetchOne fetches and parses a single source by URL. An unknown URL yields
// an empty list, not an error. Fetch and parse failures propagate.
func (c *Collector) FetchOne(ctx context.Context, url string) ([]feed.NewsRecord, error) {
	src, ok := c.registry.Lookup(url)
	if !ok {
		c.logger.Warn("source not registered", "url", url)
		return nil, nil
	}
	return c.fetchSource(ctx, src)
}

// FetchAll fetches every registered source in registration order. A failing
// source contributes nothing; the remaining sources still run. The
// aggregated, deduplicated result replaces the cache.
func (c *Collector) FetchAll(ctx context.Context) []feed.NewsRecord {
	var all []feed.NewsRecord
	for _, src := range c.registry.List() {
		items, err := c.fetchSource(ctx, src)
		if err != nil {
			c.logger.Error("failed to fetch source", "source", src.Name, "error", err)
			continue
		}
		all = append(all, items...)
	}

	c.cache = c.deduplicate(all)
	return c.Cached()
}

// Cached returns the current cache unfiltered.
func (c *Collector) Cached() []feed.NewsRecord {
	out := make([]feed.NewsRecord, len(c.cache))
	copy(out, c.cache)
	return out
}

// ReplaceCache swaps in externally produced records (a loaded snapshot or a
// background fetch result) after deduplication.
func (c *Collector) ReplaceCache(records []feed.NewsRecord) {
	c.cache = c.deduplicate(records)
}

// ByCategory returns cached records with an exact category match. An empty
// category or CategoryAll returns the full cache.
func (c *Collector) ByCategory(category string) []feed.NewsRecord {
	if category == "" || category == CategoryAll {
		return c.Cached()
	}
	var out []feed.NewsRecord
	for _, r := range c.cache {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// Search returns cached records whose title or description contains query,
// case-insensitively. An empty query returns the full cache.
func (c *Collector) Search(query string) []feed.NewsRecord {
	if query == "" {
		return c.Cached()
	}
	q := strings.ToLower(query)
	var out []feed.NewsRecord
	for _, r := range c.cache {
		if strings.Contains(strings.ToLower(r.Title), q) ||
			strings.Contains(strings.ToLower(r.Description), q) {
			out = append(out, r)
		}
	}
	return out
}

func (c *Collector) fetchSource(ctx context.Context, src source.Source) ([]feed.NewsRecord, error) {
	data, err := c.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	items, err := feed.Parse(data, src)
	if err != nil {
		return nil, err
	}
	c.logger.Info("fetched source", "source", src.Name, "count", len(items))
	return items, nil
}

// deduplicate collapses records sharing a dedup key. The first occurrence
// wins; insertion order is preserved otherwise.
func (c *Collector) deduplicate(records []feed.NewsRecord) []feed.NewsRecord {
	seen := make(map[string]bool, len(records))
	out := make([]feed.NewsRecord, 0, len(records))
	for _, r := range records {
		key := c.dedupKey(r)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
