// Package source manages the catalog of configured feed endpoints.
package source

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// CategoryDefault is assigned to sources registered without a category.
const CategoryDefault = "未分类"

// Source is a configured feed endpoint. The URL is the unique key.
type Source struct {
	URL       string `json:"url" yaml:"url"`
	Name      string `json:"name" yaml:"name"`
	Category  string `json:"category" yaml:"category"`
	UserAdded bool   `json:"user_added" yaml:"user_added"`
}

// ValidationError reports a rejected registration.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Registry holds registered sources in insertion order.
type Registry struct {
	sources []Source
	logger  *slog.Logger
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{logger: slog.Default()}
}

// Add registers a feed source. An empty URL is rejected. Registering a URL
// that already exists is a no-op; the first registration wins.
func (r *Registry) Add(url, name, category string, userAdded bool) error {
	if url == "" {
		return &ValidationError{Field: "url", Reason: "URL不能为空"}
	}

	if name == "" {
		name = defaultName(url)
	}
	if category == "" {
		category = CategoryDefault
	}

	for _, s := range r.sources {
		if s.URL == url {
			r.logger.Warn("source already registered", "url", url)
			return nil
		}
	}

	r.sources = append(r.sources, Source{
		URL:       url,
		Name:      name,
		Category:  category,
		UserAdded: userAdded,
	})
	r.logger.Info("source added", "name", name, "url", url, "category", category)
	return nil
}

// Remove deletes the source with the given URL. It reports whether a source
// was actually removed.
func (r *Registry) Remove(url string) bool {
	for i, s := range r.sources {
		if s.URL == url {
			r.sources = append(r.sources[:i], r.sources[i+1:]...)
			r.logger.Info("source removed", "url", url)
			return true
		}
	}
	return false
}

// Lookup returns the source registered under url.
func (r *Registry) Lookup(url string) (Source, bool) {
	for _, s := range r.sources {
		if s.URL == url {
			return s, true
		}
	}
	return Source{}, false
}

// List returns the registered sources in insertion order.
func (r *Registry) List() []Source {
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Categories returns the distinct categories of all sources, sorted.
func (r *Registry) Categories() []string {
	seen := map[string]bool{}
	for _, s := range r.sources {
		seen[s.Category] = true
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// defaultName derives a display name from the host portion of a URL:
// the text after "//" up to the next "/".
func defaultName(url string) string {
	rest := url
	if i := strings.LastIndex(url, "//"); i >= 0 {
		rest = url[i+2:]
	}
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
