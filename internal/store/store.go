// Package store persists news snapshots as timestamped JSON files.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/RobinCoderZhao/newsdesk/internal/feed"
	"github.com/google/uuid"
)

const (
	newsDir       = "news"
	analysisDir   = "analysis"
	snapshotStamp = "20060102_150405"
)

// Store writes and reads snapshot files under a data root. Failures are
// logged and reported as errors; callers treat them as "no data available".
type Store struct {
	dataDir string
	logger  *slog.Logger
}

// New creates a store rooted at dataDir, ensuring the news/ and analysis/
// subdirectories exist.
func New(dataDir string) (*Store, error) {
	s := &Store{dataDir: dataDir, logger: slog.Default()}
	for _, sub := range []string{newsDir, analysisDir} {
		dir := filepath.Join(dataDir, sub)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	s.logger.Info("data dir ready", "dir", dataDir)
	return s, nil
}

// DataDir returns the store's root directory.
func (s *Store) DataDir() string { return s.dataDir }

// Save writes records as a pretty-printed UTF-8 JSON snapshot. An empty
// record list is not written. With an empty filename, one is derived from
// the current timestamp (news_<YYYYMMDD_HHMMSS>.json). Returns the resolved
// path.
func (s *Store) Save(records []feed.NewsRecord, filename string) (string, error) {
	if len(records) == 0 {
		s.logger.Warn("no news records to save")
		return "", fmt.Errorf("no records to save")
	}

	if filename == "" {
		filename = fmt.Sprintf("news_%s.json", time.Now().Format(snapshotStamp))
	}
	path := filepath.Join(s.dataDir, newsDir, filename)

	data, err := marshalPretty(records)
	if err != nil {
		s.logger.Error("failed to save news snapshot", "error", err)
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("failed to save news snapshot", "path", path, "error", err)
		return "", err
	}

	s.logger.Info("news snapshot saved", "count", len(records), "path", path)
	return path, nil
}

// Load reads a snapshot. With an empty filename it loads the
// lexicographically last file from List — under the fixed naming pattern
// that is the most recent snapshot, regardless of file mtimes. A missing
// file or decode failure yields an empty list, never an error.
func (s *Store) Load(filename string) []feed.NewsRecord {
	if filename == "" {
		files := s.List()
		if len(files) == 0 {
			s.logger.Warn("no snapshot files found")
			return nil
		}
		filename = files[len(files)-1]
	}

	path := filepath.Join(s.dataDir, newsDir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("failed to read snapshot", "path", path, "error", err)
		return nil
	}

	var records []feed.NewsRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Error("failed to decode snapshot", "path", path, "error", err)
		return nil
	}

	s.logger.Info("news snapshot loaded", "count", len(records), "path", path)
	return records
}

// List returns the .json filenames in the news directory, sorted ascending.
func (s *Store) List() []string {
	entries, err := os.ReadDir(filepath.Join(s.dataDir, newsDir))
	if err != nil {
		s.logger.Warn("news dir unreadable", "error", err)
		return nil
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files
}

// AnalysisRecord is a stored analysis result.
type AnalysisRecord struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	AnalysisKind string `json:"analysis_kind"`
	Result       string `json:"result"`
	CreatedAt    string `json:"created_at"`
}

// SaveAnalysis writes an analysis result under the analysis/ subdirectory.
func (s *Store) SaveAnalysis(rec AnalysisRecord) (string, error) {
	if rec.Result == "" {
		return "", fmt.Errorf("no analysis result to save")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().Format("2006-01-02 15:04:05")
	}

	filename := fmt.Sprintf("analysis_%s_%s.json",
		time.Now().Format(snapshotStamp), rec.ID[:8])
	path := filepath.Join(s.dataDir, analysisDir, filename)

	data, err := marshalPretty(rec)
	if err != nil {
		s.logger.Error("failed to save analysis", "error", err)
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("failed to save analysis", "path", path, "error", err)
		return "", err
	}
	return path, nil
}

// marshalPretty renders indented JSON without escaping non-Latin text or
// HTML characters.
func marshalPretty(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
