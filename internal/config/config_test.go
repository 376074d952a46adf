package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
	if cfg.Refresh != 30*time.Minute {
		t.Errorf("Refresh = %v, want 30m", cfg.Refresh)
	}
	if cfg.Fetch.Timeout != 10*time.Second {
		t.Errorf("Fetch.Timeout = %v, want 10s", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.InsecureSkipVerify {
		t.Error("InsecureSkipVerify should default to false")
	}
	if cfg.LLM.Model != "gpt-3.5-turbo" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
data_dir: /var/lib/newsdesk
refresh_interval: 5m
fetch:
  timeout: 20s
  insecure_skip_verify: true
llm:
  model: gpt-4o
  max_tokens: 4096
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/var/lib/newsdesk" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Refresh != 5*time.Minute {
		t.Errorf("Refresh = %v", cfg.Refresh)
	}
	if cfg.Fetch.Timeout != 20*time.Second {
		t.Errorf("Fetch.Timeout = %v", cfg.Fetch.Timeout)
	}
	if !cfg.Fetch.InsecureSkipVerify {
		t.Error("InsecureSkipVerify not loaded")
	}
	if cfg.LLM.Model != "gpt-4o" || cfg.LLM.MaxTokens != 4096 {
		t.Errorf("LLM = %q/%d", cfg.LLM.Model, cfg.LLM.MaxTokens)
	}
	// 未在文件中出现的字段保留默认值。
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want default 0.7", cfg.LLM.Temperature)
	}
}

func TestLoadMissingFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("NEWSDESK_DATA_DIR", "/tmp/nd")
	t.Setenv("LLM_API_KEY", "sk-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/tmp/nd" {
		t.Errorf("DataDir = %q, want env override", cfg.DataDir)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want env override", cfg.LLM.APIKey)
	}
	if cfg.Refresh != 30*time.Minute {
		t.Errorf("Refresh = %v, want default", cfg.Refresh)
	}
}
