// Package config defines the application configuration surface.
package config

import (
	"time"

	"github.com/RobinCoderZhao/newsdesk/internal/fetch"
	"github.com/RobinCoderZhao/newsdesk/pkg/config"
	"github.com/RobinCoderZhao/newsdesk/pkg/llm"
)

// Config is the full application configuration. Values come from an
// optional YAML file with env-var overrides; Default supplies everything
// else.
type Config struct {
	DataDir string        `yaml:"data_dir" env:"NEWSDESK_DATA_DIR"`
	Listen  string        `yaml:"listen" env:"NEWSDESK_LISTEN"`
	Refresh time.Duration `yaml:"refresh_interval" env:"NEWSDESK_REFRESH_INTERVAL"`

	Fetch fetch.Options `yaml:"fetch"`
	LLM   llm.Config    `yaml:"llm"`
}

// Default returns the reference defaults.
func Default() Config {
	return Config{
		DataDir: "data",
		Listen:  ":8080",
		Refresh: 30 * time.Minute,
		Fetch:   fetch.DefaultOptions(),
		LLM:     llm.DefaultConfig(),
	}
}

// Load reads path over the defaults. A missing file is not an error; env
// overrides always apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := config.LoadOrDefault(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
