// Package config provides configuration loading and structs for the vecshard server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// RequestsPerSecond limits API requests across all clients; 0 disables limiting.
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
}

// StoreConfig holds the shard topology. It is read once at startup.
type StoreConfig struct {
	ShardCount  int  `yaml:"shard_count"`
	ExactSearch bool `yaml:"exact_search"`
}

// EmbeddingConfig selects and configures the embedder.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	// CacheSize is the LRU capacity; negative disables the cache.
	CacheSize int `yaml:"cache_size"`
}

// SearchConfig holds query defaults.
type SearchConfig struct {
	DefaultK int `yaml:"default_k"`
	MaxK     int `yaml:"max_k"`
}

// ClampK applies the defaults to a requested k. Zero means "use DefaultK";
// values above MaxK are lowered to MaxK. Negative values are returned unchanged
// so the store can reject them.
func (s SearchConfig) ClampK(k int) int {
	if k == 0 {
		return s.DefaultK
	}
	if s.MaxK > 0 && k > s.MaxK {
		return s.MaxK
	}
	return k
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, filepath.Dir(path))
	}
	return &cfg, nil
}

// Validate rejects settings that defaults cannot repair.
func Validate(cfg *Config) error {
	if cfg.Store.ShardCount < 0 {
		return fmt.Errorf("invalid config: store.shard_count must be positive, got %d", cfg.Store.ShardCount)
	}
	if cfg.Search.DefaultK < 0 || cfg.Search.MaxK < 0 {
		return fmt.Errorf("invalid config: search.default_k and search.max_k must be positive")
	}
	if cfg.Server.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid config: server.requests_per_second must not be negative")
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
