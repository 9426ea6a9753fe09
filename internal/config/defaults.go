package config

import "time"

// DefaultShardCount matches the fixed topology the service has always run with.
const DefaultShardCount = 4

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}
	if cfg.Server.RequestsPerSecond > 0 && cfg.Server.Burst == 0 {
		cfg.Server.Burst = int(cfg.Server.RequestsPerSecond)
		if cfg.Server.Burst < 1 {
			cfg.Server.Burst = 1
		}
	}
	if cfg.Store.ShardCount == 0 {
		cfg.Store.ShardCount = DefaultShardCount
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "dft"
	}
	if cfg.Embedding.Dimensions == 0 {
		if cfg.Embedding.Provider == "onnx" {
			cfg.Embedding.Dimensions = 384
		} else {
			cfg.Embedding.Dimensions = 10
		}
	}
	if cfg.Embedding.Provider == "onnx" && cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/vecshard/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Search.MaxK == 0 {
		cfg.Search.MaxK = 1000
	}
	if cfg.Search.DefaultK == 0 {
		cfg.Search.DefaultK = 10
	}
	if cfg.Search.MaxK > 0 && cfg.Search.DefaultK > cfg.Search.MaxK {
		cfg.Search.DefaultK = cfg.Search.MaxK
	}
}
