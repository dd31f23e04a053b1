package config

import "time"

// Default values applied to unset fields.
const (
	DefaultHost          = "localhost"
	DefaultPort          = 8080
	DefaultDimensions    = 1024
	DefaultMaxTokens     = 256
	DefaultCacheSize     = 10000
	DefaultWorkers       = 4
	DefaultTopK          = 5
	DefaultMaxTopK       = 100
	DefaultBatchSize     = 100
	DefaultSessionDBPath = "./data/sessions.db"
	DefaultRemoteTimeout = 30 * time.Second
	DefaultProbeTimeout  = 5 * time.Second
)

// DefaultSeedExtensions are the seed file formats the loader understands.
var DefaultSeedExtensions = []string{".json", ".jsonl", ".yaml", ".yml"}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Remote.Timeout == 0 {
		cfg.Remote.Timeout = DefaultRemoteTimeout
	}
	if cfg.Remote.ProbeTimeout == 0 {
		cfg.Remote.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderHash
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = DefaultDimensions
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = DefaultMaxTokens
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = DefaultCacheSize
	}
	if cfg.Embedding.Workers == 0 {
		cfg.Embedding.Workers = DefaultWorkers
	}
	if cfg.Search.DefaultTopK == 0 {
		cfg.Search.DefaultTopK = DefaultTopK
	}
	if cfg.Search.MaxTopK == 0 {
		cfg.Search.MaxTopK = DefaultMaxTopK
	}
	if cfg.Batch.Size == 0 {
		cfg.Batch.Size = DefaultBatchSize
	}
	if cfg.Storage.SessionDBPath == "" {
		cfg.Storage.SessionDBPath = DefaultSessionDBPath
	}
	if cfg.Seed.Extensions == nil {
		cfg.Seed.Extensions = append([]string(nil), DefaultSeedExtensions...)
	}
	if len(cfg.Seed.Directories) > 0 && cfg.Seed.Recursive == nil {
		t := true
		cfg.Seed.Recursive = &t
	}
}
