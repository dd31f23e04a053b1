// Package config provides configuration loading and structs for the kensaku server and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the remote vector service settings.
const (
	EnvVectorURL   = "KENSAKU_VECTOR_URL"
	EnvVectorToken = "KENSAKU_VECTOR_TOKEN"
)

// Embedding providers.
const (
	ProviderHash = "hash"
	ProviderONNX = "onnx"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Remote    RemoteConfig    `yaml:"remote"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Batch     BatchConfig     `yaml:"batch"`
	Storage   StorageConfig   `yaml:"storage"`
	Seed      SeedConfig      `yaml:"seed"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Token, when set, is required as a bearer token on the vector protocol routes.
	Token string `yaml:"token"`
}

// RemoteConfig holds the remote vector service endpoint and credential.
// Both must be set for the remote backend to be considered.
type RemoteConfig struct {
	URL          string        `yaml:"url"`
	Token        string        `yaml:"token"`
	Timeout      time.Duration `yaml:"timeout"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// EmbeddingConfig holds embedder settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
	Workers    int    `yaml:"workers"`
}

// SearchConfig holds search defaults and bounds.
type SearchConfig struct {
	DefaultTopK   int     `yaml:"default_top_k"`
	MaxTopK       int     `yaml:"max_top_k"`
	MinSimilarity float64 `yaml:"min_similarity"`
}

// BatchConfig holds bulk upsert settings.
type BatchConfig struct {
	Size int `yaml:"size"`
}

// StorageConfig holds paths for local databases.
type StorageConfig struct {
	SessionDBPath string `yaml:"session_db_path"`
}

// SeedConfig holds the knowledge-base seed directories watched by the server.
type SeedConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (s *SeedConfig) RecursiveOrDefault() bool {
	if s.Recursive != nil {
		return *s.Recursive
	}
	return true
}

// Load reads and parses the config file at path, applies defaults, expands paths and
// applies environment overrides.
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

	configDir := filepath.Dir(path)
	cfg.Storage.SessionDBPath = expandPath(cfg.Storage.SessionDBPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	for i := range cfg.Seed.Directories {
		cfg.Seed.Directories[i] = expandPath(cfg.Seed.Directories[i], configDir)
	}

	ApplyEnv(&cfg)
	return &cfg, nil
}

// Default returns a config with every default applied and environment overrides read.
// Relative paths are resolved against the working directory.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	ApplyEnv(&cfg)
	return &cfg
}

// ApplyEnv overrides remote settings from KENSAKU_VECTOR_URL and KENSAKU_VECTOR_TOKEN
// when they are set and non-empty.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvVectorURL)); v != "" {
		cfg.Remote.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvVectorToken)); v != "" {
		cfg.Remote.Token = v
	}
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate reports every setting that would make the core misbehave.
func (c *Config) Validate() error {
	var errs []error
	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions))
	}
	if c.Embedding.Provider != ProviderHash && c.Embedding.Provider != ProviderONNX {
		errs = append(errs, fmt.Errorf("embedding.provider must be %q or %q, got %q", ProviderHash, ProviderONNX, c.Embedding.Provider))
	}
	if c.Embedding.Provider == ProviderONNX && c.Embedding.ModelPath == "" {
		errs = append(errs, errors.New("embedding.model_path is required for the onnx provider"))
	}
	if c.Batch.Size <= 0 {
		errs = append(errs, fmt.Errorf("batch.size must be positive, got %d", c.Batch.Size))
	}
	if c.Search.DefaultTopK <= 0 {
		errs = append(errs, fmt.Errorf("search.default_top_k must be positive, got %d", c.Search.DefaultTopK))
	}
	if c.Search.MaxTopK < c.Search.DefaultTopK {
		errs = append(errs, fmt.Errorf("search.max_top_k (%d) must be at least default_top_k (%d)", c.Search.MaxTopK, c.Search.DefaultTopK))
	}
	return errors.Join(errs...)
}

// Addr returns host:port for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
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
