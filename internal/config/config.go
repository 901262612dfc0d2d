package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sechaba/ragwatch/internal/chunker"
	"github.com/sechaba/ragwatch/internal/extractor"
	"github.com/sechaba/ragwatch/internal/retriever"
	"github.com/sechaba/ragwatch/internal/watcher"
)

// EmbedderConfig selects and configures the embedding provider
type EmbedderConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	CacheSize int    `yaml:"cache_size"`
}

// QdrantConfig contains connection details for a Qdrant vector store
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
}

// VectorStoreConfig selects and configures the vector store implementation
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// RetrievalConfig configures query-time behavior
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// ChatConfig configures the chat generation model
type ChatConfig struct {
	Model string `yaml:"model"`
}

// Config is the root application configuration
type Config struct {
	WatchedRoot        string   `yaml:"watched_root"`
	DataDir            string   `yaml:"data_dir"`
	MaxFileSizeBytes   int64    `yaml:"max_file_size_bytes"`
	ChunkSizeTokens    int      `yaml:"chunk_size_tokens"`
	ChunkOverlapTokens int      `yaml:"chunk_overlap_tokens"`
	DebounceWindowMs   int      `yaml:"debounce_window_ms"`
	IgnorePaths        []string `yaml:"ignore_paths,omitempty"`

	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Chat        ChatConfig        `yaml:"chat"`
}

// Load reads a config from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			if err := cfg.expandPaths(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./ragwatch.yaml first, then ~/.config/ragwatch/config.yaml,
// falling back to defaults when neither exists
func LoadDefault() (*Config, string, error) {
	cwdPath := "ragwatch.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg, err := Load(userPath) // does not exist; yields defaults
	return cfg, "", err
}

// Default returns the built-in defaults with home paths expanded
func Default() *Config {
	cfg := defaultConfig()
	_ = cfg.expandPaths()
	return cfg
}

// Save writes the config to path, creating directories as needed
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DBPath returns the tracker database location under the data directory
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "tracker.db")
}

// DebounceWindow returns the watcher debounce duration
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceWindowMs) * time.Millisecond
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragwatch", "config.yaml"), nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.WatchedRoot == "" {
		cfg.WatchedRoot = "~/Documents"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "~/.ragwatch"
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = extractor.DefaultMaxFileSize
	}
	if cfg.ChunkSizeTokens <= 0 {
		cfg.ChunkSizeTokens = chunker.DefaultChunkSize
	}
	if cfg.ChunkOverlapTokens <= 0 {
		cfg.ChunkOverlapTokens = chunker.DefaultOverlap
	}
	if cfg.DebounceWindowMs <= 0 {
		cfg.DebounceWindowMs = int(watcher.DefaultDebounceWindow / time.Millisecond)
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "qdrant"
	}
	if cfg.VectorStore.Type == "qdrant" {
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		if cfg.VectorStore.Qdrant.Host == "" {
			cfg.VectorStore.Qdrant.Host = "localhost"
		}
		if cfg.VectorStore.Qdrant.Port == 0 {
			cfg.VectorStore.Qdrant.Port = 6334
		}
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = retriever.DefaultTopK
	}
}

// expandPaths resolves ~ prefixes in the filesystem settings
func (c *Config) expandPaths() error {
	var err error
	if c.WatchedRoot, err = expandHome(c.WatchedRoot); err != nil {
		return err
	}
	if c.DataDir, err = expandHome(c.DataDir); err != nil {
		return err
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand %q: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
