package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the eadrag tool.
type Config struct {
	Collections CollectionsConfig `yaml:"collections"`
	Chunking    ChunkingConfig    `yaml:"chunking"`
	Storage     StorageConfig     `yaml:"storage"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Retrieve    RetrieveConfig    `yaml:"retrieve"`
	Generate    GenerateConfig    `yaml:"generate"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// CollectionsConfig selects the finding aids to process.
type CollectionsConfig struct {
	Dir      string   `yaml:"dir"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// ChunkingConfig holds chunking configuration.
type ChunkingConfig struct {
	WindowChars int `yaml:"window_chars"`
}

// StorageConfig names the persisted artifacts, relative to Dir.
type StorageConfig struct {
	Dir        string `yaml:"dir"`
	CorpusFile string `yaml:"corpus_file"`
	IndexFile  string `yaml:"index_file"`
	CacheFile  string `yaml:"cache_file"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "hash"
	Model     string `yaml:"model"`       // e.g., "all-minilm"
	BaseURL   string `yaml:"base_url"`    // OpenAI-compatible endpoint
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key, optional
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
	Cache     bool   `yaml:"cache"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	PromptTopK   int `yaml:"prompt_top_k"`
	GenerateTopK int `yaml:"generate_top_k"`
	ExcerptChars int `yaml:"excerpt_chars"`
}

// GenerateConfig holds generative model configuration.
type GenerateConfig struct {
	Model        string  `yaml:"model"`
	BaseURL      string  `yaml:"base_url"`
	APIKeyEnv    string  `yaml:"api_key_env"`
	MaxNewTokens int     `yaml:"max_new_tokens"`
	Temperature  float32 `yaml:"temperature"`
	TimeoutSec   int     `yaml:"timeout_sec"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console", "json"
}

// MetricsConfig holds metrics export configuration.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // empty = disabled
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Collections: CollectionsConfig{
			Dir:      "collections",
			Includes: []string{"*.xml"},
			Excludes: []string{},
		},
		Chunking: ChunkingConfig{
			WindowChars: 2500,
		},
		Storage: StorageConfig{
			Dir:        ".eadrag",
			CorpusFile: "processed_chunks.json",
			IndexFile:  "ead_index.db",
			CacheFile:  "embcache.db",
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "all-minilm",
			BaseURL:   "http://localhost:11434/v1",
			APIKeyEnv: "",
			Dimension: 384,
			BatchSize: 64,
			Cache:     true,
		},
		Retrieve: RetrieveConfig{
			PromptTopK:   5,
			GenerateTopK: 20,
			ExcerptChars: 500,
		},
		Generate: GenerateConfig{
			Model:        "mistral:7b-instruct-q4_K_M",
			BaseURL:      "http://localhost:11434/v1",
			APIKeyEnv:    "EADRAG_API_KEY",
			MaxNewTokens: 512,
			Temperature:  0.7,
			TimeoutSec:   300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for eadrag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "eadrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".eadrag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	if c.Chunking.WindowChars <= 0 {
		return fmt.Errorf("chunking.window_chars must be positive, got %d", c.Chunking.WindowChars)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be positive, got %d", c.Embedding.Dimension)
	}
	switch c.Embedding.Provider {
	case "openai", "hash":
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.Embedding.Provider)
	}
	if c.Retrieve.ExcerptChars <= 0 {
		return fmt.Errorf("retrieve.excerpt_chars must be positive, got %d", c.Retrieve.ExcerptChars)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("unsupported logging format: %s", c.Logging.Format)
	}
	return nil
}

// CollectionsDir returns the directory holding the finding aids.
func (c *Config) CollectionsDir(root string) string {
	if filepath.IsAbs(c.Collections.Dir) {
		return c.Collections.Dir
	}
	return filepath.Join(root, c.Collections.Dir)
}

// StorageDir returns the directory holding corpus, index and cache files.
func (c *Config) StorageDir(root string) string {
	if filepath.IsAbs(c.Storage.Dir) {
		return c.Storage.Dir
	}
	return filepath.Join(root, c.Storage.Dir)
}

// CorpusPath returns the path to the persisted chunk corpus.
func (c *Config) CorpusPath(root string) string {
	return filepath.Join(c.StorageDir(root), c.Storage.CorpusFile)
}

// IndexPath returns the path to the vector index database.
func (c *Config) IndexPath(root string) string {
	return filepath.Join(c.StorageDir(root), c.Storage.IndexFile)
}

// CachePath returns the path to the embedding cache database.
func (c *Config) CachePath(root string) string {
	return filepath.Join(c.StorageDir(root), c.Storage.CacheFile)
}

// EnsureStorageDir ensures the storage directory exists.
func (c *Config) EnsureStorageDir(root string) error {
	return os.MkdirAll(c.StorageDir(root), 0755)
}
