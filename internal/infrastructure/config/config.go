// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for patchrag configuration.
	DefaultConfigDir = ".patchrag"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultHistoryFile is the default ingestion ledger file name.
	DefaultHistoryFile = "history.db"
	// DefaultEnvFile is the dotenv file read from the base path.
	DefaultEnvFile = ".env"
)

// Vector store providers.
const (
	ProviderQdrant   = "qdrant"
	ProviderPGVector = "pgvector"
)

// ErrMissingAPIKey is returned when an operation needs a provider key that
// is neither configured nor set in the environment.
var ErrMissingAPIKey = errors.New("API key not configured")

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	LLM         LLMConfig         `yaml:"llm,omitempty"`
	Embedder    EmbedderConfig    `yaml:"embedder,omitempty"`
	VectorStore VectorStoreConfig `yaml:"vector_store,omitempty"`
	Qdrant      QdrantConfig      `yaml:"qdrant,omitempty"`
	PGVector    PGVectorConfig    `yaml:"pgvector,omitempty"`
	Datafeed    DatafeedConfig    `yaml:"datafeed,omitempty"`
	History     HistoryConfig     `yaml:"history,omitempty"`
}

// LLMConfig holds configuration for the LLM provider.
type LLMConfig struct {
	Provider    string  `yaml:"provider,omitempty" validate:"required,oneof=openai"`
	Model       string  `yaml:"model,omitempty" validate:"required"`
	APIKey      string  `yaml:"api_key,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty" validate:"omitempty,url"`
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	// ContextTokens caps the retrieved context sent with each question.
	// Zero disables trimming.
	ContextTokens int `yaml:"context_tokens,omitempty" validate:"gte=0"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider   string `yaml:"provider,omitempty" validate:"required,oneof=openai"`
	Model      string `yaml:"model,omitempty" validate:"required"`
	APIKey     string `yaml:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty" validate:"omitempty,url"`
	Dimensions int    `yaml:"dimensions,omitempty" validate:"gt=0"`
	BatchSize  int    `yaml:"batch_size,omitempty" validate:"gt=0"`
}

// VectorStoreConfig selects the document store and names the index.
type VectorStoreConfig struct {
	Provider  string `yaml:"provider,omitempty" validate:"required,oneof=qdrant pgvector"`
	Index     string `yaml:"index,omitempty" validate:"required"`
	Namespace string `yaml:"namespace,omitempty" validate:"required"`
	// ReadyTimeoutSecs bounds the wait for a new index to become ready.
	ReadyTimeoutSecs int `yaml:"ready_timeout_secs,omitempty" validate:"gt=0"`
}

// ReadyTimeout returns the index readiness timeout.
func (c VectorStoreConfig) ReadyTimeout() time.Duration {
	return time.Duration(c.ReadyTimeoutSecs) * time.Second
}

// QdrantConfig holds configuration for the Qdrant vector database.
type QdrantConfig struct {
	Host   string `yaml:"host,omitempty" validate:"required"`
	Port   int    `yaml:"port,omitempty" validate:"gt=0,lte=65535"`
	APIKey string `yaml:"api_key,omitempty"`
}

// PGVectorConfig holds configuration for the Postgres pgvector store.
type PGVectorConfig struct {
	DSN string `yaml:"dsn,omitempty"`
}

// DatafeedConfig holds configuration for the patch notes feed.
type DatafeedConfig struct {
	BaseURL     string `yaml:"base_url,omitempty" validate:"required,url"`
	Language    string `yaml:"language,omitempty" validate:"required"`
	TimeoutSecs int    `yaml:"timeout_secs,omitempty" validate:"gt=0"`
}

// HistoryConfig holds configuration for the ingestion ledger.
type HistoryConfig struct {
	// Path is the SQLite file. Relative paths resolve against the config
	// directory.
	Path string `yaml:"path,omitempty" validate:"required"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:      "openai",
			Model:         "gpt-4.1-mini",
			Temperature:   0,
			ContextTokens: 3000,
		},
		Embedder: EmbedderConfig{
			Provider:   "openai",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
			BatchSize:  100,
		},
		VectorStore: VectorStoreConfig{
			Provider:         ProviderQdrant,
			Index:            "dota2-patches-rag",
			Namespace:        "dota2-patches-v1",
			ReadyTimeoutSecs: 60,
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
		Datafeed: DatafeedConfig{
			BaseURL:     "https://www.dota2.com/datafeed",
			Language:    "english",
			TimeoutSecs: 30,
		},
		History: HistoryConfig{
			Path: DefaultHistoryFile,
		},
	}
}

// Load loads configuration from the .patchrag directory in the given path.
// A missing config file yields the defaults. Values from a .env file in
// basePath are loaded into the environment without replacing variables
// that are already set.
func Load(basePath string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(basePath, DefaultEnvFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading env file: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(ConfigFilePath(basePath))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if !filepath.IsAbs(cfg.History.Path) && cfg.History.Path != ":memory:" {
		cfg.History.Path = filepath.Join(ConfigDir(basePath), cfg.History.Path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = key
		}
		if c.Embedder.APIKey == "" {
			c.Embedder.APIKey = key
		}
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" {
		if c.Qdrant.APIKey == "" {
			c.Qdrant.APIKey = key
		}
	}
	if dsn := os.Getenv("PGVECTOR_DSN"); dsn != "" {
		if c.PGVector.DSN == "" {
			c.PGVector.DSN = dsn
		}
	}
	if provider := os.Getenv("PATCHRAG_VECTOR_STORE"); provider != "" {
		c.VectorStore.Provider = strings.ToLower(provider)
	}
}

// Validate checks field constraints and provider specific requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("validating config: %w", err)
	}

	if c.VectorStore.Provider == ProviderPGVector && c.PGVector.DSN == "" {
		return errors.New("invalid config: pgvector.dsn is required when vector_store.provider is pgvector (or set PGVECTOR_DSN)")
	}

	return nil
}

// RequireOpenAI reports ErrMissingAPIKey when the LLM or embedder key is unset.
func (c *Config) RequireOpenAI() error {
	if c.LLM.APIKey == "" || c.Embedder.APIKey == "" {
		return fmt.Errorf("%w: set OPENAI_API_KEY or api_key in %s", ErrMissingAPIKey, DefaultConfigFile)
	}
	return nil
}

// FetchTimeout returns the datafeed request timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Datafeed.TimeoutSecs) * time.Second
}

// ConfigDir returns the path to the .patchrag config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}
