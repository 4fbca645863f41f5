// Package config loads cortex's configuration: a single TOML-equivalent
// file (YAML, matching the teacher's own format) with 4-layer precedence —
// CLI flags > environment variables > project file > user file > built-in
// defaults (spec.md §6) — via viper/pflag, the teacher's own stack.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mattepiu/cortex/internal/coretypes"
)

// Config is the complete application configuration. Each top-level field
// groups the options spec.md §6 enumerates for that subsystem.
type Config struct {
	Profile       string              `mapstructure:"profile"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	Retrieval     RetrievalConfig     `mapstructure:"retrieval"`
	Consolidation ConsolidationConfig `mapstructure:"consolidation"`
	Decay         DecayConfig         `mapstructure:"decay"`
	Privacy       PrivacyConfig       `mapstructure:"privacy"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Session       SessionConfig       `mapstructure:"session"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// DatabaseConfig holds storage engine options (spec.md §6 "Storage").
type DatabaseConfig struct {
	Path           string        `mapstructure:"path"`
	WALMode        bool          `mapstructure:"wal_mode"`
	MmapSizeBytes  int64         `mapstructure:"mmap_size"`
	CacheSizeKB    int           `mapstructure:"cache_size"`
	BusyTimeoutMs  int           `mapstructure:"busy_timeout_ms"`
	ReadPoolSize   int           `mapstructure:"read_pool_size"`
	BackupInterval time.Duration `mapstructure:"backup_interval"`
	MaxBackups     int           `mapstructure:"max_backups"`
	AutoMigrate    bool          `mapstructure:"auto_migrate"`
}

// EmbeddingConfig holds embedding provider options (spec.md §6 "Embedding").
type EmbeddingConfig struct {
	Provider             string       `mapstructure:"provider"` // "ollama", "hashing" (test provider)
	Dimensions           int          `mapstructure:"dimensions"`
	MatryoshkaSearchDims int          `mapstructure:"matryoshka_search_dims"` // 0 disables truncated search
	BatchSize            int          `mapstructure:"batch_size"`
	Ollama               OllamaConfig `mapstructure:"ollama"`
}

// OllamaConfig holds the Ollama-specific settings for the embedding
// provider, kept from the teacher's internal/ai manager.
type OllamaConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	AutoDetect     bool    `mapstructure:"auto_detect"`
	BaseURL        string  `mapstructure:"base_url"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
	RequestsPerSec float64 `mapstructure:"requests_per_second"` // 0 disables throttling
	BurstSize      float64 `mapstructure:"burst_size"`
}

// RetrievalConfig holds retrieval pipeline options (spec.md §6 "Retrieval").
type RetrievalConfig struct {
	DefaultBudget  int  `mapstructure:"default_budget"` // tokens
	RRFK           int  `mapstructure:"rrf_k"`
	QueryExpansion bool `mapstructure:"query_expansion"`
}

// ConsolidationConfig holds consolidation pipeline options (spec.md §6
// "Consolidation").
type ConsolidationConfig struct {
	MinClusterSize      int     `mapstructure:"min_cluster_size"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	NoveltyThreshold    float64 `mapstructure:"novelty_threshold"`
	LLMPolish           bool    `mapstructure:"llm_polish"`
}

// DecayConfig holds confidence decay options (spec.md §6 "Decay").
type DecayConfig struct {
	HalfLifeOverrides      map[string]float64 `mapstructure:"half_life_overrides"` // days, keyed by coretypes.Kind
	ArchivalThreshold      float64            `mapstructure:"archival_threshold"`
	ProcessingIntervalSecs int                `mapstructure:"processing_interval_secs"`
}

// PrivacyConfig holds sanitizer/context options (spec.md §6 "Privacy").
type PrivacyConfig struct {
	NEREnabled     bool `mapstructure:"ner_enabled"`
	ContextScoring bool `mapstructure:"context_scoring"`
}

// ObservabilityConfig holds logging/tracing options (spec.md §6
// "Observability").
type ObservabilityConfig struct {
	LogLevel       string `mapstructure:"log_level"`
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
}

// SessionConfig holds session detection configuration, kept from the
// teacher's internal/memory/session.go strategies.
type SessionConfig struct {
	AutoGenerate bool   `mapstructure:"auto_generate"`
	Strategy     string `mapstructure:"strategy"` // "git-directory", "manual", "hash"
	ManualID     string `mapstructure:"manual_id"`
}

// LoggingConfig holds structured-logging output configuration, consumed by
// internal/logging.Init.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console, json
	Output string `mapstructure:"output"` // stderr, stdout, or a file path
}

// DefaultConfig returns the built-in defaults, the lowest-precedence layer.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	configDir := filepath.Join(homeDir, ".cortex")

	return &Config{
		Profile: "default",
		Database: DatabaseConfig{
			Path:           filepath.Join(configDir, "memories.db"),
			WALMode:        true,
			MmapSizeBytes:  268435456, // 256MiB
			CacheSizeKB:    -64000,    // sqlite negative cache_size = KB
			BusyTimeoutMs:  5000,
			ReadPoolSize:   4,
			BackupInterval: 24 * time.Hour,
			MaxBackups:     7,
			AutoMigrate:    true,
		},
		Embedding: EmbeddingConfig{
			Provider:             "ollama",
			Dimensions:           768,
			MatryoshkaSearchDims: 0,
			BatchSize:            32,
			Ollama: OllamaConfig{
				Enabled:        true,
				AutoDetect:     true,
				BaseURL:        "http://localhost:11434",
				EmbeddingModel: "nomic-embed-text",
				RequestsPerSec: 10,
				BurstSize:      20,
			},
		},
		Retrieval: RetrievalConfig{
			DefaultBudget:  4000,
			RRFK:           60,
			QueryExpansion: true,
		},
		Consolidation: ConsolidationConfig{
			MinClusterSize:      2,
			SimilarityThreshold: 0.75,
			NoveltyThreshold:    0.85,
			LLMPolish:           false,
		},
		Decay: DecayConfig{
			HalfLifeOverrides:      map[string]float64{},
			ArchivalThreshold:      0.15,
			ProcessingIntervalSecs: 3600,
		},
		Privacy: PrivacyConfig{
			NEREnabled:     false,
			ContextScoring: true,
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			TracingEnabled: false,
		},
		Session: SessionConfig{
			AutoGenerate: true,
			Strategy:     "git-directory",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load resolves configuration with the 4-layer precedence spec.md §6
// requires: CLI flags > environment variables > project file > user file >
// built-in defaults. flags may be nil, in which case only env/file/defaults
// apply (used by tests and by non-CLI embedders of the engine).
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".") // project file

	homeDir, _ := os.UserHomeDir()
	v.AddConfigPath(filepath.Join(homeDir, ".cortex")) // user file
	v.AddConfigPath("/etc/cortex")

	setDefaults(v)

	v.SetEnvPrefix("CORTEX")
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, coretypes.NewInvalidConfig("bind flags", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, coretypes.NewInvalidConfig("read config file", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, coretypes.NewInvalidConfig("unmarshal config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, coretypes.NewInvalidConfig("validate config", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("profile", d.Profile)

	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.wal_mode", d.Database.WALMode)
	v.SetDefault("database.mmap_size", d.Database.MmapSizeBytes)
	v.SetDefault("database.cache_size", d.Database.CacheSizeKB)
	v.SetDefault("database.busy_timeout_ms", d.Database.BusyTimeoutMs)
	v.SetDefault("database.read_pool_size", d.Database.ReadPoolSize)
	v.SetDefault("database.backup_interval", d.Database.BackupInterval)
	v.SetDefault("database.max_backups", d.Database.MaxBackups)
	v.SetDefault("database.auto_migrate", d.Database.AutoMigrate)

	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
	v.SetDefault("embedding.matryoshka_search_dims", d.Embedding.MatryoshkaSearchDims)
	v.SetDefault("embedding.batch_size", d.Embedding.BatchSize)
	v.SetDefault("embedding.ollama.enabled", d.Embedding.Ollama.Enabled)
	v.SetDefault("embedding.ollama.auto_detect", d.Embedding.Ollama.AutoDetect)
	v.SetDefault("embedding.ollama.base_url", d.Embedding.Ollama.BaseURL)
	v.SetDefault("embedding.ollama.embedding_model", d.Embedding.Ollama.EmbeddingModel)
	v.SetDefault("embedding.ollama.requests_per_second", d.Embedding.Ollama.RequestsPerSec)
	v.SetDefault("embedding.ollama.burst_size", d.Embedding.Ollama.BurstSize)

	v.SetDefault("retrieval.default_budget", d.Retrieval.DefaultBudget)
	v.SetDefault("retrieval.rrf_k", d.Retrieval.RRFK)
	v.SetDefault("retrieval.query_expansion", d.Retrieval.QueryExpansion)

	v.SetDefault("consolidation.min_cluster_size", d.Consolidation.MinClusterSize)
	v.SetDefault("consolidation.similarity_threshold", d.Consolidation.SimilarityThreshold)
	v.SetDefault("consolidation.novelty_threshold", d.Consolidation.NoveltyThreshold)
	v.SetDefault("consolidation.llm_polish", d.Consolidation.LLMPolish)

	v.SetDefault("decay.half_life_overrides", d.Decay.HalfLifeOverrides)
	v.SetDefault("decay.archival_threshold", d.Decay.ArchivalThreshold)
	v.SetDefault("decay.processing_interval_secs", d.Decay.ProcessingIntervalSecs)

	v.SetDefault("privacy.ner_enabled", d.Privacy.NEREnabled)
	v.SetDefault("privacy.context_scoring", d.Privacy.ContextScoring)

	v.SetDefault("observability.log_level", d.Observability.LogLevel)
	v.SetDefault("observability.tracing_enabled", d.Observability.TracingEnabled)

	v.SetDefault("session.auto_generate", d.Session.AutoGenerate)
	v.SetDefault("session.strategy", d.Session.Strategy)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
}

// Validate checks the invariants Load and callers constructing a Config by
// hand (tests) must satisfy.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.MaxBackups < 0 {
		return fmt.Errorf("database.max_backups must be >= 0")
	}
	if c.Database.ReadPoolSize < 1 {
		return fmt.Errorf("database.read_pool_size must be >= 1")
	}
	if c.Database.BusyTimeoutMs < 0 {
		return fmt.Errorf("database.busy_timeout_ms must be >= 0")
	}

	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be > 0")
	}
	if c.Embedding.MatryoshkaSearchDims > c.Embedding.Dimensions {
		return fmt.Errorf("embedding.matryoshka_search_dims must be <= embedding.dimensions")
	}
	if c.Embedding.Ollama.Enabled && c.Embedding.Ollama.BaseURL == "" {
		return fmt.Errorf("embedding.ollama.base_url is required when ollama is enabled")
	}

	if c.Retrieval.DefaultBudget <= 0 {
		return fmt.Errorf("retrieval.default_budget must be > 0")
	}
	if c.Retrieval.RRFK <= 0 {
		return fmt.Errorf("retrieval.rrf_k must be > 0")
	}

	if c.Consolidation.MinClusterSize < 2 {
		return fmt.Errorf("consolidation.min_cluster_size must be >= 2")
	}
	if c.Consolidation.SimilarityThreshold < 0 || c.Consolidation.SimilarityThreshold > 1 {
		return fmt.Errorf("consolidation.similarity_threshold must be in [0,1]")
	}
	if c.Consolidation.NoveltyThreshold < 0 || c.Consolidation.NoveltyThreshold > 1 {
		return fmt.Errorf("consolidation.novelty_threshold must be in [0,1]")
	}

	if c.Decay.ArchivalThreshold < 0 || c.Decay.ArchivalThreshold > 1 {
		return fmt.Errorf("decay.archival_threshold must be in [0,1]")
	}
	if c.Decay.ProcessingIntervalSecs <= 0 {
		return fmt.Errorf("decay.processing_interval_secs must be > 0")
	}

	validStrategies := map[string]bool{"git-directory": true, "manual": true, "hash": true}
	if !validStrategies[c.Session.Strategy] {
		return fmt.Errorf("session.strategy must be one of: git-directory, manual, hash")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: console, json")
	}

	return nil
}

// EnsureConfigDir creates the directory holding the configured database
// path, if it doesn't already exist.
func (c *Config) EnsureConfigDir() error {
	dir := filepath.Dir(c.Database.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// ConfigPath returns the user config directory.
func ConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".cortex")
}

// DatabasePath returns the default database path under ConfigPath.
func DatabasePath() string {
	return filepath.Join(ConfigPath(), "memories.db")
}
