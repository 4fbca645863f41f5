package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Database.MaxBackups != 7 {
		t.Errorf("Expected MaxBackups=7, got %d", cfg.Database.MaxBackups)
	}
	if cfg.Database.BackupInterval != 24*time.Hour {
		t.Errorf("Expected BackupInterval=24h, got %v", cfg.Database.BackupInterval)
	}
	if !cfg.Database.AutoMigrate {
		t.Error("Expected AutoMigrate=true")
	}
	if !cfg.Database.WALMode {
		t.Error("Expected WALMode=true")
	}
	if cfg.Database.ReadPoolSize != 4 {
		t.Errorf("Expected ReadPoolSize=4, got %d", cfg.Database.ReadPoolSize)
	}

	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("Expected Dimensions=768, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.Ollama.EmbeddingModel != "nomic-embed-text" {
		t.Errorf("Expected EmbeddingModel=nomic-embed-text, got %s", cfg.Embedding.Ollama.EmbeddingModel)
	}
	if cfg.Embedding.Ollama.BaseURL != "http://localhost:11434" {
		t.Errorf("Expected Ollama BaseURL=http://localhost:11434, got %s", cfg.Embedding.Ollama.BaseURL)
	}

	if cfg.Retrieval.RRFK != 60 {
		t.Errorf("Expected RRFK=60, got %d", cfg.Retrieval.RRFK)
	}

	if cfg.Consolidation.MinClusterSize != 2 {
		t.Errorf("Expected MinClusterSize=2, got %d", cfg.Consolidation.MinClusterSize)
	}

	if cfg.Decay.ArchivalThreshold != 0.15 {
		t.Errorf("Expected ArchivalThreshold=0.15, got %v", cfg.Decay.ArchivalThreshold)
	}

	if !cfg.Session.AutoGenerate {
		t.Error("Expected Session.AutoGenerate=true")
	}
	if cfg.Session.Strategy != "git-directory" {
		t.Errorf("Expected Strategy=git-directory, got %s", cfg.Session.Strategy)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		expectErr bool
	}{
		{
			name:      "valid config",
			modify:    func(c *Config) {},
			expectErr: false,
		},
		{
			name: "empty database path",
			modify: func(c *Config) {
				c.Database.Path = ""
			},
			expectErr: true,
		},
		{
			name: "negative max backups",
			modify: func(c *Config) {
				c.Database.MaxBackups = -1
			},
			expectErr: true,
		},
		{
			name: "zero read pool size",
			modify: func(c *Config) {
				c.Database.ReadPoolSize = 0
			},
			expectErr: true,
		},
		{
			name: "invalid session strategy",
			modify: func(c *Config) {
				c.Session.Strategy = "invalid"
			},
			expectErr: true,
		},
		{
			name: "invalid logging level",
			modify: func(c *Config) {
				c.Logging.Level = "invalid"
			},
			expectErr: true,
		},
		{
			name: "empty ollama base url when enabled",
			modify: func(c *Config) {
				c.Embedding.Ollama.Enabled = true
				c.Embedding.Ollama.BaseURL = ""
			},
			expectErr: true,
		},
		{
			name: "zero embedding dimensions",
			modify: func(c *Config) {
				c.Embedding.Dimensions = 0
			},
			expectErr: true,
		},
		{
			name: "matryoshka dims exceed full dims",
			modify: func(c *Config) {
				c.Embedding.MatryoshkaSearchDims = c.Embedding.Dimensions + 1
			},
			expectErr: true,
		},
		{
			name: "cluster size below minimum",
			modify: func(c *Config) {
				c.Consolidation.MinClusterSize = 1
			},
			expectErr: true,
		},
		{
			name: "archival threshold out of range",
			modify: func(c *Config) {
				c.Decay.ArchivalThreshold = 1.5
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.expectErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd) //nolint:errcheck
	_ = os.Chdir(tmpDir)

	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	defer os.Setenv("HOME", oldHome)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Expected no error with missing config, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected config, got nil")
	}
	if cfg.Retrieval.RRFK != 60 {
		t.Errorf("Expected default rrf_k=60, got %d", cfg.Retrieval.RRFK)
	}
}

func TestLoadConfig_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
profile: test
database:
  path: /tmp/test.db
  backup_interval: 12h
  max_backups: 3
  auto_migrate: false
retrieval:
  default_budget: 2000
  rrf_k: 40
session:
  auto_generate: false
  strategy: manual
logging:
  level: debug
  format: json
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd) //nolint:errcheck
	_ = os.Chdir(tmpDir)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Profile != "test" {
		t.Errorf("Expected profile=test, got %s", cfg.Profile)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Expected database path=/tmp/test.db, got %s", cfg.Database.Path)
	}
	if cfg.Database.MaxBackups != 3 {
		t.Errorf("Expected max_backups=3, got %d", cfg.Database.MaxBackups)
	}
	if cfg.Retrieval.RRFK != 40 {
		t.Errorf("Expected rrf_k=40, got %d", cfg.Retrieval.RRFK)
	}
	if cfg.Session.Strategy != "manual" {
		t.Errorf("Expected strategy=manual, got %s", cfg.Session.Strategy)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected level=debug, got %s", cfg.Logging.Level)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(tmpDir, "subdir", "test.db"),
		},
	}

	if err := cfg.EnsureConfigDir(); err != nil {
		t.Fatalf("EnsureConfigDir failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "subdir")); os.IsNotExist(err) {
		t.Error("Config directory was not created")
	}
}

func TestConfigPath(t *testing.T) {
	path := ConfigPath()
	if path == "" {
		t.Error("ConfigPath returned empty string")
	}

	homeDir, _ := os.UserHomeDir()
	expected := filepath.Join(homeDir, ".cortex")
	if path != expected {
		t.Errorf("Expected %s, got %s", expected, path)
	}
}

func TestDatabasePath(t *testing.T) {
	path := DatabasePath()
	if path == "" {
		t.Error("DatabasePath returned empty string")
	}

	if filepath.Base(path) != "memories.db" {
		t.Errorf("Expected database file named memories.db, got %s", filepath.Base(path))
	}
}
