package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file at the project root.
const FileName = "ledgerimport.yaml"

// Config represents the top-level ledgerimport.yaml configuration.
type Config struct {
	Import   ImportConfig   `yaml:"import"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Sink     SinkConfig     `yaml:"sink"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ImportConfig controls how ledger sheets are read.
type ImportConfig struct {
	Note           string   `yaml:"note"`
	Sheet          string   `yaml:"sheet,omitempty"`
	InboundMarkers []string `yaml:"inbound_markers"`
	BatchSize      int      `yaml:"batch_size"`
}

// CatalogConfig selects where product aliases come from.
type CatalogConfig struct {
	Source string `yaml:"source"` // "csv" or "postgres"
	Path   string `yaml:"path"`   // csv catalog, relative to the project root
}

// SinkConfig selects where transactions go.
type SinkConfig struct {
	Kind   string `yaml:"kind"`    // "postgres", "script" or "csv"
	OutDir string `yaml:"out_dir"` // script and csv output, relative to the project root
}

// DatabaseConfig holds connection settings. URL is normally left empty in
// the file and supplied through DATABASE_URL.
type DatabaseConfig struct {
	URL      string `yaml:"url,omitempty"`
	MaxConns int    `yaml:"max_conns"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a ledgerimport.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			Note:           "Stock import",
			InboundMarkers: []string{"OPEN", "IN"},
			BatchSize:      100,
		},
		Catalog: CatalogConfig{
			Source: "csv",
			Path:   "catalog/products.csv",
		},
		Sink: SinkConfig{
			Kind:   "script",
			OutDir: "out",
		},
		Database: DatabaseConfig{
			MaxConns: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks enumerated fields and bounds.
func (c *Config) Validate() error {
	var errs []error
	switch c.Catalog.Source {
	case "csv", "postgres":
	default:
		errs = append(errs, fmt.Errorf("catalog.source must be csv or postgres, got %q", c.Catalog.Source))
	}
	switch c.Sink.Kind {
	case "postgres", "script", "csv":
	default:
		errs = append(errs, fmt.Errorf("sink.kind must be postgres, script or csv, got %q", c.Sink.Kind))
	}
	if c.Import.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("import.batch_size must not be negative, got %d", c.Import.BatchSize))
	}
	if c.Database.MaxConns < 0 {
		errs = append(errs, fmt.Errorf("database.max_conns must not be negative, got %d", c.Database.MaxConns))
	}
	return errors.Join(errs...)
}

// ApplyEnv loads a .env file from dir when one exists, then lets
// DATABASE_URL override database.url. Variables already set in the process
// environment win over the .env file.
func (c *Config) ApplyEnv(dir string) error {
	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
	}
	return nil
}
