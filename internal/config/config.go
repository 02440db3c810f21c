package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level budgetlens.yaml configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Import    ImportConfig    `yaml:"import"`
	Hierarchy HierarchyConfig `yaml:"hierarchy"`
}

// DatabaseConfig locates the allocation database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls CLI logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ImportConfig locates the export drop directory.
type ImportConfig struct {
	Dir string `yaml:"dir"`
}

// HierarchyConfig defines the organizational tree budgets are tracked
// against.
type HierarchyConfig struct {
	Departments []Department `yaml:"departments"`
}

// Department is one top-level budget owner.
type Department struct {
	Name    string   `yaml:"name"`
	Regions []Region `yaml:"regions,omitempty"`
}

// Region groups districts under a department.
type Region struct {
	Name      string   `yaml:"name"`
	Districts []string `yaml:"districts,omitempty"`
}

// DepartmentNames returns the set of configured department names, the
// aggregator's notion of "known".
func (h HierarchyConfig) DepartmentNames() map[string]bool {
	names := make(map[string]bool, len(h.Departments))
	for _, d := range h.Departments {
		names[d.Name] = true
	}
	return names
}

// Load reads a budgetlens.yaml file from disk. BUDGETLENS_DB and
// BUDGETLENS_LOG_LEVEL override the file, with a .env file honored the same
// way.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
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
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Path == "" {
		cfg.Database.Path = "budgetlens.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Import.Dir == "" {
		cfg.Import.Dir = "import"
	}
}

func applyEnv(cfg *Config) {
	_ = godotenv.Load() // a missing .env is fine
	if v := os.Getenv("BUDGETLENS_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("BUDGETLENS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
