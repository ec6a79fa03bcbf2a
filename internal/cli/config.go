package cli

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eleven-am/schemaviz/internal/atlascloud"
	"github.com/eleven-am/schemaviz/internal/history"
	"github.com/eleven-am/schemaviz/internal/logger"
)

// Environment variables
const (
	HostEnv   = "SCHEMAVIZ_HOST"
	ConfigEnv = "SCHEMAVIZ_CONFIG"
)

var configLocations = []string{"schemaviz.yaml", "schemaviz.yml", ".schemaviz.yaml", ".schemaviz.yml"}

// Config represents the schemaviz.yaml configuration structure
type Config struct {
	Database struct {
		Engine       string `yaml:"engine"`
		URL          string `yaml:"url"`
		HistoryTable string `yaml:"history_table"`
	} `yaml:"database"`

	Migrations struct {
		Directory string `yaml:"directory"`
	} `yaml:"migrations"`

	Atlas struct {
		Host    string        `yaml:"host"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"atlas"`
}

// LoadConfig reads the configuration file at path, or the first file found
// by GetConfigPath when path is empty. Without any file the defaults apply.
// SCHEMAVIZ_HOST overrides the configured Atlas host.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = GetConfigPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		logger.Config().Debug("Loaded config file", "path", path)
	}

	if host := os.Getenv(HostEnv); host != "" {
		cfg.Atlas.Host = host
	}

	if cfg.Migrations.Directory == "" {
		cfg.Migrations.Directory = "./migrations"
	}
	if cfg.Database.HistoryTable == "" {
		cfg.Database.HistoryTable = history.DefaultTable
	}
	if cfg.Atlas.Host == "" {
		cfg.Atlas.Host = atlascloud.DefaultHost
	}
	if cfg.Atlas.Timeout == 0 {
		cfg.Atlas.Timeout = 60 * time.Second
	}

	return &cfg, nil
}

func GetConfigPath() string {
	if path := os.Getenv(ConfigEnv); path != "" {
		return path
	}

	for _, loc := range configLocations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}
