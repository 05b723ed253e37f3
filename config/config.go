// Package config loads the desk application's settings from an optional
// YAML file, a .env file and LIBRARY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "LIBRARY_"

type (
	Config struct {
		Database DatabaseConfig `yaml:"database"`
		Log      LogConfig      `yaml:"log"`
	}

	DatabaseConfig struct {
		Path           string `yaml:"path"`
		SeedSampleData bool   `yaml:"seed_sample_data"`
	}

	// LogConfig selects the zap encoder and sink. Output is "stdout",
	// "stderr" or "file"; file output rotates through lumberjack.
	LogConfig struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"` // "console" or "json"
		Output     string `yaml:"output"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	}
)

func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "library.db"},
		Log: LogConfig{
			Level:      "warn",
			Format:     "console",
			Output:     "stderr",
			File:       "logs/library.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load builds the configuration. A missing file at path is not an error;
// an empty path skips the file entirely.
func Load(path string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(resolveEnv(data), cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path is required")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	switch c.Log.Output {
	case "stdout", "stderr":
	case "file":
		if c.Log.File == "" {
			return errors.New("log.file is required when log.output is file")
		}
	default:
		return fmt.Errorf("log.output must be stdout, stderr or file, got %q", c.Log.Output)
	}
	return nil
}

var envPattern = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// resolveEnv replaces ${VAR} and ${VAR:default} placeholders in YAML content.
func resolveEnv(content []byte) []byte {
	return envPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		m := envPattern.FindSubmatch(match)
		if v, ok := os.LookupEnv(string(m[1])); ok {
			return []byte(v)
		}
		return m[2]
	})
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"DB_PATH":    &cfg.Database.Path,
		"LOG_LEVEL":  &cfg.Log.Level,
		"LOG_FORMAT": &cfg.Log.Format,
		"LOG_OUTPUT": &cfg.Log.Output,
		"LOG_FILE":   &cfg.Log.File,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}
	ints := map[string]*int{
		"LOG_MAX_SIZE_MB":  &cfg.Log.MaxSizeMB,
		"LOG_MAX_BACKUPS":  &cfg.Log.MaxBackups,
		"LOG_MAX_AGE_DAYS": &cfg.Log.MaxAgeDays,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = n
	}
	if v, ok := os.LookupEnv(envPrefix + "SEED_SAMPLE_DATA"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSEED_SAMPLE_DATA: %w", envPrefix, err)
		}
		cfg.Database.SeedSampleData = b
	}
	return nil
}
