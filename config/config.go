// Package config handles loading and saving of broad phase settings.
package config

import (
	"os"
	"path/filepath"

	"github.com/akmonengine/bvh"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config holds all settings.
type Config struct {
	Tree    TreeConfig    `yaml:"tree"`
	Logging LoggingConfig `yaml:"logging"`
}

// TreeConfig holds the tuning of the dynamic tree.
type TreeConfig struct {
	Margin               float64 `yaml:"margin"`                // Fattening of leaf boxes, world units
	PredictionMultiplier float64 `yaml:"prediction_multiplier"` // Scale of the displacement prediction
	InitialCapacity      int     `yaml:"initial_capacity"`      // Node pool slots allocated up front
}

// LoggingConfig holds logging settings. The rotation fields apply to LogFile only.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	Quiet   bool   `yaml:"quiet"` // No console output

	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
}

// Default returns a Config with the tree's built-in values.
func Default() *Config {
	return &Config{
		Tree: TreeConfig{
			Margin:               bvh.AABBExtension,
			PredictionMultiplier: bvh.AABBMultiplier,
			InitialCapacity:      16,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep their default.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading config from %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}

	return cfg, nil
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	// Create parent directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports every out-of-range setting.
func (c *Config) Validate() error {
	var err error
	if c.Tree.Margin < 0 {
		err = multierr.Append(err, errors.Errorf("tree.margin must be >= 0, got %v", c.Tree.Margin))
	}
	if c.Tree.PredictionMultiplier < 0 {
		err = multierr.Append(err, errors.Errorf("tree.prediction_multiplier must be >= 0, got %v", c.Tree.PredictionMultiplier))
	}
	if c.Tree.InitialCapacity < 1 {
		err = multierr.Append(err, errors.Errorf("tree.initial_capacity must be >= 1, got %d", c.Tree.InitialCapacity))
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		err = multierr.Append(err, errors.New("logging rotation limits must be >= 0"))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, errors.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	return err
}

// Options converts the tree settings to tree options.
func (c TreeConfig) Options() []bvh.Option {
	return []bvh.Option{
		bvh.WithMargin(c.Margin),
		bvh.WithPredictionMultiplier(c.PredictionMultiplier),
		bvh.WithInitialCapacity(c.InitialCapacity),
	}
}
