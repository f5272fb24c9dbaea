// Package config loads cpgrid settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/cpgrid/pkg/tessellate"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds all cpgrid configuration.
type Config struct {
	Tessellation TessellationConfig `yaml:"tessellation"`
	Logging      LoggingConfig      `yaml:"logging"`
	Export       ExportConfig       `yaml:"export"`
}

// TessellationConfig mirrors tessellate.Options.
type TessellationConfig struct {
	Epsilon        float64 `yaml:"epsilon"`
	SnapNeighbours bool    `yaml:"snap_neighbours"`
	SnapTolerance  float64 `yaml:"snap_tolerance"`
	Invariants     string  `yaml:"invariants"` // strict, log, off
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// ExportConfig configures mesh export.
type ExportConfig struct {
	STL    string `yaml:"stl"`    // output path, empty to skip
	Filter string `yaml:"filter"` // all, boundary, faults
}

// Export filters.
const (
	FilterAll      = "all"
	FilterBoundary = "boundary"
	FilterFaults   = "faults"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	opts := tessellate.DefaultOptions()
	return &Config{
		Tessellation: TessellationConfig{
			Epsilon:        opts.Epsilon,
			SnapNeighbours: opts.SnapNeighbours,
			SnapTolerance:  opts.SnapTolerance,
			Invariants:     opts.Invariants.String(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Export: ExportConfig{
			Filter: FilterAll,
		},
	}
}

// Load reads a configuration file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("CPGRID_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if path := os.Getenv("CPGRID_STL"); path != "" {
		c.Export.STL = path
	}
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Tessellation.Epsilon < 0 {
		errs = append(errs, fmt.Errorf("tessellation.epsilon must not be negative, got %g", c.Tessellation.Epsilon))
	}
	if c.Tessellation.SnapTolerance < 0 {
		errs = append(errs, fmt.Errorf("tessellation.snap_tolerance must not be negative, got %g", c.Tessellation.SnapTolerance))
	}
	if _, err := tessellate.ParseInvariantMode(c.Tessellation.Invariants); err != nil {
		errs = append(errs, fmt.Errorf("tessellation.invariants: %w", err))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	switch c.Export.Filter {
	case FilterAll, FilterBoundary, FilterFaults:
	default:
		errs = append(errs, fmt.Errorf("export.filter must be all, boundary or faults, got %q", c.Export.Filter))
	}
	return errors.Join(errs...)
}

// Options converts the tessellation settings. The logger is attached to
// the result.
func (t TessellationConfig) Options(log *zap.Logger) (tessellate.Options, error) {
	mode, err := tessellate.ParseInvariantMode(t.Invariants)
	if err != nil {
		return tessellate.Options{}, err
	}
	return tessellate.Options{
		Epsilon:        t.Epsilon,
		SnapNeighbours: t.SnapNeighbours,
		SnapTolerance:  t.SnapTolerance,
		Invariants:     mode,
		Logger:         log,
	}, nil
}

// Logger builds a zap logger at the configured level and format. verbose
// forces debug level.
func (l LoggingConfig) Logger(verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("logging.level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = l.Format
	if l.Format == "console" {
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
