// Package config provides configuration loading and management for diffinpaint.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"diffinpaint/internal/models"
	"diffinpaint/pkg/colorspace"
	"diffinpaint/pkg/solver"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "diffinpaint.yaml"

// Config represents the application configuration loaded from YAML
type Config struct {
	// Image source parameters
	Image struct {
		// Path is the source image to inpaint
		Path string `yaml:"path"`

		// Mask is an optional image whose black pixels seed the mask
		Mask string `yaml:"mask"`

		// SelfMask seeds the mask from the source's own black pixels
		SelfMask bool `yaml:"selfMask"`

		// Colorspace is the channel representation: rgb, hsluv or lab
		Colorspace string `yaml:"colorspace"`

		// MaxDimension downscales larger images; 0 keeps the original size
		MaxDimension int `yaml:"maxDimension"`
	} `yaml:"image"`

	// Fallback gradient used when the source cannot be decoded
	Fallback struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"fallback"`

	// Solver parameters
	Solver struct {
		// Algorithm is laplace or biharmonic
		Algorithm string `yaml:"algorithm"`

		// IterationsPerBatch is the number of passes run per tick
		IterationsPerBatch int `yaml:"iterationsPerBatch"`

		// Ticks is the number of batches the headless fill runs
		Ticks int `yaml:"ticks"`

		// Seed selects the warm start for masked pixels: none or nearest
		Seed string `yaml:"seed"`
	} `yaml:"solver"`

	Brush struct {
		Radius int `yaml:"radius"`
	} `yaml:"brush"`

	// Output parameters
	Output struct {
		// SavePath receives the buffer on the save key and after a headless fill
		SavePath string `yaml:"savePath"`

		// SaveIntermediaryResults determines whether the headless fill
		// writes snapshots while solving
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// IntermediaryDir is where snapshots are written
		IntermediaryDir string `yaml:"intermediaryDir"`

		// SnapshotEvery is the number of ticks between snapshots
		SnapshotEvery int `yaml:"snapshotEvery"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Image.Colorspace = "rgb"

	cfg.Fallback.Width = 800
	cfg.Fallback.Height = 600

	cfg.Solver.Algorithm = models.Laplace.String()
	cfg.Solver.IterationsPerBatch = solver.DefaultIterationsPerBatch
	cfg.Solver.Ticks = 100
	cfg.Solver.Seed = SeedNone

	cfg.Brush.Radius = models.DefaultBrushRadius

	cfg.Output.SavePath = "saved.png"
	cfg.Output.IntermediaryDir = "intermediary_results"
	cfg.Output.SnapshotEvery = 10

	return cfg
}

// Warm start modes.
const (
	SeedNone    = "none"
	SeedNearest = "nearest"
)

// ParseAlgorithm maps a configuration name to an algorithm.
func ParseAlgorithm(name string) (models.Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "laplace", "membrane":
		return models.Laplace, nil
	case "biharmonic", "thinplate", "thin-plate":
		return models.Biharmonic, nil
	default:
		return 0, fmt.Errorf("unknown algorithm %q", name)
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := colorspace.Parse(c.Image.Colorspace); err != nil {
		errs = append(errs, err)
	}
	if c.Image.MaxDimension < 0 {
		errs = append(errs, fmt.Errorf("maxDimension must not be negative"))
	}
	if c.Fallback.Width <= 0 || c.Fallback.Height <= 0 {
		errs = append(errs, fmt.Errorf("fallback size must be positive, got %dx%d", c.Fallback.Width, c.Fallback.Height))
	}
	if _, err := ParseAlgorithm(c.Solver.Algorithm); err != nil {
		errs = append(errs, err)
	}
	if c.Solver.IterationsPerBatch <= 0 {
		errs = append(errs, fmt.Errorf("iterationsPerBatch must be positive"))
	}
	if c.Solver.Ticks < 0 {
		errs = append(errs, fmt.Errorf("ticks must not be negative"))
	}
	switch c.Solver.Seed {
	case "", SeedNone, SeedNearest:
	default:
		errs = append(errs, fmt.Errorf("unknown seed mode %q", c.Solver.Seed))
	}
	if c.Brush.Radius < models.MinBrushRadius || c.Brush.Radius > models.MaxBrushRadius {
		errs = append(errs, fmt.Errorf("brush radius must be within [%d, %d]", models.MinBrushRadius, models.MaxBrushRadius))
	}
	if c.Output.SaveIntermediaryResults && c.Output.SnapshotEvery <= 0 {
		errs = append(errs, fmt.Errorf("snapshotEvery must be positive"))
	}
	return errors.Join(errs...)
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
