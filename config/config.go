// Package config provides configuration loading and validation for the game.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/quizsnake/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all game configuration. A loaded Config is treated as
// read-only and shared by reference.
type Config struct {
	Grid      GridConfig          `yaml:"grid"`
	Snake     SnakeConfig         `yaml:"snake"`
	Food      FoodConfig          `yaml:"food"`
	Catalog   []components.Symbol `yaml:"catalog"`
	Telemetry TelemetryConfig     `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds board dimensions in cells.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// SnakeConfig holds the snake's starting layout and speed.
type SnakeConfig struct {
	InitialLength    int           `yaml:"initial_length"`
	InitialDirection string        `yaml:"initial_direction"`
	TickInterval     time.Duration `yaml:"tick_interval"` // time between movement steps
}

// FoodConfig holds food pool parameters.
type FoodConfig struct {
	Count  int `yaml:"count"`  // items kept on the board
	Points int `yaml:"points"` // awarded per correct item
}

// TelemetryConfig holds headless run reporting parameters.
type TelemetryConfig struct {
	SummaryQuantiles []float64 `yaml:"summary_quantiles"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	InitialDirection components.Direction
	Start            components.Coord // head of the initial snake
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	return Load("")
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse overlays YAML data onto cfg. Only fields present in data change;
// a catalog in data replaces the existing one.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// Validate checks that a game can be built from cfg and fills Derived.
// Every error wraps ErrInvalid.
func (c *Config) Validate() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalid, c.Grid.Width, c.Grid.Height)
	}
	if c.Snake.InitialLength < 1 {
		return fmt.Errorf("%w: snake.initial_length must be >= 1, got %d", ErrInvalid, c.Snake.InitialLength)
	}
	dir, err := components.ParseDirection(c.Snake.InitialDirection)
	if err != nil {
		return fmt.Errorf("%w: snake.initial_direction: %v", ErrInvalid, err)
	}
	if c.Snake.TickInterval <= 0 {
		return fmt.Errorf("%w: snake.tick_interval must be positive, got %s", ErrInvalid, c.Snake.TickInterval)
	}
	if c.Food.Count < 1 {
		return fmt.Errorf("%w: food.count must be >= 1, got %d", ErrInvalid, c.Food.Count)
	}
	if c.Food.Points < 0 {
		return fmt.Errorf("%w: food.points must not be negative, got %d", ErrInvalid, c.Food.Points)
	}
	if len(c.Catalog) == 0 {
		return fmt.Errorf("%w: catalog is empty", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Catalog))
	for i, sym := range c.Catalog {
		if sym.Glyph == "" {
			return fmt.Errorf("%w: catalog[%d] has no glyph", ErrInvalid, i)
		}
		if seen[sym.Glyph] {
			return fmt.Errorf("%w: catalog glyph %q listed twice", ErrInvalid, sym.Glyph)
		}
		seen[sym.Glyph] = true
	}
	for _, q := range c.Telemetry.SummaryQuantiles {
		if q < 0 || q > 1 {
			return fmt.Errorf("%w: telemetry quantile %v outside [0,1]", ErrInvalid, q)
		}
	}

	start := components.Coord{X: c.Grid.Width / 4, Y: c.Grid.Height / 2}
	tail := start
	for i := 1; i < c.Snake.InitialLength; i++ {
		tail = tail.Add(dir.Opposite())
	}
	if tail.X < 0 || tail.X >= c.Grid.Width || tail.Y < 0 || tail.Y >= c.Grid.Height {
		return fmt.Errorf("%w: initial snake of length %d heading %s does not fit from %v",
			ErrInvalid, c.Snake.InitialLength, dir, start)
	}
	if cells := c.Grid.Width * c.Grid.Height; cells < c.Snake.InitialLength+c.Food.Count {
		return fmt.Errorf("%w: %d cells cannot hold a snake of %d and %d food items",
			ErrInvalid, cells, c.Snake.InitialLength, c.Food.Count)
	}

	c.Derived = DerivedConfig{InitialDirection: dir, Start: start}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
