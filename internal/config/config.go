package config

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/metaball/internal/shade"
)

const (
	DefaultMapping       = "banded"
	DefaultWidth         = 256
	DefaultHeight        = 256
	DefaultFrames        = 240
	DefaultFPS           = 60
	DefaultTimeIncrement = 1.0 / 60
	DefaultRate          = 0.2
	DefaultTheme         = "midnight"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Mapping       string  `yaml:"mapping"`
	Seed          int64   `yaml:"seed"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Frames        int     `yaml:"frames"`
	FPS           int     `yaml:"fps"`
	TimeIncrement float64 `yaml:"time_increment"`
	Rate          float64 `yaml:"rate"`
	Workers       int     `yaml:"workers"`
	Theme         string  `yaml:"theme"`
	Output        string  `yaml:"output"`
}

func DefaultConfig() *Config {
	return &Config{
		Mapping:       DefaultMapping,
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Frames:        DefaultFrames,
		FPS:           DefaultFPS,
		TimeIncrement: DefaultTimeIncrement,
		Rate:          DefaultRate,
		Theme:         DefaultTheme,
		Output:        "metaball.gif",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values the renderer and driver cannot recover from.
func (c *Config) Validate() error {
	if !shade.NewRegistry().Has(c.Mapping) {
		return fmt.Errorf("%w: unknown mapping %q", ErrInvalid, c.Mapping)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps %d", ErrInvalid, c.FPS)
	}
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames %d", ErrInvalid, c.Frames)
	}
	if c.Rate < -1 || c.Rate > 1 {
		return fmt.Errorf("%w: rate %g outside [-1, 1]", ErrInvalid, c.Rate)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	}
	if c.TimeIncrement < 0 || math.IsNaN(c.TimeIncrement) || math.IsInf(c.TimeIncrement, 0) {
		return fmt.Errorf("%w: time increment %g", ErrInvalid, c.TimeIncrement)
	}
	return nil
}

// Clone returns a copy safe to modify.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// NewRand returns the source of randomness for the configured seed. A zero
// seed draws from the clock.
func (c *Config) NewRand() *rand.Rand {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
