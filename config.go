package kartfx

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds host-side settings for running effects.
type Config struct {
	// TickRate is the number of simulation ticks per second.
	TickRate int `yaml:"tick_rate"`
	// MaxCatchUpTicks bounds how many ticks a single Advance may run.
	MaxCatchUpTicks int `yaml:"max_catch_up_ticks"`
	// MaxParticles caps live particles per world; 0 means no cap.
	MaxParticles int `yaml:"max_particles"`

	Debug     bool   `yaml:"debug"`
	LogPrefix string `yaml:"log_prefix"`

	CorrectRotationSpread bool `yaml:"correct_rotation_spread"`
}

func DefaultConfig() Config {
	return Config{
		TickRate:        60,
		MaxCatchUpTicks: 5,
		MaxParticles:    4096,
		LogPrefix:       "kartfx",
	}
}

// LoadConfig reads a YAML config over the defaults. A missing file yields the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, err
	}
	return ParseConfig(b)
}

func ParseConfig(b []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("config: tick_rate must be positive, got %d", c.TickRate)
	}
	if c.MaxCatchUpTicks < 1 {
		return fmt.Errorf("config: max_catch_up_ticks must be at least 1, got %d", c.MaxCatchUpTicks)
	}
	if c.MaxParticles < 0 {
		return fmt.Errorf("config: max_particles must not be negative, got %d", c.MaxParticles)
	}
	return nil
}

// TickDuration is the wall-clock length of one tick.
func (c Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}
