// Package config loads settings for the day loop from defaults, an optional YAML file, and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/saylorsolutions/dayloop/env"
	"github.com/saylorsolutions/dayloop/slogx"
)

// EnvPrefix is prepended to every environment variable name read by [Load].
const EnvPrefix = "DAYLOOP_"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the full set of day loop settings.
type Config struct {
	StartingTime time.Duration `yaml:"starting_time"` // Length of a day.
	Tick         time.Duration `yaml:"tick"`          // Time between timer updates.
	Days         int           `yaml:"days"`          // Number of days to run, 0 runs until interrupted.
	AutoAdvance  bool          `yaml:"auto_advance"`  // Start the next day as soon as one ends.
	LogLevel     string        `yaml:"log_level"`
	LogFormat    string        `yaml:"log_format"`
	LogFile      string        `yaml:"log_file"` // Also write JSON logs to this file when set.
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		StartingTime: 15 * time.Second,
		Tick:         100 * time.Millisecond,
		Days:         0,
		AutoAdvance:  true,
		LogLevel:     "info",
		LogFormat:    string(slogx.FormatAuto),
	}
}

// Load builds a [Config] from defaults, then the YAML file at path if it's not empty, then environment variables.
// Environment variables are the upper-case YAML keys with [EnvPrefix], like DAYLOOP_STARTING_TIME.
func Load(path string) (Config, error) {
	conf := Default()
	if len(path) > 0 {
		if err := conf.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	conf.mergeEnv()
	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

// Parse decodes YAML over the defaults and validates the result.
// Keys missing from data keep their default values.
func Parse(data []byte) (Config, error) {
	conf := Default()
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: file '%s': %v", ErrInvalidConfig, path, err)
	}
	return nil
}

func (c *Config) mergeEnv() {
	c.StartingTime = env.Duration(EnvPrefix+"STARTING_TIME", c.StartingTime)
	c.Tick = env.Duration(EnvPrefix+"TICK", c.Tick)
	c.Days = int(env.Int(EnvPrefix+"DAYS", int64(c.Days)))
	c.AutoAdvance = env.Bool(EnvPrefix+"AUTO_ADVANCE", c.AutoAdvance)
	c.LogLevel = env.Val(EnvPrefix+"LOG_LEVEL", c.LogLevel)
	c.LogFormat = env.Val(EnvPrefix+"LOG_FORMAT", c.LogFormat)
	c.LogFile = env.Val(EnvPrefix+"LOG_FILE", c.LogFile)
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	var errs []error
	if c.StartingTime <= 0 {
		errs = append(errs, fmt.Errorf("%w: starting_time must be > 0, got %s", ErrInvalidConfig, c.StartingTime))
	}
	if c.Tick <= 0 {
		errs = append(errs, fmt.Errorf("%w: tick must be > 0, got %s", ErrInvalidConfig, c.Tick))
	}
	if c.Days < 0 {
		errs = append(errs, fmt.Errorf("%w: days must be >= 0, got %d", ErrInvalidConfig, c.Days))
	}
	if _, err := slogx.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err))
	}
	if _, err := slogx.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, fmt.Errorf("%w: log_format: %w", ErrInvalidConfig, err))
	}
	return errors.Join(errs...)
}
