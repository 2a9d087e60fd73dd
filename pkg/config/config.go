// Package config loads and saves the hanoi configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gwillem/hanoiarm/pkg/choreo"
	"github.com/gwillem/hanoiarm/pkg/robot"
)

const DefaultConfigFile = "hanoi.json"

// Config holds the full configuration
type Config struct {
	Arm          robot.ArmConfig `json:"arm" yaml:"arm"`
	Choreography choreo.Config   `json:"choreography" yaml:"choreography"`
	Redis        RedisConfig     `json:"redis" yaml:"redis"`
	Metrics      MetricsConfig   `json:"metrics" yaml:"metrics"`
}

// RedisConfig holds the Redis connection used for the redis backend and the
// shared enable flag.
type RedisConfig struct {
	Addr      string `json:"addr" yaml:"addr"`
	DB        int    `json:"db" yaml:"db"`
	EnableKey string `json:"enable_key" yaml:"enable_key"`
}

// MetricsConfig holds the metrics endpoint settings. An empty address
// disables the endpoint.
type MetricsConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// Default returns a configuration with the reference rig constants and no
// arm attached.
func Default() *Config {
	return &Config{
		Arm:          robot.DefaultArmConfig(),
		Choreography: choreo.DefaultConfig(),
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			EnableKey: "hanoi:enabled",
		},
	}
}

// Validate checks the choreography constants.
func (c *Config) Validate() error {
	if err := c.Choreography.Validate(); err != nil {
		return fmt.Errorf("choreography: %w", err)
	}
	return nil
}

// Load loads configuration from the default config file
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom loads configuration from a specific file. Values missing from the
// file keep their defaults. Files ending in .yaml or .yml are read as YAML.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Exists returns true if the config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
