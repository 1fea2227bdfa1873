// Package config loads the engine's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EngineConfig is the top-level engine.yaml structure.
type EngineConfig struct {
	Version int `yaml:"version"`
	Engine  struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"engine"`
	Content struct {
		Dir string `yaml:"dir"`
	} `yaml:"content"`
	Network struct {
		APIPort int    `yaml:"api_port"`
		MQTTURL string `yaml:"mqtt_url"`
	} `yaml:"network"`
	Persistence struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"persistence"`
}

// APIPort returns the configured companion API port, defaulting to 8080.
func (c *EngineConfig) APIPort() int {
	if c.Network.APIPort == 0 {
		return 8080
	}
	return c.Network.APIPort
}

// ContentDir returns the content directory, defaulting to "content".
func (c *EngineConfig) ContentDir() string {
	if c.Content.Dir == "" {
		return "content"
	}
	return c.Content.Dir
}

// LoadEngineConfig reads and validates engine.yaml.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg EngineConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported engine.yaml version: %d", cfg.Version)
	}

	return &cfg, nil
}
