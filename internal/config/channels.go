// Package config loads deploy-time configuration files for the dispatch
// service. Secrets stay in environment variables; the YAML file holds the
// non-secret channel settings that operations tunes per environment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ChannelsConfig represents the channel delivery configuration.
type ChannelsConfig struct {
	Channels struct {
		Slack struct {
			Enabled bool   `yaml:"enabled"`
			APIURL  string `yaml:"api_url"`
			Timeout string `yaml:"timeout"`
		} `yaml:"slack"`
		Email struct {
			Enabled   bool   `yaml:"enabled"`
			APIURL    string `yaml:"api_url"`
			FromEmail string `yaml:"from_email"`
			FromName  string `yaml:"from_name"`
			Timeout   string `yaml:"timeout"`
		} `yaml:"email"`
	} `yaml:"channels"`
	App struct {
		URL string `yaml:"url"`
	} `yaml:"app"`
}

// LoadChannelsConfig loads channel configuration from a YAML file.
// The path parameter is expected to come from a trusted source (command-line
// argument or hardcoded default).
func LoadChannelsConfig(path string) (*ChannelsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadChannelsConfig: read %s: %w", path, err)
	}

	var cfg ChannelsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("LoadChannelsConfig: parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("LoadChannelsConfig: %w", err)
	}
	return &cfg, nil
}

// DefaultChannelsConfig returns the configuration used when no YAML file is
// provided: both channels enabled against their public API endpoints.
func DefaultChannelsConfig() *ChannelsConfig {
	var cfg ChannelsConfig
	cfg.Channels.Slack.Enabled = true
	cfg.Channels.Slack.Timeout = "10s"
	cfg.Channels.Email.Enabled = true
	cfg.Channels.Email.FromEmail = "notifications@kudos.app"
	cfg.Channels.Email.FromName = "Kudos"
	cfg.Channels.Email.Timeout = "10s"
	return &cfg
}

func (c *ChannelsConfig) validate() error {
	if c.Channels.Email.Enabled && c.Channels.Email.FromEmail == "" {
		return fmt.Errorf("email channel is enabled but from_email is empty")
	}
	for name, raw := range map[string]string{
		"slack": c.Channels.Slack.Timeout,
		"email": c.Channels.Email.Timeout,
	} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("%s timeout %q: %w", name, raw, err)
		}
	}
	return nil
}

// SlackTimeout returns the parsed Slack request timeout, or the fallback
// when unset.
func (c *ChannelsConfig) SlackTimeout(fallback time.Duration) time.Duration {
	return parseTimeout(c.Channels.Slack.Timeout, fallback)
}

// EmailTimeout returns the parsed email request timeout, or the fallback
// when unset.
func (c *ChannelsConfig) EmailTimeout(fallback time.Duration) time.Duration {
	return parseTimeout(c.Channels.Email.Timeout, fallback)
}

func parseTimeout(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
