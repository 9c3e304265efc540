// Package config provides configuration loading and management.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for viewcast.
type Config struct {
	// Input/Output
	URL        string `yaml:"url"`
	OutputPath string `yaml:"output"`

	// Capture
	FPS        int    `yaml:"fps"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	DurationMs int    `yaml:"duration_ms"`
	UserAgent  string `yaml:"user_agent"`

	// Browser
	Headless          bool   `yaml:"headless"`
	ChromePath        string `yaml:"chrome_path"`
	IgnoreHTTPSErrors bool   `yaml:"ignore_https_errors"`
	ProxyServer       string `yaml:"proxy_server"`

	// Encoding
	Quality    int    `yaml:"quality"`
	Bitrate    int    `yaml:"bitrate"`
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Logging
	LogLevel string `yaml:"log_level"`
	Quiet    bool   `yaml:"quiet"`
}

// Defaults returns a Config with default values. Width and height default to
// zero, which derives the output size from the surface at recording start.
func Defaults() Config {
	return Config{
		FPS:        30,
		DurationMs: 10000,
		Headless:   true,
		Quality:    23,
		LogLevel:   "info",
	}
}

// LoadFromFile loads configuration from a YAML file on top of defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
