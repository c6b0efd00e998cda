// Package config loads the audioqc CLI configuration.
//
// Configuration is a single YAML file, by default
// os.UserConfigDir()/audioqc/config.yaml:
//
//	ffmpeg: ffmpeg
//	pesq_command: pesq-cli
//	scratch_dir: ""
//	opus_bitrate: 32000
//	stage_timeout_seconds: 30
//
// Every field has a working default; a missing config file is not an
// error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	appDir     = "audioqc"
	configFile = "config.yaml"
)

// Config holds the CLI settings.
type Config struct {
	// FFmpeg is the transcoder executable name or path.
	FFmpeg string `yaml:"ffmpeg"`

	// PESQCommand is the external perceptual scorer binary. Empty
	// means no scorer is available; pesq/call/simulate will report
	// the capability as missing.
	PESQCommand string `yaml:"pesq_command"`

	// ScratchDir is where temporary audio files are created. Empty
	// selects the system temp directory.
	ScratchDir string `yaml:"scratch_dir"`

	// OpusBitrate is the wideband Opus bitrate in bit/s.
	OpusBitrate int `yaml:"opus_bitrate"`

	// StageTimeoutSeconds bounds each transcoder invocation.
	StageTimeoutSeconds int `yaml:"stage_timeout_seconds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		FFmpeg:              "ffmpeg",
		OpusBitrate:         32000,
		StageTimeoutSeconds: 30,
	}
}

// DefaultPath returns the default config file location, or "" when the
// user config directory cannot be determined.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, appDir, configFile)
}

// Load reads the configuration from path. An empty path tries the
// default location; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.OpusBitrate <= 0 {
		return nil, fmt.Errorf("config: opus_bitrate must be positive")
	}
	if cfg.StageTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("config: stage_timeout_seconds must be positive")
	}
	return cfg, nil
}

// StageTimeout returns the per-stage timeout as a duration.
func (c *Config) StageTimeout() time.Duration {
	return time.Duration(c.StageTimeoutSeconds) * time.Second
}
