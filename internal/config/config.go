// pattern: Imperative Shell

// Package config loads repomirror settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "repomirror"

type Config struct {
	WorkingDirectory string        `yaml:"working_directory"`
	GitBinary        string        `yaml:"git_binary"`
	Bare             bool          `yaml:"bare"`
	AutoClone        bool          `yaml:"auto_clone"`
	Remote           string        `yaml:"remote"`
	Lock             bool          `yaml:"lock"`
	LockTimeout      time.Duration `yaml:"lock_timeout"`
	LogLevel         string        `yaml:"log_level"`
	LogFile          string        `yaml:"log_file"`
}

// LookPathFunc is the function signature for looking up executables.
type LookPathFunc func(name string) (string, error)

func DefaultConfig() Config {
	return Config{
		WorkingDirectory: defaultWorkingDirectory(),
		AutoClone:        true,
		Remote:           "origin",
		LockTimeout:      time.Minute,
		LogLevel:         "info",
	}
}

func Load() (Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads configPath over the defaults. A missing file is not an error.
func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing %s: %w", configPath, err)
	}

	defaults := DefaultConfig()
	if cfg.WorkingDirectory == "" {
		cfg.WorkingDirectory = defaults.WorkingDirectory
	}
	if cfg.Remote == "" {
		cfg.Remote = defaults.Remote
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	cfg.WorkingDirectory = ExpandPath(cfg.WorkingDirectory)
	cfg.LogFile = ExpandPath(cfg.LogFile)
	cfg.GitBinary = ExpandPath(cfg.GitBinary)

	return cfg, nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if c.WorkingDirectory == "" {
		return errors.New("working_directory is required")
	}
	if c.LockTimeout < 0 {
		return fmt.Errorf("lock_timeout must not be negative, got %s", c.LockTimeout)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// ResolveGitBinary returns the configured git binary or looks one up on PATH.
func (c *Config) ResolveGitBinary() (string, error) {
	return c.ResolveGitBinaryWith(exec.LookPath)
}

// ResolveGitBinaryWith is ResolveGitBinary with an injectable lookup.
func (c *Config) ResolveGitBinaryWith(lookPath LookPathFunc) (string, error) {
	name := c.GitBinary
	if name == "" {
		name = "git"
	}
	path, err := lookPath(name)
	if err != nil {
		return "", fmt.Errorf("git binary %q not found: %w", name, err)
	}
	return path, nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// DefaultPath is $XDG_CONFIG_HOME/repomirror/config.yaml, falling back to ~/.config.
func DefaultPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName, "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appName, "config.yaml")
	}

	return filepath.Join(home, ".config", appName, "config.yaml")
}

func defaultWorkingDirectory() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, appName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cache", appName)
	}

	return filepath.Join(home, ".cache", appName)
}
