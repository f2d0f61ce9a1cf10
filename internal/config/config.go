// Package config provides configuration loading and management for task-cli.
package config

import (
	"fmt"
	"path/filepath"
	"time"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"

	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"

	DefaultJSONPath   = "tasks.json"
	DefaultSQLitePath = "tasks.db"
	DefaultConfigPath = ".task-cli/config.json"
	DefaultLockWait   = 5 * time.Second
)

// Config is the root configuration.
type Config struct {
	Storage StorageConfig `json:"storage" mapstructure:"storage"`
	Output  OutputConfig  `json:"output"  mapstructure:"output"`
}

// StorageConfig describes where and how tasks are persisted.
type StorageConfig struct {
	Driver      string        `json:"driver"       mapstructure:"driver"`
	Path        string        `json:"path"         mapstructure:"path"`
	Lock        bool          `json:"lock"         mapstructure:"lock"`
	LockTimeout time.Duration `json:"lock_timeout" mapstructure:"lock_timeout"`
}

// OutputConfig controls how results are rendered.
type OutputConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Color  bool   `json:"color"  mapstructure:"color"`
}

// Default returns the configuration used when nothing is configured.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Driver:      DriverJSON,
			Path:        DefaultJSONPath,
			Lock:        true,
			LockTimeout: DefaultLockWait,
		},
		Output: OutputConfig{
			Format: FormatText,
			Color:  true,
		},
	}
}

// LockPath returns the advisory lock file guarding the task storage.
func (s StorageConfig) LockPath() string {
	return s.Path + ".lock"
}

// Normalize fills derived defaults and checks field values.
func (c *Config) Normalize() error {
	switch c.Storage.Driver {
	case "":
		c.Storage.Driver = DriverJSON
	case DriverJSON, DriverSQLite:
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverJSON, DriverSQLite, c.Storage.Driver)
	}
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultJSONPath
	}
	if c.Storage.Driver == DriverSQLite && c.Storage.Path == DefaultJSONPath {
		c.Storage.Path = DefaultSQLitePath
	}
	c.Storage.Path = filepath.Clean(c.Storage.Path)
	if c.Storage.LockTimeout < 0 {
		return fmt.Errorf("storage.lock_timeout must be >= 0")
	}

	switch c.Output.Format {
	case "":
		c.Output.Format = FormatText
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("output.format must be one of text, json, yaml, got %q", c.Output.Format)
	}
	return nil
}
