// Package config loads, validates, and writes the cultienv
// configuration file (cultienv.yaml).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default configuration file name
	ConfigFileName = "cultienv.yaml"
	// LockFileName is the default lockfile name
	LockFileName = "cultienv.lock"
)

// Loader handles loading and parsing of cultienv configuration
type Loader struct {
	workDir    string
	configPath string
	viper      *viper.Viper
}

// NewLoader creates a new configuration loader for the given working directory
func NewLoader(workDir string) *Loader {
	return &Loader{
		workDir: workDir,
		viper:   viper.New(),
	}
}

// NewLoaderWithPath creates a loader for an explicit config file path
// (the --config flag). The lockfile lives next to the config file.
func NewLoaderWithPath(configPath string) *Loader {
	return &Loader{
		workDir:    filepath.Dir(configPath),
		configPath: configPath,
		viper:      viper.New(),
	}
}

// Load reads and parses the cultienv.yaml configuration file
func (l *Loader) Load() (*Config, error) {
	configPath := l.ConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, &ConfigNotFoundError{Path: configPath}
	}

	l.viper.SetConfigFile(configPath)
	l.viper.SetConfigType("yaml")

	// Set defaults from DefaultConfig
	defaults := DefaultConfig()
	l.viper.SetDefault("version", defaults.Version)
	l.viper.SetDefault("project", defaults.Project)
	l.viper.SetDefault("base.toolkit", defaults.Base.Toolkit)
	l.viper.SetDefault("base.os", defaults.Base.OS)
	l.viper.SetDefault("native.ppa", defaults.Native.PPA)
	l.viper.SetDefault("native.packages", defaults.Native.Packages)
	l.viper.SetDefault("framework.package", defaults.Framework.Package)
	l.viper.SetDefault("framework.version", defaults.Framework.Version)
	l.viper.SetDefault("extensions.packages", defaults.Extensions.Packages)
	l.viper.SetDefault("geospatial.binding", defaults.Geospatial.Binding)
	l.viper.SetDefault("geospatial.derive", defaults.Geospatial.Derive)
	l.viper.SetDefault("manifest", defaults.Manifest)

	if err := l.viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := l.viper.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(cfg.Bindings) == 0 {
		cfg.Bindings = defaults.Bindings
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = defaults.Sources
	}

	return &cfg, nil
}

// ConfigPath returns the full path to the config file
func (l *Loader) ConfigPath() string {
	if l.configPath != "" {
		return l.configPath
	}
	return filepath.Join(l.workDir, ConfigFileName)
}

// LockPath returns the full path to the lockfile
func (l *Loader) LockPath() string {
	return filepath.Join(l.workDir, LockFileName)
}

// WorkDir returns the loader's working directory
func (l *Loader) WorkDir() string {
	return l.workDir
}

// Exists checks if the configuration file exists
func (l *Loader) Exists() bool {
	_, err := os.Stat(l.ConfigPath())
	return err == nil
}

// ConfigNotFoundError is returned when the config file doesn't exist
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("configuration file not found: %s", e.Path)
}

// IsConfigNotFound returns true if the error is a ConfigNotFoundError
func IsConfigNotFound(err error) bool {
	_, ok := err.(*ConfigNotFoundError)
	return ok
}
