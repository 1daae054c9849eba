package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteDefault scaffolds a default cultienv.yaml in workDir.
// Fails if the file already exists.
func WriteDefault(workDir string) (string, error) {
	path := filepath.Join(workDir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("configuration already exists: %s", path)
	}

	if err := os.WriteFile(path, []byte(DefaultConfigYAML), 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// Write marshals cfg to YAML at path, overwriting any existing file.
// Used to persist pins resolved by the lock command.
func Write(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
