// Package project locates and loads carve.yaml project configuration.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileName = "carve.yaml"

// Kernel backend names accepted in carve.yaml and on the command line.
const (
	KernelBSP  = "bsp"
	KernelSDFX = "sdfx"
)

// Config represents the project configuration from carve.yaml.
// All fields are optional; zero values fall back to built-in defaults.
type Config struct {
	Name      string  `yaml:"name,omitempty"`
	Kernel    string  `yaml:"kernel,omitempty"`    // "bsp" (default) or "sdfx"
	Tolerance float64 `yaml:"tolerance,omitempty"` // CSG epsilon, default 1e-5
	Segments  int     `yaml:"segments,omitempty"`  // default curve resolution
}

// FindProjectRoot walks up from the current working directory looking for
// carve.yaml. Returns the directory containing carve.yaml, or an error if
// not found.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, configFileName)
		if _, err := os.Stat(configPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding carve.yaml
			return "", fmt.Errorf("%s not found in any parent directory of %s", configFileName, cwd)
		}
		dir = parent
	}
}

// LoadConfig loads and parses the carve.yaml file from the given project root.
func LoadConfig(projectRoot string) (*Config, error) {
	configPath := filepath.Join(projectRoot, configFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", configFileName, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configFileName, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configFileName, err)
	}

	return &config, nil
}

// Validate checks field values without touching the filesystem.
func (c *Config) Validate() error {
	switch c.Kernel {
	case "", KernelBSP, KernelSDFX:
	default:
		return fmt.Errorf("unknown kernel %q (want %q or %q)", c.Kernel, KernelBSP, KernelSDFX)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %g", c.Tolerance)
	}
	if c.Segments != 0 && c.Segments < 3 {
		return fmt.Errorf("segments must be at least 3, got %d", c.Segments)
	}
	return nil
}
