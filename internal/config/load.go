package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFilename is the default configuration filename.
const DefaultConfigFilename = "democtl.yaml"

// Load loads, defaults, and validates an environment from a file.
// The SANDBOX_ID environment variable, when set, overrides the file value.
func Load(path string) (*Environment, error) {
	env, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}

	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return env, nil
}

// LoadWithoutValidation loads an environment from a file and applies
// defaults, skipping validation. Useful for tooling that needs to read
// partially valid configs.
func LoadWithoutValidation(path string) (*Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return parseEnvironment(data)
}

// LoadFromBytes loads, defaults, and validates an environment from bytes.
func LoadFromBytes(data []byte) (*Environment, error) {
	env, err := parseEnvironment(data)
	if err != nil {
		return nil, err
	}

	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return env, nil
}

// parseEnvironment parses YAML data, applies env var overrides, and fills
// defaults.
func parseEnvironment(data []byte) (*Environment, error) {
	var env Environment
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if id := os.Getenv(EnvSandboxID); id != "" {
		env.SandboxID = id
	}
	env.ApplyDefaults()

	return &env, nil
}

// FindConfigFile searches for a config file. Resolution order: the
// DEMOCTL_CONFIG environment variable, then democtl.yaml in the current
// directory, then walking up the directory tree.
func FindConfigFile() (string, error) {
	if path := os.Getenv(EnvConfig); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file %s (from %s) not found: %w", path, EnvConfig, err)
		}
		return path, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	path := filepath.Join(cwd, DefaultConfigFilename)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent

		path := filepath.Join(dir, DefaultConfigFilename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("config file %s not found", DefaultConfigFilename)
}

// Save writes an environment to a file.
func Save(env *Environment, path string) error {
	data, err := yaml.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
