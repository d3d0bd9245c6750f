// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file with environment variable expansion.
func Load[T any](filename string, target *T) error {
	if err := decodeFile(filename, target); err != nil {
		return err
	}
	return validate(target)
}

// LoadWithEnv layers configuration: the values already in target, then the
// YAML file when it exists, then environment variables starting with prefix
// (see github.com/caarlos0/env). The result is validated.
func LoadWithEnv[T any](filename, prefix string, target *T) error {
	if filename != "" {
		_, err := os.Stat(filename)
		switch {
		case err == nil:
			if err := decodeFile(filename, target); err != nil {
				return err
			}
		case !errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("failed to stat config file %s: %w", filename, err)
		}
	}

	if err := env.ParseWithOptions(target, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	return validate(target)
}

func decodeFile[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return nil
}

func validate[T any](target *T) error {
	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}
