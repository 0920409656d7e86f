package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that map onto Config keys,
// e.g. DEPLOYER_WORK_DIR -> work_dir.
const EnvPrefix = "DEPLOYER_"

// LoadOption tweaks how Load gathers values.
type LoadOption func(*loadOptions)

type loadOptions struct {
	envFile   string
	overrides map[string]any
}

// WithEnvFile reads DEPLOYER_* keys from a dotenv file. A missing file is ignored.
func WithEnvFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// WithOverrides sets keys with the highest precedence.
func WithOverrides(overrides map[string]any) LoadOption {
	return func(o *loadOptions) {
		o.overrides = overrides
	}
}

// Load merges the config sources into a Config with defaults applied.
// An empty path or a missing default-named file is not an error;
// an explicitly named file that does not exist is.
// Load does not validate: Validate runs right before the pipeline starts.
func Load(path string, opts ...LoadOption) (*Config, error) {
	options := new(loadOptions)
	for _, opt := range opts {
		opt(options)
	}

	k := koanf.New(".")

	if err := loadFile(k, path); err != nil {
		return nil, err
	}

	if options.envFile != "" {
		if err := loadEnvFile(k, options.envFile); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	for key, value := range options.overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("override %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	ApplyDefaults(&cfg)

	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if path == "" {
		return nil
	}

	path = filepath.Clean(path)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && filepath.Base(path) == DefaultConfigFilename {
			return nil
		}

		return fmt.Errorf("read settings: %w", err)
	}

	if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
		return fmt.Errorf("parse settings %s: %w", path, err)
	}

	return nil
}

// loadEnvFile reads the dotenv file without touching the process environment.
func loadEnvFile(k *koanf.Koanf, path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read env file: %w", err)
	}

	for name, value := range values {
		if !strings.HasPrefix(name, EnvPrefix) {
			continue
		}

		if err = k.Set(envKey(name), value); err != nil {
			return fmt.Errorf("env file key %s: %w", name, err)
		}
	}

	return nil
}

func envKey(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
}
