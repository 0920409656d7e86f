package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds everything a single deployment run needs.
type Config struct {
	// URL is the root of the downloads API.
	URL string `koanf:"url" yaml:"url"`
	// Username is the basic-auth user.
	Username string `koanf:"username" yaml:"username"`
	// Password is the basic-auth password or app password.
	Password string `koanf:"password" yaml:"password"`
	// Repo is the repository identifier, e.g. "org/app".
	Repo string `koanf:"repo" yaml:"repo"`
	// Filename is the download name used to build the request path.
	Filename string `koanf:"filename" yaml:"filename"`
	// OutputPath is the directory the archive expands into, relative to WorkDir.
	OutputPath string `koanf:"path" yaml:"path"`
	// WorkDir is where the archive is saved and expanded.
	WorkDir string `koanf:"work_dir" yaml:"work_dir"`
	// ExtractCommand is run with the archive path appended.
	ExtractCommand string `koanf:"extract_command" yaml:"extract_command"`
	// InstallCommand is run inside OutputPath after expansion.
	InstallCommand string `koanf:"install_command" yaml:"install_command"`
	// SkipInstall disables the dependency installation stage.
	SkipInstall bool `koanf:"skip_install" yaml:"skip_install"`
}

const (
	// DefaultConfigFilename is looked up when no explicit config path is given.
	DefaultConfigFilename = "app-deployer.yaml"

	// DefaultEnvFilename is the dotenv file read when present.
	DefaultEnvFilename = ".env"

	// DefaultURL is the public hosted API root.
	DefaultURL = "https://api.bitbucket.org"

	// DefaultOutputPath is the directory replaced on every run.
	DefaultOutputPath = "dist"

	// DefaultWorkDir is the process working directory.
	DefaultWorkDir = "."

	// DefaultExtractCommand unpacks zip archives, overwriting without prompting.
	DefaultExtractCommand = "unzip -o"

	// DefaultInstallCommand installs JavaScript dependencies.
	DefaultInstallCommand = "yarn install"

	// DefaultFilePermissions is used for written config files since they may hold credentials.
	DefaultFilePermissions = 0o600
)

var (
	// ErrRequiredInput is returned when a value the run cannot start without is missing.
	ErrRequiredInput = errors.New("required input missing")

	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnsafeOutputPath guards against wiping the working directory itself.
	errUnsafeOutputPath = errors.New("output path must name a subdirectory")
)

// Default returns a configuration holding only built-in defaults.
func Default() *Config {
	cfg := new(Config)
	ApplyDefaults(cfg)

	return cfg
}

// ApplyDefaults fills empty optional fields.
func ApplyDefaults(cfg *Config) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}

	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutputPath
	}

	if cfg.WorkDir == "" {
		cfg.WorkDir = DefaultWorkDir
	}

	if cfg.ExtractCommand == "" {
		cfg.ExtractCommand = DefaultExtractCommand
	}

	if cfg.InstallCommand == "" {
		cfg.InstallCommand = DefaultInstallCommand
	}
}

// Validate checks that a run can start. It performs no I/O.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Repo == "" {
		return fmt.Errorf("%w: no repo provided", ErrRequiredInput)
	}

	if cfg.Username == "" || cfg.Password == "" {
		return fmt.Errorf("%w: no username or password provided", ErrRequiredInput)
	}

	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	switch filepath.Clean(cfg.OutputPath) {
	case ".", "..", string(filepath.Separator):
		return fmt.Errorf("%q: %w", cfg.OutputPath, errUnsafeOutputPath)
	}

	return nil
}

// DownloadURL builds {url}/2.0/repositories/{repo}/downloads/{filename}.
func (c *Config) DownloadURL() (string, error) {
	return url.JoinPath(c.URL, "2.0", "repositories", c.Repo, "downloads", c.Filename)
}

// OutputDir returns OutputPath resolved against WorkDir.
func (c *Config) OutputDir() string {
	if filepath.IsAbs(c.OutputPath) {
		return filepath.Clean(c.OutputPath)
	}

	return filepath.Join(c.WorkDir, c.OutputPath)
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}
