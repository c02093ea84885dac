// Package config loads securelock settings.
//
// Settings come from, in increasing precedence: built-in defaults, a YAML
// file, and SECURELOCK_* environment variables. Command line flags are
// applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/illarion/securelock/internal/crypto"
	yaml "gopkg.in/yaml.v2"
)

const (
	DefaultStore    = ".securelock"
	DefaultLogLevel = "warn"

	EnvConfig     = "SECURELOCK_CONFIG"
	EnvStore      = "SECURELOCK_STORE"
	EnvIterations = "SECURELOCK_ITERATIONS"
	EnvLogLevel   = "SECURELOCK_LOG_LEVEL"
	EnvKeyring    = "SECURELOCK_KEYRING"
	EnvPassword   = "SECURELOCK_PASSWORD"
)

// Config holds user settings
type Config struct {
	Store      string `yaml:"store"`      // Lockbox file path
	Iterations int    `yaml:"iterations"` // PBKDF2 iterations for new values
	LogLevel   string `yaml:"log_level"`
	Keyring    bool   `yaml:"keyring"` // Use the OS keyring for the lockbox password
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Store:      DefaultStore,
		Iterations: crypto.DefaultIterations,
		LogLevel:   DefaultLogLevel,
		Keyring:    true,
	}
}

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "securelock", "config.yaml")
}

// Load reads settings from path, or from SECURELOCK_CONFIG or the default
// location when path is empty. A missing default file is not an error; a
// missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = DefaultPath()
		explicit = false
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvStore); v != "" {
		c.Store = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvIterations); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvIterations, err)
		}
		c.Iterations = n
	}
	if v := os.Getenv(EnvKeyring); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvKeyring, err)
		}
		c.Keyring = b
	}
	return nil
}

// Validate checks that the settings are usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store) == "" {
		return fmt.Errorf("store path must not be empty")
	}
	if c.Iterations < crypto.MinIterations || c.Iterations > crypto.MaxIterations {
		return fmt.Errorf("iterations must be between %d and %d, got %d", crypto.MinIterations, crypto.MaxIterations, c.Iterations)
	}
	return nil
}
