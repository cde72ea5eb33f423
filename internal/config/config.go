// Package config resolves portalctl settings from flags, environment
// variables and an optional YAML config file, in that order of precedence.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/trilhalab/portalctl/internal/errors"
)

const (
	// DefaultAPIURL is the local-development portal backend.
	DefaultAPIURL = "http://localhost:3001"

	// EnvAPIURL overrides the portal base URL.
	EnvAPIURL = "PORTAL_API_URL"

	// EnvStateDir overrides where the session slot is persisted.
	EnvStateDir = "PORTAL_STATE_DIR"

	configFileName = "config.yaml"
	stateDirName   = ".portalctl"
)

// Config holds the resolved portalctl settings.
type Config struct {
	// APIURL is the portal backend base URL.
	APIURL string `yaml:"api_url"`

	// StateDir is where the session slot and other client state live.
	StateDir string `yaml:"state_dir"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// Load resolves the configuration. Values given explicitly (flags) win over
// environment variables, which win over the config file, which wins over
// built-in defaults. A missing config file is not an error.
func Load(flagAPIURL, flagStateDir, flagLogLevel string) (*Config, error) {
	cfg := &Config{}

	if fileCfg, err := loadFile(); err != nil {
		return nil, err
	} else if fileCfg != nil {
		*cfg = *fileCfg
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvStateDir); v != "" {
		cfg.StateDir = v
	}

	if flagAPIURL != "" {
		cfg.APIURL = flagAPIURL
	}
	if flagStateDir != "" {
		cfg.StateDir = flagStateDir
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.StateDir == "" {
		cfg.StateDir = defaultStateDir()
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}

	return cfg, nil
}

// loadFile reads the config file from the default state dir, if present.
func loadFile() (*Config, error) {
	path := filepath.Join(defaultStateDir(), configFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to read config file: "+path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to parse config file: "+path, err).
			WithSuggestion("Check the YAML syntax in " + path)
	}

	return &cfg, nil
}

// defaultStateDir returns ~/.portalctl, falling back to a relative
// .portalctl when the home directory cannot be determined.
func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return stateDirName
	}
	return filepath.Join(home, stateDirName)
}
