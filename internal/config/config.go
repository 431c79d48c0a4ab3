package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// TokenEnv is the environment variable that overrides the API token of the config file
const TokenEnv = "QISKIT_API_TOKEN"

// Config represents the qiskit-cal configuration
type Config struct {
	API          APIConfig          `toml:"api"`
	Backend      BackendConfig      `toml:"backend"`
	Library      LibraryConfig      `toml:"library"`
	Calibrations CalibrationsConfig `toml:"calibrations"`
	Logging      LoggingConfig      `toml:"logging"`
}

// APIConfig holds the IBM Q API connection settings
type APIConfig struct {
	URL     string        `toml:"url"`
	Token   string        `toml:"token"`
	Hub     string        `toml:"hub"`
	Group   string        `toml:"group"`
	Project string        `toml:"project"`
	Retries int           `toml:"retries"`
	Timeout time.Duration `toml:"timeout"`
}

// BackendConfig selects the backend calibrations are built for
type BackendConfig struct {
	Name string `toml:"name"`
	// Live fetches the backend from the API instead of the fake fixtures
	Live bool `toml:"live"`
}

// LibraryConfig configures the fixed frequency transmon library
type LibraryConfig struct {
	BasisGates     []string           `toml:"basis_gates"`
	DefaultValues  map[string]float64 `toml:"default_values"`
	LinkParameters bool               `toml:"link_parameters"`
}

// CalibrationsConfig holds settings of the calibration store
type CalibrationsConfig struct {
	// File is a parameter table, as written by export, loaded on start
	File string `toml:"file"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:     "https://quantumexperience.ng.bluemix.net/api",
			Retries: 5,
			Timeout: 30 * time.Second,
		},
		Backend: BackendConfig{
			Name: "fake_armonk",
		},
		Library: LibraryConfig{
			BasisGates:     []string{"x", "y", "sx", "sy"},
			LinkParameters: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromFile loads configuration from a TOML file
func LoadFromFile(path string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Errorf("config file does not exist: %s", path)
	}

	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}
	for _, key := range md.Undecoded() {
		logrus.WithField("key", key.String()).Warn("unknown config key")
	}

	return config, nil
}

// LoadConfig loads configuration with the following precedence:
// 1. Default values
// 2. Config file (if specified)
// 3. Environment variables
// 4. Command-line flags (handled by caller)
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		fileConfig, err := LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		config = fileConfig
	}

	if token, ok := os.LookupEnv(TokenEnv); ok {
		config.API.Token = token
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backend.Name == "" {
		return errors.New("backend name must be specified")
	}

	if c.Backend.Live {
		if c.API.URL == "" {
			return errors.New("api url must be specified for live backends")
		}
		if c.API.Token == "" {
			return errors.Errorf("api token must be specified for live backends (set it in the config file or %s)", TokenEnv)
		}
	}
	if c.API.Retries <= 0 {
		return errors.New("api retries must be positive")
	}
	if c.API.Timeout <= 0 {
		return errors.New("api timeout must be positive")
	}
	ibmQ := []string{c.API.Hub, c.API.Group, c.API.Project}
	if set := lo.Without(ibmQ, ""); len(set) != 0 && len(set) != len(ibmQ) {
		return errors.New("api hub, group and project must be specified together")
	}

	if len(c.Library.BasisGates) == 0 {
		return errors.New("library basis_gates must not be empty")
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return errors.Errorf("invalid log level: %s (must be trace, debug, info, warn, or error)", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return errors.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}
