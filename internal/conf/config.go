// Package conf loads and validates the application configuration.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ecovision-ai/birdsense/internal/errors"
)

// Settings holds the complete application configuration.
type Settings struct {
	Debug bool `yaml:"debug"` // true to enable debug output

	Main struct {
		Name string    `yaml:"name"` // name of this node, used for logging
		Log  LogConfig `yaml:"log"`  // logging configuration
	} `yaml:"main"`

	Inference InferenceConfig `yaml:"inference"`
	Remote    RemoteConfig    `yaml:"remote"`

	Connectivity ConnectivityConfig `yaml:"connectivity"`

	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LogConfig holds logging output settings.
type LogConfig struct {
	Enabled bool   `yaml:"enabled"` // true to enable file logging
	Path    string `yaml:"path"`    // directory for service log files
	Level   string `yaml:"level"`   // minimum level: debug, info, warn, error
}

// InferenceConfig holds settings for the hybrid inference engine.
type InferenceConfig struct {
	LabelPath string  `yaml:"labelpath"` // path to the species label asset
	Latitude  float64 `yaml:"latitude"`  // latitude for remote classification context
	Longitude float64 `yaml:"longitude"` // longitude for remote classification context
}

// RemoteConfig holds settings for the remote classification API client.
type RemoteConfig struct {
	Endpoint     string        `yaml:"endpoint"`     // classification API URL
	Timeout      time.Duration `yaml:"timeout"`      // hard timeout for a classification request
	ProbeTimeout time.Duration `yaml:"probetimeout"` // timeout for the availability probe
	ProbeTTL     time.Duration `yaml:"probettl"`     // how long a probe result is cached
}

// ConnectivityConfig holds settings for the online/offline gate.
type ConnectivityConfig struct {
	ProbeHost string        `yaml:"probehost"` // hostname resolved to verify real internet access
	Timeout   time.Duration `yaml:"timeout"`   // DNS resolution timeout
}

// TelemetryConfig holds Prometheus endpoint settings.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"` // true to expose a /metrics endpoint
	Listen  string `yaml:"listen"`  // listen address, e.g. "localhost:9090"
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Setting returns the current settings instance, loading it on first use.
func Setting() *Settings {
	settingsMutex.RLock()
	s := settingsInstance
	settingsMutex.RUnlock()
	if s != nil {
		return s
	}
	s, err := Load()
	if err != nil {
		return &Settings{}
	}
	return s
}

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// ValidateSettings checks the loaded settings for values the engine cannot run with.
func ValidateSettings(settings *Settings) error {
	if settings.Remote.Timeout <= 0 {
		return errors.Newf("remote timeout must be positive, got %v", settings.Remote.Timeout).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("remote_timeout", settings.Remote.Timeout.String()).
			Build()
	}
	if settings.Connectivity.Timeout <= 0 {
		return errors.Newf("connectivity timeout must be positive, got %v", settings.Connectivity.Timeout).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("connectivity_timeout", settings.Connectivity.Timeout.String()).
			Build()
	}
	if settings.Inference.Latitude < -90 || settings.Inference.Latitude > 90 {
		return errors.Newf("latitude out of range: %f", settings.Inference.Latitude).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if settings.Inference.Longitude < -180 || settings.Inference.Longitude > 180 {
		return errors.Newf("longitude out of range: %f", settings.Inference.Longitude).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Set default values for each configuration parameter
	// function defined in defaults.go
	setDefaultConfig()

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes a default config file to the first default config path.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	if err := os.MkdirAll(configPaths[0], 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	settings := &Settings{}
	setDefaultConfig()
	if err := viper.Unmarshal(settings); err != nil {
		return fmt.Errorf("error unmarshaling defaults: %w", err)
	}

	if err := SaveSettings(configPath, settings); err != nil {
		return err
	}

	return viper.ReadInConfig()
}

// SaveSettings writes the given settings to path as YAML.
func SaveSettings(path string, settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return errors.New(fmt.Errorf("error marshaling settings: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(fmt.Errorf("error writing config file: %w", err)).
			Component("conf").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return nil
}

// GetDefaultConfigPaths returns the list of paths searched for config.yaml,
// current working directory first.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		paths = append(paths, filepath.Join(xdgConfig, "birdsense"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "birdsense"))
	}

	return paths, nil
}
