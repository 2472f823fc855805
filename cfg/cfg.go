// Package cfg loads the panel's YAML configuration file.
package cfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Radio    RadioConfig    `yaml:"radio"`
	Tracking TrackingConfig `yaml:"tracking"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Prefs    PrefsConfig    `yaml:"prefs"`
	LogLevel string         `yaml:"log_level"`
}

// BackendConfig describes the panel backend connection.
type BackendConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RadioConfig describes the streamed spectrum window.
type RadioConfig struct {
	CenterFrequency int `yaml:"center_frequency"`
	SampleRate      int `yaml:"sample_rate"`
}

// TrackingConfig describes the MQTT connection the satellite tracking
// updates arrive on. An empty broker disables the tracking feed.
type TrackingConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      byte   `yaml:"qos"`
}

// MetricsConfig describes the prometheus endpoint. An empty listen address
// disables metrics.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// PrefsConfig describes where client-side display preferences are persisted.
type PrefsConfig struct {
	File string `yaml:"file"`
}

// Load reads the configuration from the given file and applies defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read configuration: %w", err)
	}

	config := defaultConfig()
	if err := yaml.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("cannot parse configuration: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func defaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Host: "localhost",
		},
		Tracking: TrackingConfig{
			Topic: "tracking/transmitters",
		},
		Prefs: PrefsConfig{
			File: "rxpanel_prefs.json",
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Backend.Host == "" {
		return fmt.Errorf("backend.host must not be empty")
	}
	if c.Radio.SampleRate < 0 {
		return fmt.Errorf("radio.sample_rate must not be negative")
	}
	if c.Tracking.Broker != "" && c.Tracking.Topic == "" {
		return fmt.Errorf("tracking.topic must not be empty when a broker is configured")
	}
	return nil
}
