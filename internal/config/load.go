// internal/config/load.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadError reports a config file that could not be used.
// It is never fatal: Load still returns the defaults alongside it.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads the config file on top of the compiled-in defaults.
// Fields missing from the file keep their defaults.
// If the file cannot be read or parsed, the defaults are returned
// together with a *LoadError.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		applyEnv(cfg)
		return cfg, &LoadError{Path: path, Err: err}
	}

	parsed := Default()
	if err := decode(path, raw, parsed); err != nil {
		applyEnv(cfg)
		return cfg, &LoadError{Path: path, Err: err}
	}

	applyEnv(parsed)
	return parsed, nil
}

// decode picks the codec by extension: YAML for .yaml/.yml, JSON otherwise.
func decode(path string, raw []byte, dst *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(raw, dst)
	default:
		return json.Unmarshal(raw, dst)
	}
}

// DotenvPath is the optional env file read before the config.
const DotenvPath = ".env"

// LoadDotenv exports the variables of an env file that are not already
// set. A missing file is not an error; an unreadable or malformed one
// is returned as a *LoadError and nothing from it is applied.
func LoadDotenv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return &LoadError{Path: path, Err: err}
}

// Environment overrides, applied on top of the file.
const (
	EnvCollectorURL  = "D6T_COLLECTOR_URL"
	EnvLogLevel      = "D6T_LOG_LEVEL"
	EnvMQTTBroker    = "D6T_MQTT_BROKER"
	EnvMetricsListen = "D6T_METRICS_LISTEN"
)

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvCollectorURL); v != "" {
		cfg.Collector.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvMQTTBroker); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv(EnvMetricsListen); v != "" {
		cfg.Metrics.Listen = v
	}
}
