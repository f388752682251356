// Package config provides environment and file based configuration
// resolution for the engine, mirroring common/config's helpers.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// GetEnv retrieves an environment variable or returns a default value.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FileConfig is the shape accepted by LoadFile and returned by FromEnv: an
// alternative to programmatic engine.Config construction for hosts that
// prefer a config file or environment variables over Go literals. A zero
// DiscoveryPeriod means "unset, use the engine's default" rather than 0
// seconds.
type FileConfig struct {
	URL             string `yaml:"url"`
	DebugOutput     bool   `yaml:"debugOutput"`
	DiscoveryPeriod int    `yaml:"discoveryPeriod"`
}

// FromEnv reads MSGFLO_BROKER, MSGFLO_CPP_DEBUG, and the optional
// MSGFLO_DISCOVERY_PERIOD into a FileConfig. An unset or non-numeric
// MSGFLO_DISCOVERY_PERIOD leaves DiscoveryPeriod at 0.
func FromEnv() FileConfig {
	_, debugSet := os.LookupEnv("MSGFLO_CPP_DEBUG")
	fc := FileConfig{
		URL:         GetEnv("MSGFLO_BROKER", ""),
		DebugOutput: debugSet,
	}
	if raw := GetEnv("MSGFLO_DISCOVERY_PERIOD", ""); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			fc.DiscoveryPeriod = n
		}
	}
	return fc
}

// LoadFile reads a YAML config file into a FileConfig.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file: %w", err)
	}
	return fc, nil
}
