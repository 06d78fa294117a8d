package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML overlay. Only fields present in the file
// override the environment.
type FileConfig struct {
	ComplexIDs            []string `yaml:"complex_ids"`
	TradeTypes            []string `yaml:"trade_types"`
	MaxListingsPerComplex int      `yaml:"max_listings_per_complex"`
	SleepMinSeconds       *float64 `yaml:"sleep_min"`
	SleepMaxSeconds       *float64 `yaml:"sleep_max"`
	MaxConcurrency        int      `yaml:"max_concurrency"`
	SnapshotBackend       string   `yaml:"snapshot_backend"`
}

// LoadFile parses a YAML overlay file.
func LoadFile(path string) (*FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return &fc, nil
}

// Apply copies the fields set in the file onto cfg.
func (fc *FileConfig) Apply(cfg *Config) {
	if len(fc.ComplexIDs) > 0 {
		cfg.ComplexIDs = fc.ComplexIDs
	}
	if len(fc.TradeTypes) > 0 {
		cfg.TradeTypes = fc.TradeTypes
	}
	if fc.MaxListingsPerComplex > 0 {
		cfg.MaxListingsPerComplex = fc.MaxListingsPerComplex
	}
	if fc.SleepMinSeconds != nil {
		cfg.SleepMin = time.Duration(*fc.SleepMinSeconds * float64(time.Second))
	}
	if fc.SleepMaxSeconds != nil {
		cfg.SleepMax = time.Duration(*fc.SleepMaxSeconds * float64(time.Second))
	}
	if fc.MaxConcurrency > 0 {
		cfg.MaxConcurrency = fc.MaxConcurrency
	}
	if fc.SnapshotBackend != "" {
		cfg.SnapshotBackend = fc.SnapshotBackend
	}
}
