package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/olivierh59500/neuralsearch/internal/field"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SavePreset writes the field section as JSON
func SavePreset(path string, cfg field.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write preset %s: %w", path, err)
	}
	return nil
}

// LoadPreset reads a preset written by SavePreset. Fields missing from the
// file keep their default values.
func LoadPreset(path string) (field.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return field.Config{}, fmt.Errorf("cannot read preset %s: %w", path, err)
	}
	cfg := field.DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return field.Config{}, fmt.Errorf("invalid preset %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return field.Config{}, fmt.Errorf("preset %s: %w", path, err)
	}
	return cfg, nil
}
