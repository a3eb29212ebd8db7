package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader loads and parses workflow configuration files.
type Loader struct{}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFromFile loads a workflow configuration, choosing the format by
// extension: .yaml/.yml parse as YAML, everything else as JSON.
func (l *Loader) LoadFromFile(path string) (*WorkflowConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg *WorkflowConfig
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		cfg, err = l.LoadFromYAML(data)
	default:
		cfg, err = l.LoadFromJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromJSON parses and validates a configuration from raw JSON bytes.
func (l *Loader) LoadFromJSON(data []byte) (*WorkflowConfig, error) {
	if len(data) == 0 {
		return nil, ErrConfigEmpty
	}

	var config WorkflowConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return l.validate(&config)
}

// LoadFromYAML parses and validates a configuration from raw YAML bytes.
func (l *Loader) LoadFromYAML(data []byte) (*WorkflowConfig, error) {
	if len(data) == 0 {
		return nil, ErrConfigEmpty
	}

	var config WorkflowConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return l.validate(&config)
}

func (l *Loader) validate(config *WorkflowConfig) (*WorkflowConfig, error) {
	validator := NewValidator()
	if err := validator.Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}
