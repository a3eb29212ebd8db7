package backfill

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ParamsFile is the on-disk backfill parameter schema consumed by the CLI.
type ParamsFile struct {
	CustomDates     []string `json:"custom_dates,omitempty" yaml:"custom_dates,omitempty"`
	StartDate       string   `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate         string   `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	DateGranularity string   `json:"date_granularity,omitempty" yaml:"date_granularity,omitempty"`

	// DateParamName declares a single date parameter; DateParamNames wins
	// when both are present.
	DateParamName    string            `json:"date_param_name,omitempty" yaml:"date_param_name,omitempty"`
	DateParamNames   []string          `json:"date_param_names,omitempty" yaml:"date_param_names,omitempty"`
	DateParamFormats map[string]string `json:"date_param_formats,omitempty" yaml:"date_param_formats,omitempty"`

	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	DryRun bool           `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
}

// LoadParamsFile reads a backfill parameter file, JSON or YAML by extension.
func LoadParamsFile(path string) (*ParamsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading backfill params %s: %w", path, err)
	}

	var file ParamsFile
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing backfill params %s: %w", path, err)
	}
	return &file, nil
}

// Spec returns the date specification declared by the file.
func (f *ParamsFile) Spec() DateSpec {
	return DateSpec{
		CustomDates: f.CustomDates,
		StartDate:   f.StartDate,
		EndDate:     f.EndDate,
		Granularity: Granularity(f.DateGranularity),
	}
}

// Names returns the declared date parameter names, folding the legacy
// single-name field into the list form.
func (f *ParamsFile) Names() []string {
	if len(f.DateParamNames) > 0 {
		return f.DateParamNames
	}
	if f.DateParamName != "" {
		return []string{f.DateParamName}
	}
	return nil
}
