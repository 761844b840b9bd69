package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/bee.report/internal/histogram"
	"github.com/banshee-data/bee.report/internal/loader"
	"github.com/banshee-data/bee.report/internal/summary"
	"github.com/banshee-data/bee.report/internal/units"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/analysis.defaults.json"

// Defaults applied by the Get* accessors when a field is omitted.
const (
	DefaultMethod    = summary.Mean
	DefaultThreshold = 10.0
	DefaultBins      = histogram.DefaultBins
	DefaultColor     = histogram.DefaultColor
	DefaultUnits     = units.CM
	DefaultEntity    = histogram.DefaultEntity
)

// ColumnsConfig overrides the input column names.
type ColumnsConfig struct {
	Entity    *string `json:"entity,omitempty"`
	Timestamp *string `json:"timestamp,omitempty"`
	X         *string `json:"x,omitempty"`
	Y         *string `json:"y,omitempty"`
}

// AnalysisConfig is the JSON document that parameterises a speed analysis.
// Omitted fields fall back to the defaults above, so partial configs are
// safe.
type AnalysisConfig struct {
	Method    *string  `json:"method,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`

	// Histogram params
	Bins   *int    `json:"bins,omitempty"`
	Color  *string `json:"color,omitempty"`
	Entity *string `json:"entity,omitempty"` // singular noun for titles, e.g. "Bee"

	// Units is the length unit of the x/y columns.
	Units *string `json:"units,omitempty"`

	Columns *ColumnsConfig `json:"columns,omitempty"`

	// Workers bounds per-entity parallelism; 0 means GOMAXPROCS.
	Workers *int `json:"workers,omitempty"`
}

func ptrString(v string) *string    { return &v }
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyAnalysisConfig returns an AnalysisConfig with all fields nil.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// DefaultAnalysisConfig returns an AnalysisConfig with every field set to
// its default.
func DefaultAnalysisConfig() *AnalysisConfig {
	cols := loader.DefaultColumns()
	return &AnalysisConfig{
		Method:    ptrString(string(DefaultMethod)),
		Threshold: ptrFloat64(DefaultThreshold),
		Bins:      ptrInt(DefaultBins),
		Color:     ptrString(DefaultColor),
		Entity:    ptrString(DefaultEntity),
		Units:     ptrString(DefaultUnits),
		Columns: &ColumnsConfig{
			Entity:    ptrString(cols.Entity),
			Timestamp: ptrString(cols.Timestamp),
			X:         ptrString(cols.X),
			Y:         ptrString(cols.Y),
		},
		Workers: ptrInt(0),
	}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that are set.
func (c *AnalysisConfig) Validate() error {
	if c.Method != nil {
		if _, err := summary.ParseMethod(*c.Method); err != nil {
			return fmt.Errorf("method: %w", err)
		}
	}
	if c.Threshold != nil {
		if math.IsNaN(*c.Threshold) || math.IsInf(*c.Threshold, 0) {
			return fmt.Errorf("threshold must be finite, got %v", *c.Threshold)
		}
	}
	if c.Bins != nil && *c.Bins <= 0 {
		return fmt.Errorf("bins must be positive, got %d", *c.Bins)
	}
	if c.Color != nil {
		if _, err := histogram.ParseColor(*c.Color); err != nil {
			return fmt.Errorf("color: %w", err)
		}
	}
	if c.Entity != nil && strings.TrimSpace(*c.Entity) == "" {
		return fmt.Errorf("entity must not be empty")
	}
	if c.Units != nil && !units.IsValid(*c.Units) {
		return fmt.Errorf("units must be one of %s, got %q", units.GetValidUnitsString(), *c.Units)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if err := c.GetColumns().Validate(); err != nil {
		return fmt.Errorf("columns: %w", err)
	}
	return nil
}

// GetMethod returns the summary method or the default. Call Validate first;
// an unparseable value also yields the default.
func (c *AnalysisConfig) GetMethod() summary.Method {
	if c.Method == nil {
		return DefaultMethod
	}
	m, err := summary.ParseMethod(*c.Method)
	if err != nil {
		return DefaultMethod
	}
	return m
}

// GetThreshold returns the filter threshold or the default.
func (c *AnalysisConfig) GetThreshold() float64 {
	if c.Threshold == nil {
		return DefaultThreshold
	}
	return *c.Threshold
}

// GetBins returns the histogram bin count or the default.
func (c *AnalysisConfig) GetBins() int {
	if c.Bins == nil {
		return DefaultBins
	}
	return *c.Bins
}

// GetColor returns the histogram color or the default.
func (c *AnalysisConfig) GetColor() string {
	if c.Color == nil {
		return DefaultColor
	}
	return *c.Color
}

// GetEntity returns the entity noun or the default.
func (c *AnalysisConfig) GetEntity() string {
	if c.Entity == nil {
		return DefaultEntity
	}
	return *c.Entity
}

// GetUnits returns the coordinate unit or the default.
func (c *AnalysisConfig) GetUnits() string {
	if c.Units == nil {
		return DefaultUnits
	}
	return *c.Units
}

// GetWorkers returns the worker bound or 0.
func (c *AnalysisConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// GetColumns merges the configured column names over the defaults.
func (c *AnalysisConfig) GetColumns() loader.Columns {
	cols := loader.DefaultColumns()
	if c.Columns == nil {
		return cols
	}
	if c.Columns.Entity != nil {
		cols.Entity = *c.Columns.Entity
	}
	if c.Columns.Timestamp != nil {
		cols.Timestamp = *c.Columns.Timestamp
	}
	if c.Columns.X != nil {
		cols.X = *c.Columns.X
	}
	if c.Columns.Y != nil {
		cols.Y = *c.Columns.Y
	}
	return cols
}
