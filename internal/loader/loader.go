// Package loader reads tracker exports into track samples.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/bee.report/internal/track"
)

// Loader reads every sample from a data source. The returned samples carry
// no ordering guarantee.
type Loader interface {
	Load(ctx context.Context, path string) ([]track.Sample, error)
}

// Columns names the four fields a source must provide.
type Columns struct {
	Entity    string `json:"entity"`
	Timestamp string `json:"timestamp"`
	X         string `json:"x"`
	Y         string `json:"y"`
}

// DefaultColumns matches the hive tracker export.
func DefaultColumns() Columns {
	return Columns{
		Entity:    "bee_id",
		Timestamp: "timestamp",
		X:         "x_hive",
		Y:         "y_hive",
	}
}

// Names returns the column names in entity, timestamp, x, y order.
func (c Columns) Names() []string {
	return []string{c.Entity, c.Timestamp, c.X, c.Y}
}

// Validate rejects empty or repeated column names.
func (c Columns) Validate() error {
	seen := make(map[string]bool, 4)
	for _, n := range c.Names() {
		if strings.TrimSpace(n) == "" {
			return fmt.Errorf("column names must not be empty: %+v", c)
		}
		if seen[n] {
			return fmt.Errorf("column %q mapped more than once", n)
		}
		seen[n] = true
	}
	return nil
}

// ForPath picks a loader from the file extension.
func ForPath(path string, cols Columns) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".parq":
		return &ParquetLoader{Columns: cols}, nil
	case ".csv":
		return &CSVLoader{Columns: cols}, nil
	default:
		return nil, &DataSourceError{
			Source: path,
			Reason: fmt.Sprintf("unsupported file extension %q (want .parquet or .csv)", filepath.Ext(path)),
		}
	}
}

// Load is ForPath followed by Load.
func Load(ctx context.Context, path string, cols Columns) ([]track.Sample, error) {
	l, err := ForPath(path, cols)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, path)
}
