// Package report exports analysis results as CSV, JSON and a console
// summary.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/banshee-data/bee.report/internal/analysis"
	"github.com/banshee-data/bee.report/internal/summary"
	"github.com/banshee-data/bee.report/internal/units"
)

// EntityRow is one summarized entity.
type EntityRow struct {
	EntityID   string  `json:"entity_id"`
	Summary    float64 `json:"summary"`
	SpeedCount int     `json:"speed_count"`
	Retained   bool    `json:"retained"`
}

// Document is the JSON export of one run.
type Document struct {
	RunID      string         `json:"run_id,omitempty"`
	Source     string         `json:"source"`
	Method     summary.Method `json:"method"`
	Threshold  float64        `json:"threshold"`
	Units      string         `json:"units"`
	Samples    int            `json:"samples"`
	Entities   int            `json:"entities"`
	Summarized int            `json:"summarized"`
	Retained   int            `json:"retained"`
	Stats      summary.Stats  `json:"retained_stats"`
	Rows       []EntityRow    `json:"entities_detail"`
}

// Rows lists every summarized entity in discovery order.
func Rows(res *analysis.Result) []EntityRow {
	rows := make([]EntityRow, len(res.Summaries))
	for i, s := range res.Summaries {
		rows[i] = EntityRow{
			EntityID:   s.EntityID,
			Summary:    s.Value,
			SpeedCount: s.Count,
			Retained:   res.Retained(s.EntityID),
		}
	}
	return rows
}

// NewDocument assembles the JSON export.
func NewDocument(runID, source, unit string, res *analysis.Result) Document {
	return Document{
		RunID:      runID,
		Source:     source,
		Method:     res.Method,
		Threshold:  res.Threshold,
		Units:      unit,
		Samples:    res.Samples,
		Entities:   res.Entities(),
		Summarized: len(res.Summaries),
		Retained:   res.Filtered.Len(),
		Stats:      res.Stats,
		Rows:       Rows(res),
	}
}

// WriteCSV writes one row per summarized entity.
func WriteCSV(w io.Writer, res *analysis.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"entity_id", "summary", "speed_count", "retained"}); err != nil {
		return err
	}
	for _, r := range Rows(res) {
		row := []string{
			r.EntityID,
			strconv.FormatFloat(r.Summary, 'f', 4, 64),
			strconv.Itoa(r.SpeedCount),
			strconv.FormatBool(r.Retained),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes doc indented.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// SaveCSV writes the CSV export to path.
func SaveCSV(path string, res *analysis.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write CSV: %w", err)
	}
	if err := WriteCSV(f, res); err != nil {
		f.Close()
		return fmt.Errorf("write CSV: %w", err)
	}
	return f.Close()
}

// SaveJSON writes the JSON export to path.
func SaveJSON(path string, doc Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	if err := WriteJSON(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("write JSON: %w", err)
	}
	return f.Close()
}

// PrintSummary writes the console report.
func PrintSummary(w io.Writer, source, unit string, res *analysis.Result) {
	label := units.SpeedLabel(unit)
	fmt.Fprintln(w, "========== Speed Analysis Summary ==========")
	fmt.Fprintf(w, "Source: %s\n", source)
	fmt.Fprintf(w, "Samples: %d\n", res.Samples)
	fmt.Fprintf(w, "Entities: %d total, %d with a finite speed\n", res.Entities(), len(res.Summaries))
	fmt.Fprintf(w, "Method: %s, threshold <= %g %s\n", res.Method, res.Threshold, label)
	fmt.Fprintln(w)
	if res.Stats.Count > 0 {
		fmt.Fprintf(w, "Speed statistics (retained, %s):\n", label)
		fmt.Fprintf(w, "  Min: %.2f\n", res.Stats.Min)
		fmt.Fprintf(w, "  Max: %.2f\n", res.Stats.Max)
		fmt.Fprintf(w, "  Avg: %.2f (stddev %.2f)\n", res.Stats.Mean, res.Stats.StdDev)
		fmt.Fprintf(w, "  P50: %.2f\n", res.Stats.P50)
		fmt.Fprintf(w, "  P85: %.2f\n", res.Stats.P85)
		fmt.Fprintf(w, "  P95: %.2f\n", res.Stats.P95)
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Number of bees after filtering: %d\n", res.Filtered.Len())
	fmt.Fprintln(w, "============================================")
}
