// Package testutil provides shared test helpers and fixture writers.
package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/banshee-data/bee.report/internal/track"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// HiveRow is the on-disk layout of the hive tracker Parquet export.
type HiveRow struct {
	BeeID     string  `parquet:"name=bee_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Timestamp int64   `parquet:"name=timestamp, type=INT64, logicaltype=TIMESTAMP, logicaltype.isadjustedtoutc=true, logicaltype.unit=MICROS"`
	X         float64 `parquet:"name=x_hive, type=DOUBLE"`
	Y         float64 `parquet:"name=y_hive, type=DOUBLE"`
}

// HiveRows converts samples to HiveRow values.
func HiveRows(samples []track.Sample) []HiveRow {
	rows := make([]HiveRow, len(samples))
	for i, s := range samples {
		rows[i] = HiveRow{
			BeeID:     s.EntityID,
			Timestamp: s.Timestamp.UnixMicro(),
			X:         s.X,
			Y:         s.Y,
		}
	}
	return rows
}

// WriteParquet writes rows to dir/name with the schema taken from the
// parquet tags of T and returns the path.
func WriteParquet[T any](t testing.TB, dir, name string, rows []T) string {
	t.Helper()
	path := filepath.Join(dir, name)
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	pw, err := writer.NewParquetWriter(fw, new(T), 1)
	if err != nil {
		fw.Close()
		t.Fatalf("parquet writer: %v", err)
	}
	for i := range rows {
		if err := pw.Write(rows[i]); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		t.Fatalf("write stop: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
	return path
}

// WriteHiveParquet writes samples in the hive tracker layout.
func WriteHiveParquet(t testing.TB, dir string, samples []track.Sample) string {
	t.Helper()
	return WriteParquet(t, dir, "tracks.parquet", HiveRows(samples))
}

// WriteHiveCSV writes samples as CSV with the hive tracker column names and
// RFC 3339 timestamps.
func WriteHiveCSV(t testing.TB, dir string, samples []track.Sample) string {
	t.Helper()
	path := filepath.Join(dir, "tracks.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	records := [][]string{{"bee_id", "timestamp", "x_hive", "y_hive"}}
	for _, s := range samples {
		records = append(records, []string{
			s.EntityID,
			s.Timestamp.UTC().Format(time.RFC3339Nano),
			strconv.FormatFloat(s.X, 'g', -1, 64),
			strconv.FormatFloat(s.Y, 'g', -1, 64),
		})
	}
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Epoch is the fixture base time.
var Epoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// At returns a sample for id at Epoch plus sec seconds.
func At(id string, sec, x, y float64) track.Sample {
	return track.Sample{
		EntityID:  id,
		Timestamp: Epoch.Add(time.Duration(sec * float64(time.Second))),
		X:         x,
		Y:         y,
	}
}
