package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/bee.report/internal/annotate"
	"github.com/banshee-data/bee.report/internal/db"
	"github.com/banshee-data/bee.report/internal/frame"
	"github.com/banshee-data/bee.report/internal/testutil"
	"github.com/banshee-data/bee.report/internal/track"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// hiveSamples has bee1 at a mean 2.5 cm/s and bee2 at 50 cm/s.
func hiveSamples() []track.Sample {
	return []track.Sample{
		testutil.At("bee1", 0, 0, 0),
		testutil.At("bee1", 1, 3, 4),
		testutil.At("bee1", 2, 3, 4),
		testutil.At("bee2", 0, 0, 0),
		testutil.At("bee2", 1, 30, 40),
	}
}

func TestParsePoints(t *testing.T) {
	tests := []struct {
		in      string
		want    []image.Point
		wantErr bool
	}{
		{in: "1,2;3,4;5,6", want: []image.Point{{1, 2}, {3, 4}, {5, 6}}},
		{in: " 10, 20 ; 30,40;50 ,60;", want: []image.Point{{10, 20}, {30, 40}, {50, 60}}},
		{in: "1,2;3,4", wantErr: true},
		{in: "1,2;3,4;5,6;7,8", wantErr: true},
		{in: "1;3,4;5,6", wantErr: true},
		{in: "a,2;3,4;5,6", wantErr: true},
		{in: "1,b;3,4;5,6", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parsePoints(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSpeedsCommand(t *testing.T) {
	dir := t.TempDir()
	data := testutil.WriteHiveCSV(t, dir, hiveSamples())

	out, err := execute(t, "speeds", data, "--no-plot")
	require.NoError(t, err)
	assert.Contains(t, out, "Entities: 2 total, 2 with a finite speed")
	assert.Contains(t, out, "Number of bees after filtering: 1")

	out, err = execute(t, "speeds", data, "--no-plot", "--threshold", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Number of bees after filtering: 2")

	out, err = execute(t, "speeds", data, "--no-plot", "--method", "median", "--threshold", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Method: median")
	assert.Contains(t, out, "Number of bees after filtering: 1")
}

func TestSpeedsCommand_Outputs(t *testing.T) {
	dir := t.TempDir()
	data := testutil.WriteHiveParquet(t, dir, hiveSamples())
	hist := filepath.Join(dir, "hist.png")
	csvPath := filepath.Join(dir, "bees.csv")
	jsonPath := filepath.Join(dir, "run.json")
	dbPath := filepath.Join(dir, "runs.db")

	out, err := execute(t, "speeds", data,
		"--out", hist, "--csv", csvPath, "--json", jsonPath, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Histogram saved to "+hist)
	assert.Contains(t, out, "Run recorded: ")

	for _, p := range []string{hist, csvPath, jsonPath} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.NotZero(t, info.Size(), p)
	}

	csvBytes, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csvBytes), "entity_id,summary,speed_count,retained"))

	database, err := db.NewDB(dbPath)
	require.NoError(t, err)
	defer database.Close()
	runs, err := database.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].RetainedCount)
	assert.Contains(t, out, runs[0].RunID)

	jsonBytes, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), runs[0].RunID)
}

func TestSpeedsCommand_Config(t *testing.T) {
	dir := t.TempDir()
	data := testutil.WriteHiveCSV(t, dir, hiveSamples())
	cfg := filepath.Join(dir, "cfg.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"method": "median", "threshold": 100}`), 0o644))

	out, err := execute(t, "speeds", data, "--no-plot", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Method: median")
	assert.Contains(t, out, "Number of bees after filtering: 2")

	// Flags win over the file.
	out, err = execute(t, "speeds", data, "--no-plot", "--config", cfg, "--threshold", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Number of bees after filtering: 1")
}

func TestSpeedsCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	data := testutil.WriteHiveCSV(t, dir, hiveSamples())

	_, err := execute(t, "speeds", data, "--no-plot", "--method", "mode")
	assert.Error(t, err)

	_, err = execute(t, "speeds", filepath.Join(dir, "missing.parquet"), "--no-plot")
	assert.Error(t, err)

	_, err = execute(t, "speeds", filepath.Join(dir, "tracks.txt"), "--no-plot")
	assert.Error(t, err)

	_, err = execute(t, "speeds")
	assert.Error(t, err)
}

func TestCountCommand(t *testing.T) {
	dir := t.TempDir()
	data := testutil.WriteHiveParquet(t, dir, hiveSamples())

	out, err := execute(t, "count", data)
	require.NoError(t, err)
	assert.Contains(t, out, "Number of unique bee IDs: 2")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bee-report dev")

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "dev"`)
}

func TestMigrateCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	out, err := execute(t, "migrate", "up", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 2")

	_, err = execute(t, "migrate", "sideways", "--db", dbPath)
	assert.Error(t, err)
}

func TestAnnotateCommand(t *testing.T) {
	dir := t.TempDir()
	src := image.NewRGBA(image.Rect(0, 0, 320, 240))
	draw.Draw(src, src.Bounds(), &image.Uniform{color.RGBA{R: 90, G: 90, B: 90, A: 255}}, image.Point{}, draw.Src)
	in := filepath.Join(dir, "first_frame.jpg")
	require.NoError(t, annotate.SaveJPEG(in, src))

	crop := filepath.Join(dir, "circle_crop.jpg")
	full := filepath.Join(dir, "annotated.jpg")
	out, err := execute(t, "annotate", "--image", in, "--points", "100,120;200,120;150,70",
		"--out", crop, "--annotated", full)
	require.NoError(t, err)
	assert.Contains(t, out, "Circle center (150.0, 120.0) radius 50.0")
	assert.Contains(t, out, "Cropped image saved at "+crop)

	img, err := annotate.LoadImage(crop)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 200), img.Bounds())

	img, err = annotate.LoadImage(full)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), img.Bounds())

	_, err = execute(t, "annotate", "--image", in, "--points", "1,2")
	assert.Error(t, err)
}

func TestFrameCommand_MissingVideo(t *testing.T) {
	_, err := execute(t, "frame", filepath.Join(t.TempDir(), "beedio.mp4"))
	assert.ErrorIs(t, err, frame.ErrNoVideo)
}
