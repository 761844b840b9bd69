package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/banshee-data/bee.report/internal/analysis"
	"github.com/banshee-data/bee.report/internal/config"
	"github.com/banshee-data/bee.report/internal/db"
	"github.com/banshee-data/bee.report/internal/histogram"
	"github.com/banshee-data/bee.report/internal/loader"
	"github.com/banshee-data/bee.report/internal/monitoring"
	"github.com/banshee-data/bee.report/internal/report"
	"github.com/banshee-data/bee.report/internal/summary"
)

// loadConfig reads path, or the default preset when path is empty and the
// preset exists. A missing default preset is not an error.
func loadConfig(path string) (*config.AnalysisConfig, error) {
	if path != "" {
		return config.LoadAnalysisConfig(path)
	}
	if _, err := os.Stat(config.DefaultConfigPath); errors.Is(err, fs.ErrNotExist) {
		return config.EmptyAnalysisConfig(), nil
	}
	return config.LoadAnalysisConfig(config.DefaultConfigPath)
}

type speedsFlags struct {
	config    string
	method    string
	threshold float64
	bins      int
	color     string
	units     string
	workers   int
	out       string
	csv       string
	json      string
	db        string
	noPlot    bool
}

// apply overrides cfg with the flags the user actually set.
func (f *speedsFlags) apply(cmd *cobra.Command, cfg *config.AnalysisConfig) error {
	flags := cmd.Flags()
	if flags.Changed("method") {
		m, err := summary.ParseMethod(f.method)
		if err != nil {
			return err
		}
		s := string(m)
		cfg.Method = &s
	}
	if flags.Changed("threshold") {
		cfg.Threshold = &f.threshold
	}
	if flags.Changed("bins") {
		cfg.Bins = &f.bins
	}
	if flags.Changed("color") {
		cfg.Color = &f.color
	}
	if flags.Changed("units") {
		cfg.Units = &f.units
	}
	if flags.Changed("workers") {
		cfg.Workers = &f.workers
	}
	return cfg.Validate()
}

func newSpeedsCmd() *cobra.Command {
	f := &speedsFlags{}
	cmd := &cobra.Command{
		Use:   "speeds DATA",
		Short: "Summarize per-bee speeds, filter by threshold and plot a histogram",
		Long: `speeds loads a trajectory file, computes each bee's step speeds, reduces
them to one mean or median value per bee and keeps the bees whose value is
at or below the threshold. The retained values are plotted as a histogram:
to --out (.png, .jpg, .svg, .pdf or .html) or, without --out, in the browser.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpeeds(cmd, f, args[0])
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "Analysis config JSON (default "+config.DefaultConfigPath+" when present)")
	fl.StringVar(&f.method, "method", string(config.DefaultMethod), "Summary method: mean or median")
	fl.Float64Var(&f.threshold, "threshold", config.DefaultThreshold, "Keep bees whose summary speed is <= this value")
	fl.IntVar(&f.bins, "bins", config.DefaultBins, "Histogram bin count")
	fl.StringVar(&f.color, "color", config.DefaultColor, "Histogram bar color (#rrggbb or a color name)")
	fl.StringVar(&f.units, "units", config.DefaultUnits, "Coordinate length unit (mm, cm, m)")
	fl.IntVar(&f.workers, "workers", 0, "Concurrent entity workers (0 = GOMAXPROCS)")
	fl.StringVar(&f.out, "out", "", "Write the histogram to this file instead of opening a browser")
	fl.StringVar(&f.csv, "csv", "", "Write per-bee summaries as CSV")
	fl.StringVar(&f.json, "json", "", "Write the run report as JSON")
	fl.StringVar(&f.db, "db", "", "Record the run in this SQLite database")
	fl.BoolVar(&f.noPlot, "no-plot", false, "Skip the histogram")
	return cmd
}

func runSpeeds(cmd *cobra.Command, f *speedsFlags, data string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(f.config)
	if err != nil {
		return err
	}
	if err := f.apply(cmd, cfg); err != nil {
		return err
	}

	l, err := loader.ForPath(data, cfg.GetColumns())
	if err != nil {
		return err
	}
	opts := analysis.Options{
		Method:    cfg.GetMethod(),
		Threshold: cfg.GetThreshold(),
		Workers:   cfg.GetWorkers(),
	}
	res, err := analysis.RunSource(ctx, l, data, opts)
	if err != nil {
		return err
	}
	unit := cfg.GetUnits()
	report.PrintSummary(out, data, unit, res)

	runID := uuid.NewString()
	if f.db != "" {
		database, err := db.NewDB(f.db)
		if err != nil {
			return err
		}
		defer database.Close()
		run := db.NewRun(data, unit, res, time.Now())
		if err := database.RecordRun(ctx, run, res); err != nil {
			return err
		}
		runID = run.RunID
		fmt.Fprintf(out, "Run recorded: %s\n", runID)
	}

	if f.csv != "" {
		if err := report.SaveCSV(f.csv, res); err != nil {
			return err
		}
		monitoring.Logf("wrote per-bee summaries to %s", f.csv)
	}
	if f.json != "" {
		if err := report.SaveJSON(f.json, report.NewDocument(runID, data, unit, res)); err != nil {
			return err
		}
		monitoring.Logf("wrote run report to %s", f.json)
	}

	if f.noPlot {
		return nil
	}
	req := histogram.Request{
		Values: res.Filtered.Values(),
		Method: res.Method,
		Entity: cfg.GetEntity(),
		Units:  unit,
		Color:  cfg.GetColor(),
		Bins:   cfg.GetBins(),
	}
	if f.out != "" {
		if err := histogram.Render(req, f.out); err != nil {
			return err
		}
		fmt.Fprintf(out, "Histogram saved to %s\n", f.out)
		return nil
	}
	page, err := histogram.Display(req)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Histogram opened from %s\n", page)
	return nil
}
