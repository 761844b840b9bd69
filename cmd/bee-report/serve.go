package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/bee.report/internal/api"
	"github.com/banshee-data/bee.report/internal/db"
	"github.com/banshee-data/bee.report/internal/monitoring"
)

func newServeCmd() *cobra.Command {
	var dbPath, listen, configPath, assetsHost string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recorded runs over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			database, err := db.NewDB(dbPath)
			if err != nil {
				return err
			}
			defer database.Close()

			mux, err := api.NewServer(database, api.Options{
				Entity:     cfg.GetEntity(),
				Color:      cfg.GetColor(),
				Bins:       cfg.GetBins(),
				AssetsHost: assetsHost,
			}).ServeMux()
			if err != nil {
				return err
			}
			return serveHTTP(cmd.Context(), listen, api.LoggingMiddleware(mux))
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&dbPath, "db", "runs.db", "SQLite database path")
	fl.StringVar(&listen, "listen", ":8080", "Listen address")
	fl.StringVar(&configPath, "config", "", "Analysis config JSON for histogram styling")
	fl.StringVar(&assetsHost, "assets-host", "", "Where histogram pages load echarts from (default: the go-echarts CDN)")
	return cmd
}

// serveHTTP runs the server until ctx is cancelled, then shuts it down.
func serveHTTP(ctx context.Context, addr string, h http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		monitoring.Logf("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	monitoring.Logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			monitoring.Logf("HTTP server force close error: %v", err)
		}
	}
	monitoring.Logf("HTTP server routine stopped")
	return nil
}
