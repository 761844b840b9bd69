// Package api serves stored analysis runs over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/bee.report/internal/db"
	"github.com/banshee-data/bee.report/internal/histogram"
	"github.com/banshee-data/bee.report/internal/monitoring"
	"github.com/banshee-data/bee.report/internal/units"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Options tune how runs are presented. Zero fields take the histogram
// defaults.
type Options struct {
	Entity     string
	Color      string
	Bins       int
	AssetsHost string
}

type Server struct {
	db   *db.DB
	opts Options
}

func NewServer(db *db.DB, opts Options) *Server {
	return &Server{db: db, opts: opts}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the API routes plus the database debug console under
// /debug/.
func (s *Server) ServeMux() (*http.ServeMux, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", s.listRuns)
	mux.HandleFunc("/api/runs/{id}", s.runDetail)
	mux.HandleFunc("/runs/{id}/histogram", s.runHistogram)
	if err := s.db.AttachAdminRoutes(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			writeJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = n
	}

	runs, err := s.db.ListRuns(r.Context(), limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve runs: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// RunDetail is the body of GET /api/runs/{id}.
type RunDetail struct {
	Run       *db.Run            `json:"run"`
	Units     string             `json:"units"`
	Summaries []db.EntitySummary `json:"summaries"`
}

func (s *Server) runDetail(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodDelete:
		s.deleteRun(w, r)
		return
	default:
		methodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	retainedOnly := false
	if v := q.Get("retained"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid 'retained' parameter")
			return
		}
		retainedOnly = b
	}
	unit := q.Get("units")
	if unit != "" && !units.IsValid(unit) {
		writeJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid 'units' parameter: must be one of %s", units.GetValidUnitsString()))
		return
	}

	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	sums, err := s.db.RunSummaries(r.Context(), run.RunID, retainedOnly)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve summaries: %v", err))
		return
	}

	from := run.Units
	if unit == "" {
		unit = from
	}
	convertRun(run, unit)
	for i := range sums {
		sums[i].Value = units.ConvertSpeed(sums[i].Value, from, unit)
	}
	writeJSON(w, http.StatusOK, RunDetail{Run: run, Units: unit, Summaries: sums})
}

// convertRun rewrites the speed-valued fields of run into unit.
func convertRun(run *db.Run, unit string) {
	conv := func(v float64) float64 { return units.ConvertSpeed(v, run.Units, unit) }
	run.Threshold = conv(run.Threshold)
	st := &run.Stats
	st.Min, st.Max, st.Mean, st.StdDev = conv(st.Min), conv(st.Max), conv(st.Mean), conv(st.StdDev)
	st.P50, st.P85, st.P95 = conv(st.P50), conv(st.P85), conv(st.P95)
	run.Units = unit
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	err := s.db.DeleteRun(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, db.ErrRunNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to delete run: %v", err))
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// lookupRun loads the run named in the path, writing the error response
// itself when it cannot.
func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (*db.Run, bool) {
	run, err := s.db.GetRun(r.Context(), r.PathValue("id"))
	if errors.Is(err, db.ErrRunNotFound) {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve run: %v", err))
		return nil, false
	}
	return run, true
}

func (s *Server) runHistogram(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	sums, err := s.db.RunSummaries(r.Context(), run.RunID, true)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve summaries: %v", err))
		return
	}

	values := make([]float64, len(sums))
	for i, e := range sums {
		values[i] = e.Value
	}
	req := histogram.Request{
		Values: values,
		Method: run.Method,
		Entity: s.opts.Entity,
		Units:  run.Units,
		Color:  s.opts.Color,
		Bins:   s.opts.Bins,
	}
	renderer := histogram.HTMLRenderer{AssetsHost: s.opts.AssetsHost}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderer.Write(w, req); err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to render histogram: %v", err))
	}
}
