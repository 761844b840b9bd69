package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/bee.report/internal/monitoring"
	"github.com/banshee-data/bee.report/internal/track"
)

// CSVLoader reads a comma-separated file with a header row.
type CSVLoader struct {
	Columns Columns
}

// Load implements Loader.
func (l *CSVLoader) Load(ctx context.Context, path string) ([]track.Sample, error) {
	if err := l.Columns.Validate(); err != nil {
		return nil, sourceErr(path, err, "invalid column mapping")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, sourceErr(path, err, "open")
	}
	defer f.Close()

	samples, err := l.read(ctx, path, f)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("loaded %d samples from %s", len(samples), path)
	return samples, nil
}

func (l *CSVLoader) read(ctx context.Context, path string, r io.Reader) ([]track.Sample, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, sourceErr(path, nil, "missing header row")
	}
	if err != nil {
		return nil, sourceErr(path, err, "read header")
	}
	pos := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}
	idx := make([]int, 4)
	for i, name := range l.Columns.Names() {
		p, ok := pos[name]
		if !ok {
			return nil, sourceErr(path, nil, "missing required column %q", name)
		}
		idx[i] = p
	}

	var samples []track.Sample
	for row := 1; ; row++ {
		if row%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, sourceErr(path, err, "read row %d", row)
		}
		s, err := parseRecord(rec, idx, l.Columns)
		if err != nil {
			return nil, sourceErr(path, err, "row %d", row)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func parseRecord(rec []string, idx []int, cols Columns) (track.Sample, error) {
	var s track.Sample
	s.EntityID = strings.TrimSpace(rec[idx[0]])
	if s.EntityID == "" {
		return s, errors.New("empty " + cols.Entity)
	}
	ts, err := ParseTimestamp(rec[idx[1]])
	if err != nil {
		return s, err
	}
	s.Timestamp = ts
	if s.X, err = parseCoord(rec[idx[2]], cols.X); err != nil {
		return s, err
	}
	if s.Y, err = parseCoord(rec[idx[3]], cols.Y); err != nil {
		return s, err
	}
	return s, nil
}

func parseCoord(v, name string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, errors.New("invalid " + name + ": " + err.Error())
	}
	return f, nil
}
