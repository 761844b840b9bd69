package loader

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/common"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/types"

	"github.com/banshee-data/bee.report/internal/monitoring"
	"github.com/banshee-data/bee.report/internal/track"
)

// ParquetLoader reads the four mapped columns of a flat Parquet file.
type ParquetLoader struct {
	Columns Columns
	// Parallel is the number of goroutines the decoder may use per column.
	// Zero means one.
	Parallel int64
}

// column is one resolved leaf of the file schema.
type column struct {
	name    string
	path    string
	element *parquet.SchemaElement
}

// Load implements Loader.
func (l *ParquetLoader) Load(ctx context.Context, path string) (samples []track.Sample, err error) {
	if err := l.Columns.Validate(); err != nil {
		return nil, sourceErr(path, err, "invalid column mapping")
	}
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, sourceErr(path, err, "open")
	}
	defer fr.Close()

	// The decoder panics on some malformed pages rather than returning an
	// error.
	defer func() {
		if r := recover(); r != nil {
			samples = nil
			err = sourceErr(path, fmt.Errorf("%v", r), "decode")
		}
	}()

	np := l.Parallel
	if np <= 0 {
		np = 1
	}
	pr, err := reader.NewParquetColumnReader(fr, np)
	if err != nil {
		return nil, sourceErr(path, err, "read footer")
	}
	defer pr.ReadStop()

	cols := make([]column, 0, 4)
	for _, name := range l.Columns.Names() {
		c, err := resolveColumn(pr, name)
		if err != nil {
			return nil, sourceErr(path, err, "missing required column %q", name)
		}
		cols = append(cols, c)
	}

	rows := pr.GetNumRows()
	if rows == 0 {
		return []track.Sample{}, nil
	}
	values := make([][]interface{}, len(cols))
	for i, c := range cols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vals, _, _, err := pr.ReadColumnByPath(c.path, rows)
		if err != nil {
			return nil, sourceErr(path, err, "read column %q", c.name)
		}
		if int64(len(vals)) != rows {
			return nil, sourceErr(path, nil, "column %q has %d values, want %d", c.name, len(vals), rows)
		}
		values[i] = vals
	}

	samples = make([]track.Sample, rows)
	for r := range samples {
		s := &samples[r]
		if s.EntityID, err = entityValue(values[0][r]); err != nil {
			return nil, sourceErr(path, err, "row %d column %q", r, cols[0].name)
		}
		if s.Timestamp, err = timestampValue(values[1][r], cols[1].element); err != nil {
			return nil, sourceErr(path, err, "row %d column %q", r, cols[1].name)
		}
		if s.X, err = coordValue(values[2][r]); err != nil {
			return nil, sourceErr(path, err, "row %d column %q", r, cols[2].name)
		}
		if s.Y, err = coordValue(values[3][r]); err != nil {
			return nil, sourceErr(path, err, "row %d column %q", r, cols[3].name)
		}
	}
	monitoring.Logf("loaded %d samples from %s", len(samples), path)
	return samples, nil
}

// resolveColumn finds a top-level leaf column by its external name.
func resolveColumn(pr *reader.ParquetReader, name string) (column, error) {
	sh := pr.SchemaHandler
	for i := 1; i < len(sh.SchemaElements); i++ {
		el := sh.SchemaElements[i]
		if el.GetNumChildren() != 0 {
			continue
		}
		exPath := common.StrToPath(sh.InPathToExPath[sh.IndexMap[int32(i)]])
		if len(exPath) != 2 || exPath[1] != name {
			continue
		}
		return column{
			name:    name,
			path:    common.PathToStr(exPath),
			element: el,
		}, nil
	}
	return column{}, fmt.Errorf("no top-level column named %q", name)
}

func entityValue(v interface{}) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", fmt.Errorf("null entity id")
	case string:
		if x == "" {
			return "", fmt.Errorf("empty entity id")
		}
		return x, nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported entity id type %T", v)
	}
}

func coordValue(v interface{}) (float64, error) {
	switch x := v.(type) {
	case nil:
		return math.NaN(), fmt.Errorf("null coordinate")
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return math.NaN(), fmt.Errorf("unsupported coordinate type %T", v)
	}
}

// timestampValue converts a raw column value using the column's logical or
// converted type. Plain INT64 is nanoseconds since the epoch.
func timestampValue(v interface{}, el *parquet.SchemaElement) (time.Time, error) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("null timestamp")
	case int64:
		switch timestampUnit(el) {
		case time.Millisecond:
			return types.TIMESTAMP_MILLISToTime(x, true), nil
		case time.Microsecond:
			return types.TIMESTAMP_MICROSToTime(x, true), nil
		default:
			return types.TIMESTAMP_NANOSToTime(x, true), nil
		}
	case int32:
		// DATE: days since the epoch
		return time.Unix(int64(x)*86400, 0).UTC(), nil
	case string:
		if el.GetType() == parquet.Type_INT96 {
			if len(x) != 12 {
				return time.Time{}, fmt.Errorf("INT96 timestamp of %d bytes", len(x))
			}
			return types.INT96ToTime(x), nil
		}
		return ParseTimestamp(x)
	case float64:
		return ParseTimestamp(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func timestampUnit(el *parquet.SchemaElement) time.Duration {
	if lt := el.GetLogicalType(); lt != nil && lt.IsSetTIMESTAMP() {
		unit := lt.GetTIMESTAMP().GetUnit()
		switch {
		case unit == nil:
		case unit.IsSetMILLIS():
			return time.Millisecond
		case unit.IsSetMICROS():
			return time.Microsecond
		}
		return time.Nanosecond
	}
	if el.IsSetConvertedType() {
		switch el.GetConvertedType() {
		case parquet.ConvertedType_TIMESTAMP_MILLIS:
			return time.Millisecond
		case parquet.ConvertedType_TIMESTAMP_MICROS:
			return time.Microsecond
		}
	}
	return time.Nanosecond
}
