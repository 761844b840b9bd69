package loader

import "fmt"

// DataSourceError reports a source that is missing, unreadable, or lacks a
// required field. It is never retried.
type DataSourceError struct {
	Source string
	Reason string
	Err    error
}

func (e *DataSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data source %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("data source %s: %s", e.Source, e.Reason)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

func sourceErr(source string, err error, format string, args ...interface{}) *DataSourceError {
	return &DataSourceError{Source: source, Reason: fmt.Sprintf(format, args...), Err: err}
}
