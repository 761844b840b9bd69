// Package summary reduces per-entity speed sequences to a single value and
// filters entities by that value.
package summary

import (
	"fmt"
	"strings"
)

// Method is the statistic used to reduce an entity's speeds.
type Method string

const (
	Mean   Method = "mean"
	Median Method = "median"
)

// Methods lists every supported method.
var Methods = []Method{Mean, Median}

// UnsupportedMethodError is returned when a caller asks for a statistic
// outside Methods.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported summary method %q (supported: mean, median)", e.Method)
}

// ParseMethod maps a method name onto a Method. Matching ignores case and
// surrounding space.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if err := m.Validate(); err != nil {
		return "", &UnsupportedMethodError{Method: s}
	}
	return m, nil
}

// Validate returns an *UnsupportedMethodError unless m is in Methods.
func (m Method) Validate() error {
	for _, known := range Methods {
		if m == known {
			return nil
		}
	}
	return &UnsupportedMethodError{Method: string(m)}
}

// Title is the capitalised name used in chart titles.
func (m Method) Title() string {
	switch m {
	case Mean:
		return "Mean"
	case Median:
		return "Median"
	}
	return string(m)
}
