package model

import "fmt"

// DegenerateFeatureError is returned when a feature has zero variance and
// cannot be standardized.
type DegenerateFeatureError struct {
	Feature string
	Mean    float64
}

func (e *DegenerateFeatureError) Error() string {
	return fmt.Sprintf("degenerate feature %q: zero variance around %g", e.Feature, e.Mean)
}

// InsufficientDataError is returned when a corpus or partition is too small.
type InsufficientDataError struct {
	Op   string
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: have %d records, need at least %d", e.Op, e.Have, e.Need)
}

// ValidationError reports an out-of-domain or malformed input value. Row is
// the line of the dataset file holding the value (header is line 1), zero
// when the value does not come from a file.
type ValidationError struct {
	Row    int
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg = fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s", e.Row, msg)
	}
	return msg
}

// CorruptArtifactError is returned when a persisted model fails integrity checks.
type CorruptArtifactError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptArtifactError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt artifact %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt artifact %s: %s", e.Path, e.Reason)
}

func (e *CorruptArtifactError) Unwrap() error { return e.Err }
