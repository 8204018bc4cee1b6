package metrics

import (
	"context"
	"io"

	"github.com/hashicorp/go-multierror"
)

// Flusher is implemented by sinks that buffer until the run ends.
type Flusher interface {
	Flush(ctx context.Context) error
}

// MultiSink fans events out to several sinks. Every sink receives the event
// even when an earlier one fails; failures are aggregated.
type MultiSink struct {
	Sinks []RunRecorder
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...RunRecorder) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordEpoch forwards epoch losses.
func (m *MultiSink) RecordEpoch(ev EpochEvent) error {
	var result *multierror.Error
	for _, s := range m.Sinks {
		if err := s.RecordEpoch(ev); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// RecordEvaluation forwards evaluation metrics.
func (m *MultiSink) RecordEvaluation(ev EvaluationEvent) error {
	var result *multierror.Error
	for _, s := range m.Sinks {
		if err := s.RecordEvaluation(ev); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// RecordPrediction forwards predictions to sinks that support them.
func (m *MultiSink) RecordPrediction(ev PredictionEvent) error {
	var result *multierror.Error
	for _, s := range m.Sinks {
		if pr, ok := s.(PredictionRecorder); ok {
			if err := pr.RecordPrediction(ev); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	return result.ErrorOrNil()
}

// Flush flushes every sink implementing Flusher.
func (m *MultiSink) Flush(ctx context.Context) error {
	var result *multierror.Error
	for _, s := range m.Sinks {
		if f, ok := s.(Flusher); ok {
			if err := f.Flush(ctx); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	return result.ErrorOrNil()
}

// Close closes every sink implementing io.Closer.
func (m *MultiSink) Close() error {
	var result *multierror.Error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	return result.ErrorOrNil()
}
