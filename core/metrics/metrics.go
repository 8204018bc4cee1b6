package metrics

import "time"

// EpochEvent carries the losses of one completed training epoch.
type EpochEvent struct {
	RunID       string
	Epoch       int
	TrainLoss   float64
	HeldOutLoss float64
	Time        time.Time
}

// EpochRecorder records training progress.
type EpochRecorder interface {
	RecordEpoch(ev EpochEvent) error
}

// EvaluationEvent carries held-out metrics for a scored model. Model is
// "regressor" for the trained network and "baseline" for the group mean.
type EvaluationEvent struct {
	RunID   string
	Model   string
	Samples int
	MSE     float64
	RMSE    float64
	MAE     float64
	R2      float64
	Time    time.Time
}

// EvaluationRecorder records final evaluation metrics.
type EvaluationRecorder interface {
	RecordEvaluation(ev EvaluationEvent) error
}

// RunRecorder is the sink every backend implements.
type RunRecorder interface {
	EpochRecorder
	EvaluationRecorder
}

// PredictionEvent describes one scored inference request.
type PredictionEvent struct {
	Traffic        string
	DurationMin    float64
	DistanceKm     float64
	EfficiencyL100 float64
	PredictedKg    float64
	Time           time.Time
}

// PredictionRecorder is implemented by sinks able to record predictions.
type PredictionRecorder interface {
	RecordPrediction(ev PredictionEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordEpoch(EpochEvent) error           { return nil }
func (NopSink) RecordEvaluation(EvaluationEvent) error { return nil }
func (NopSink) RecordPrediction(PredictionEvent) error { return nil }
