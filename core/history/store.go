// Package history keeps a durable record of every training run so losses
// and scores can be compared across datasets and hyperparameters.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/commutecarbon/core/evaluation"
	"github.com/kilianp07/commutecarbon/core/training"
)

// Prediction is one scenario scored at the end of a run.
type Prediction struct {
	Scenario     string  `json:"scenario"`
	PredictedKg  float64 `json:"predicted_kg"`
	SimilarCount int     `json:"similar_count"`
	SimilarKg    float64 `json:"similar_kg"`
}

// Run captures one pipeline execution.
type Run struct {
	ID          string             `json:"id"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
	Dataset     string             `json:"dataset"`
	Records     int                `json:"records"`
	TrainSize   int                `json:"train_size"`
	TestSize    int                `json:"test_size"`
	Config      training.Config    `json:"config"`
	Losses      training.History   `json:"losses"`
	Metrics     evaluation.Metrics `json:"metrics"`
	Baseline    evaluation.Metrics `json:"baseline"`
	Predictions []Prediction       `json:"predictions,omitempty"`
	Artifact    string             `json:"artifact"`
}

// NewRun returns a Run with a fresh ID started now.
func NewRun() Run {
	return Run{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
}

// Query filters runs by start time. Zero bounds are open. Limit keeps the
// most recent runs when positive.
type Query struct {
	Start time.Time
	End   time.Time
	Limit int
}

func (q Query) match(r Run) bool {
	if !q.Start.IsZero() && r.StartedAt.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.StartedAt.After(q.End) {
		return false
	}
	return true
}

func (q Query) trim(runs []Run) []Run {
	if q.Limit > 0 && len(runs) > q.Limit {
		return runs[len(runs)-q.Limit:]
	}
	return runs
}

// Store persists runs. Query returns runs ordered by start time.
type Store interface {
	Append(ctx context.Context, run Run) error
	Query(ctx context.Context, q Query) ([]Run, error)
	Close() error
}
