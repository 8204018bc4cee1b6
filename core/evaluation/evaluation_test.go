package evaluation

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/commutecarbon/core/dataset"
	"github.com/kilianp07/commutecarbon/core/model"
)

type constant float64

func (c constant) Predict([]float64) float64 { return float64(c) }

type identity struct{}

func (identity) Predict(x []float64) float64 { return x[0] }

func sample(tc model.TrafficCondition, y float64) dataset.Sample {
	return dataset.Sample{Record: model.TripRecord{Traffic: tc, CO2Kg: y}, X: []float64{y}, Y: y}
}

func TestEvaluate_Perfect(t *testing.T) {
	test := []dataset.Sample{sample(0, 3), sample(1, 4), sample(2, 5)}
	m, err := Evaluate(identity{}, test)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Samples)
	assert.Zero(t, m.MSE)
	assert.Zero(t, m.MAE)
	assert.InDelta(t, 1.0, m.R2, 1e-12)
}

func TestEvaluate_Constant(t *testing.T) {
	test := []dataset.Sample{sample(0, 2), sample(1, 4)}
	m, err := Evaluate(constant(3), test)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.MSE, 1e-12)
	assert.InDelta(t, 1.0, m.RMSE, 1e-12)
	assert.InDelta(t, 1.0, m.MAE, 1e-12)
	// predicting the mean explains nothing
	assert.InDelta(t, 0.0, m.R2, 1e-12)
}

func TestEvaluate_ZeroVarianceTargets(t *testing.T) {
	test := []dataset.Sample{sample(0, 4), sample(1, 4), sample(2, 4)}
	m, err := Evaluate(constant(3), test)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(m.R2))
	assert.InDelta(t, 1.0, m.MSE, 1e-12)
}

func TestPredictions(t *testing.T) {
	test := []dataset.Sample{sample(0, 3), sample(1, 4)}
	pairs := Predictions(constant(3.5), test)
	require.Len(t, pairs, 2)
	assert.Equal(t, Pair{Actual: 3, Predicted: 3.5}, pairs[0])
	assert.Equal(t, Pair{Actual: 4, Predicted: 3.5}, pairs[1])
	assert.Empty(t, Predictions(constant(0), nil))
}

func TestEvaluate_Empty(t *testing.T) {
	_, err := Evaluate(constant(0), nil)
	var ide *model.InsufficientDataError
	if !errors.As(err, &ide) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func TestGroupMeanBaseline(t *testing.T) {
	train := []model.TripRecord{
		{Traffic: model.TrafficLow, CO2Kg: 3},
		{Traffic: model.TrafficLow, CO2Kg: 5},
		{Traffic: model.TrafficHigh, CO2Kg: 8},
	}
	b, err := FitGroupMeans(train)
	require.NoError(t, err)
	assert.InDelta(t, 16.0/3, b.Global, 1e-12)
	assert.InDelta(t, 4.0, b.PredictRecord(model.TripRecord{Traffic: model.TrafficLow}), 1e-12)
	assert.InDelta(t, 8.0, b.PredictRecord(model.TripRecord{Traffic: model.TrafficHigh}), 1e-12)
	assert.InDelta(t, b.Global, b.PredictRecord(model.TripRecord{Traffic: model.TrafficModerate}), 1e-12)

	m, err := b.Evaluate([]dataset.Sample{sample(model.TrafficLow, 4), sample(model.TrafficHigh, 8)})
	require.NoError(t, err)
	assert.Zero(t, m.MSE)

	_, err = FitGroupMeans(nil)
	assert.Error(t, err)
}

func TestMetrics_JSONUndefinedR2(t *testing.T) {
	b, err := json.Marshal(Metrics{Samples: 2, MSE: 1, RMSE: 1, MAE: 1, R2: math.NaN()})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"r2":null`)
	var m Metrics
	require.NoError(t, json.Unmarshal(b, &m))
	assert.True(t, math.IsNaN(m.R2))

	b, err = json.Marshal(Metrics{Samples: 2, R2: 0.5})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, 0.5, m.R2)
}
