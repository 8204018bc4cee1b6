package prediction

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/commutecarbon/core/features"
	"github.com/kilianp07/commutecarbon/core/metrics"
	"github.com/kilianp07/commutecarbon/core/model"
	"github.com/kilianp07/commutecarbon/core/regressor"
)

func corpus() []model.TripRecord {
	return []model.TripRecord{
		{Traffic: model.TrafficLow, DurationMin: 29, DistanceKm: 38, EfficiencyL100: 3.4, CO2Kg: 3.0},
		{Traffic: model.TrafficLow, DurationMin: 41, DistanceKm: 39, EfficiencyL100: 3.6, CO2Kg: 3.2},
		{Traffic: model.TrafficLow, DurationMin: 60, DistanceKm: 40, EfficiencyL100: 3.8, CO2Kg: 3.5},
		{Traffic: model.TrafficModerate, DurationMin: 35, DistanceKm: 41, EfficiencyL100: 4.5, CO2Kg: 4.2},
		{Traffic: model.TrafficHigh, DurationMin: 80, DistanceKm: 42, EfficiencyL100: 5.0, CO2Kg: 4.8},
	}
}

func newPredictor(t *testing.T, opts ...Option) *Predictor {
	t.Helper()
	st, err := features.Fit(corpus())
	require.NoError(t, err)
	net, err := regressor.New(features.Dim, regressor.DefaultDropout, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	p, err := NewPredictor(net, st, append([]Option{WithCorpus(corpus())}, opts...)...)
	require.NoError(t, err)
	return p
}

type predRecorder struct{ events []metrics.PredictionEvent }

func (r *predRecorder) RecordPrediction(e metrics.PredictionEvent) error {
	r.events = append(r.events, e)
	return nil
}

func TestPredict_RejectsUnknownTraffic(t *testing.T) {
	p := newPredictor(t)
	_, err := p.Predict(Query{Traffic: 5, DurationMin: 35, DistanceKm: 39, EfficiencyL100: 3.5})
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, "traffic_condition", ve.Field)
}

func TestPredict_RejectsBadNumbers(t *testing.T) {
	p := newPredictor(t)
	for _, q := range []Query{
		{Traffic: 0, DurationMin: 0, DistanceKm: 39, EfficiencyL100: 3.5},
		{Traffic: 0, DurationMin: 35, DistanceKm: math.NaN(), EfficiencyL100: 3.5},
		{Traffic: 0, DurationMin: 35, DistanceKm: 39, EfficiencyL100: math.Inf(1)},
	} {
		_, err := p.Predict(q)
		var ve *model.ValidationError
		assert.True(t, errors.As(err, &ve), "query %+v: %v", q, err)
	}
}

func TestPredict_DeterministicAndRecorded(t *testing.T) {
	rec := &predRecorder{}
	p := newPredictor(t, WithRecorder(rec))
	q := Scenarios[0].Query
	a, err := p.Predict(q)
	require.NoError(t, err)
	b, err := p.Predict(q)
	require.NoError(t, err)
	if a != b {
		t.Fatalf("inference not deterministic: %v != %v", a, b)
	}
	require.Len(t, rec.events, 2)
	assert.Equal(t, "low", rec.events[0].Traffic)
	assert.Equal(t, a, rec.events[0].PredictedKg)
}

func TestSimilar_Window(t *testing.T) {
	p := newPredictor(t)
	// 35 min: window [28, 42]
	s, err := p.Similar(Query{Traffic: 0, DurationMin: 35, DistanceKm: 39, EfficiencyL100: 3.5})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 3.1, s.MeanKg, 1e-12)

	s, err = p.Similar(Query{Traffic: 2, DurationMin: 35, DistanceKm: 39, EfficiencyL100: 3.5})
	require.NoError(t, err)
	assert.Zero(t, s.Count)
	assert.Equal(t, "no similar trips", s.String())

	wide := newPredictor(t, WithTolerance(1))
	s, err = wide.Similar(Query{Traffic: 0, DurationMin: 35, DistanceKm: 39, EfficiencyL100: 3.5})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Count)
}

func TestNewPredictor_DimMismatch(t *testing.T) {
	st, err := features.Fit(corpus())
	require.NoError(t, err)
	net, err := regressor.New(3, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	_, err = NewPredictor(net, st)
	assert.Error(t, err)
}
