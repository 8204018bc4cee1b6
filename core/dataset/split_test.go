package dataset

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/commutecarbon/core/features"
	"github.com/kilianp07/commutecarbon/core/model"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestSplit_Deterministic(t *testing.T) {
	items := seq(20)
	tr1, te1, err := Split(items, 0.8, 42)
	require.NoError(t, err)
	tr2, te2, err := Split(items, 0.8, 42)
	require.NoError(t, err)
	assert.Equal(t, tr1, tr2)
	assert.Equal(t, te1, te2)
	assert.Len(t, tr1, 16)
	assert.Len(t, te1, 4)

	_, te3, err := Split(items, 0.8, 7)
	require.NoError(t, err)
	assert.NotEqual(t, te1, te3)
}

func TestSplit_Disjoint(t *testing.T) {
	for _, n := range []int{2, 3, 7, 20, 101} {
		for _, f := range []float64{0.1, 0.5, 0.8, 0.99} {
			items := seq(n)
			tr, te, err := Split(items, f, 1)
			require.NoError(t, err)
			assert.Equal(t, n, len(tr)+len(te))
			assert.NotEmpty(t, tr)
			assert.NotEmpty(t, te)
			all := append(append([]int(nil), tr...), te...)
			sort.Ints(all)
			assert.Equal(t, items, all)
		}
	}
}

func TestSplit_Errors(t *testing.T) {
	_, _, err := Split(seq(1), 0.8, 1)
	var ierr *model.InsufficientDataError
	assert.True(t, errors.As(err, &ierr))

	for _, f := range []float64{0, 1, -0.2, 1.5} {
		_, _, err := Split(seq(10), f, 1)
		var verr *model.ValidationError
		assert.True(t, errors.As(err, &verr), "fraction %v", f)
	}
}

func TestBuild(t *testing.T) {
	recs := []model.TripRecord{
		{Traffic: model.TrafficLow, DurationMin: 30, DistanceKm: 38, EfficiencyL100: 3.2, CO2Kg: 2.8},
		{Traffic: model.TrafficHigh, DurationMin: 80, DistanceKm: 41, EfficiencyL100: 5.1, CO2Kg: 4.8},
	}
	st, err := features.Fit(recs)
	require.NoError(t, err)
	samples, err := Build(recs, st)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 4.8, samples[1].Y)
	assert.Len(t, samples[0].X, features.Dim)
	assert.Equal(t, recs[0], samples[0].Record)
}
