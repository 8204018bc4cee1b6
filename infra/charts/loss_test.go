package charts

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/commutecarbon/core/history"
	"github.com/kilianp07/commutecarbon/core/training"
)

func TestWriteLossChart(t *testing.T) {
	run := history.Run{
		ID:      "3f1c",
		Dataset: "trips.csv",
		Records: 20,
		Losses: training.History{
			{Epoch: 1, TrainLoss: 1.25, HeldOutLoss: 1.5},
			{Epoch: 2, TrainLoss: 0.75, HeldOutLoss: 0.875},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteLossChart(&buf, run))
	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Training loss")
	assert.Contains(t, html, "Held-out loss")
	assert.Contains(t, html, "0.875")
	assert.Contains(t, html, "run 3f1c on trips.csv")
}

func TestWriteLossChart_DivergedEpoch(t *testing.T) {
	run := history.Run{
		ID: "9a0b",
		Losses: training.History{
			{Epoch: 1, TrainLoss: 1.25, HeldOutLoss: 1.5},
			{Epoch: 2, TrainLoss: math.NaN(), HeldOutLoss: math.Inf(1)},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteLossChart(&buf, run))
	html := buf.String()
	assert.Contains(t, html, "Held-out loss")
	assert.Contains(t, html, `"-"`)
	assert.NotContains(t, html, "NaN")
}

func TestWriteLossChart_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteLossChart(&buf, history.Run{ID: "x"}), ErrNoEpochs)
	assert.Zero(t, buf.Len())
}
