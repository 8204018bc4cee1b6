package charts

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/commutecarbon/core/evaluation"
)

func TestWritePredictionChart(t *testing.T) {
	pairs := []evaluation.Pair{
		{Actual: 2.5, Predicted: 2.75},
		{Actual: 6.125, Predicted: 5.5},
	}
	var buf bytes.Buffer
	require.NoError(t, WritePredictionChart(&buf, pairs))
	html := buf.String()
	assert.Contains(t, html, "Predicted vs actual CO2")
	assert.Contains(t, html, "2 held-out trips")
	assert.Contains(t, html, "6.125")
	assert.Contains(t, html, `"scatter"`)
	assert.Contains(t, html, "Ideal")
}

func TestWritePredictionChart_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePredictionChart(&buf, nil); !errors.Is(err, ErrNoPredictions) {
		t.Fatalf("expected ErrNoPredictions, got %v", err)
	}
	assert.Zero(t, buf.Len())
}
