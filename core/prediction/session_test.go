package prediction

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/commutecarbon/core/model"
)

func TestSession_Run(t *testing.T) {
	eng := &MockEngine{Value: 3.157, SimilarRes: Similar{Count: 2, MeanKg: 3.1}}
	var out bytes.Buffer
	s := &Session{Engine: eng, In: strings.NewReader("0\n35\n39\n3.5\n"), Out: &out}

	q, y, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, Query{Traffic: 0, DurationMin: 35, DistanceKm: 39, EfficiencyL100: 3.5}, q)
	assert.Equal(t, 3.157, y)
	assert.Contains(t, out.String(), "Predicted CO2 emissions: 3.16 kg")
	assert.Contains(t, out.String(), "Average CO2 for 2 similar trips in dataset: 3.10 kg")
}

func TestSession_LabelTraffic(t *testing.T) {
	eng := &MockEngine{Value: 1}
	var out bytes.Buffer
	s := &Session{Engine: eng, In: strings.NewReader("High\n80\n41\n5\n"), Out: &out}
	q, _, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, q.Traffic)
	assert.Contains(t, out.String(), "No similar trips found")
}

func TestSession_MalformedInput(t *testing.T) {
	cases := map[string]string{
		"non numeric duration": "0\nabc\n39\n3.5\n",
		"traffic out of range": "5\n35\n39\n3.5\n",
		"negative distance":    "1\n35\n-4\n3.5\n",
		"truncated input":      "1\n35\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			eng := &MockEngine{Value: 1}
			var out bytes.Buffer
			s := &Session{Engine: eng, In: strings.NewReader(in), Out: &out}
			_, _, err := s.Run()
			var ve *model.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Contains(t, out.String(), "Invalid input")
			assert.NotContains(t, out.String(), "Predicted")
		})
	}
}

func TestSession_EngineError(t *testing.T) {
	eng := &MockEngine{Err: errors.New("model not loaded")}
	var out bytes.Buffer
	s := &Session{Engine: eng, In: strings.NewReader("0\n35\n39\n3.5\n"), Out: &out}
	_, _, err := s.Run()
	require.Error(t, err)
	assert.Contains(t, out.String(), "Error: model not loaded")
}
