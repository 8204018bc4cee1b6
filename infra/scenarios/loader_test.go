package scenarios

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/commutecarbon/core/model"
	"github.com/kilianp07/commutecarbon/core/prediction"
)

const doc = `
scenarios:
  - name: rush hour
    traffic: high
    duration_min: 85
    distance_km: 41
    efficiency_l_per_100km: 5.2
  - name: sunday
    traffic: "0"
    duration_min: 30
    distance_km: 39
    efficiency_l_per_100km: 3.4
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, prediction.Scenario{
		Name:  "rush hour",
		Query: prediction.Query{Traffic: 2, DurationMin: 85, DistanceKm: 41, EfficiencyL100: 5.2},
	}, got[0])
	assert.Equal(t, 0, got[1].Query.Traffic)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", "scenarios: []\n"},
		{"unknown key", "scenarios:\n  - name: a\n    traffic: low\n    speed: 3\n"},
		{"bad traffic", "scenarios:\n  - name: a\n    traffic: jam\n    duration_min: 1\n    distance_km: 1\n    efficiency_l_per_100km: 1\n"},
		{"non positive", "scenarios:\n  - name: a\n    traffic: low\n    duration_min: 0\n    distance_km: 1\n    efficiency_l_per_100km: 1\n"},
		{"missing name", "scenarios:\n  - traffic: low\n    duration_min: 1\n    distance_km: 1\n    efficiency_l_per_100km: 1\n"},
		{"duplicate", "scenarios:\n  - {name: a, traffic: low, duration_min: 1, distance_km: 1, efficiency_l_per_100km: 1}\n  - {name: a, traffic: low, duration_min: 2, distance_km: 1, efficiency_l_per_100km: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_ValidationError(t *testing.T) {
	_, err := Parse([]byte("scenarios:\n  - name: a\n    traffic: low\n    duration_min: -3\n    distance_km: 1\n    efficiency_l_per_100km: 1\n"))
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, "trip_duration", ve.Field)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
