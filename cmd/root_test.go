package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/kilianp07/commutecarbon/app"
	"github.com/kilianp07/commutecarbon/core/model"
)

func TestReportable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"validation", fmt.Errorf("load dataset: %w", &model.ValidationError{Row: 4, Field: "distance_km", Reason: "must be positive"}), false},
		{"insufficient", &model.InsufficientDataError{Op: "split", Have: 1, Need: 2}, false},
		{"degenerate", fmt.Errorf("fit scaler: %w", &model.DegenerateFeatureError{Feature: "duration_min"}), false},
		{"corrupt", &model.CorruptArtifactError{Path: "model.json.zst", Reason: "checksum mismatch"}, false},
		{"run not found", fmt.Errorf("%w: abc", app.ErrRunNotFound), false},
		{"missing file", fmt.Errorf("open trips.csv: %w", fs.ErrNotExist), false},
		{"unexpected", errors.New("disk full"), true},
		{"wrapped unexpected", fmt.Errorf("save artifact: %w", errors.New("permission denied")), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := reportable(tc.err); got != tc.want {
				t.Fatalf("reportable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
