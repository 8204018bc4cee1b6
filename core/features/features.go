// Package features turns trip records into standardized feature vectors.
// Standardization statistics are fitted once and then reused unchanged for
// every vector produced afterwards, including inference requests.
package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/commutecarbon/core/model"
)

// Names is the fixed feature order. Vectors are only meaningful together with
// stats fitted on the same order.
var Names = []string{
	"traffic_condition",
	"trip_duration",
	"distance_km",
	"fuel_efficiency_l_per_100km",
}

// Dim is the width of a feature vector.
var Dim = len(Names)

// Vector is a standardized feature vector.
type Vector []float64

// Stats holds the per-feature mean and population standard deviation.
type Stats struct {
	Names []string  `json:"names"`
	Mean  []float64 `json:"mean"`
	Std   []float64 `json:"std"`
}

// Fit computes standardization statistics over every record of the corpus.
func Fit(records []model.TripRecord) (Stats, error) {
	if len(records) == 0 {
		return Stats{}, &model.InsufficientDataError{Op: "fit", Have: 0, Need: 1}
	}
	cols := make([][]float64, Dim)
	for i := range cols {
		cols[i] = make([]float64, len(records))
	}
	for j, r := range records {
		for i, v := range r.Covariates() {
			cols[i][j] = v
		}
	}
	mean := make([]float64, Dim)
	std := make([]float64, Dim)
	for i, c := range cols {
		m, s := stat.PopMeanStdDev(c, nil)
		if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return Stats{}, &model.DegenerateFeatureError{Feature: Names[i], Mean: m}
		}
		mean[i], std[i] = m, s
	}
	names := make([]string, Dim)
	copy(names, Names)
	return Stats{Names: names, Mean: mean, Std: std}, nil
}

// Validate checks that the stats are usable for the fixed feature order.
func (s Stats) Validate() error {
	if len(s.Names) != Dim || len(s.Mean) != Dim || len(s.Std) != Dim {
		return fmt.Errorf("stats: expected %d features, got names=%d mean=%d std=%d", Dim, len(s.Names), len(s.Mean), len(s.Std))
	}
	for i, n := range s.Names {
		if n != Names[i] {
			return fmt.Errorf("stats: feature %d is %q, expected %q", i, n, Names[i])
		}
		if s.Std[i] == 0 || math.IsNaN(s.Std[i]) {
			return fmt.Errorf("stats: feature %q has zero std", n)
		}
	}
	return nil
}

// Transform standardizes a raw covariate slice given in feature order.
func (s Stats) Transform(raw []float64) (Vector, error) {
	if len(raw) != len(s.Mean) {
		return nil, fmt.Errorf("transform: expected %d values, got %d", len(s.Mean), len(raw))
	}
	out := make(Vector, len(raw))
	for i, v := range raw {
		out[i] = (v - s.Mean[i]) / s.Std[i]
	}
	return out, nil
}

// Apply standardizes one record.
func (s Stats) Apply(r model.TripRecord) (Vector, error) {
	return s.Transform(r.Covariates())
}

// ApplyBatch standardizes every record, preserving order.
func (s Stats) ApplyBatch(records []model.TripRecord) ([]Vector, error) {
	out := make([]Vector, len(records))
	for i, r := range records {
		v, err := s.Apply(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
