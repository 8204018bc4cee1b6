// Package dataset pairs trip records with their feature vectors and splits
// them into reproducible train and held-out subsets.
package dataset

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/kilianp07/commutecarbon/core/features"
	"github.com/kilianp07/commutecarbon/core/model"
)

// DefaultTrainFraction is the share of records assigned to the training subset.
const DefaultTrainFraction = 0.8

// Sample is a standardized record ready for training or evaluation.
type Sample struct {
	Record model.TripRecord
	X      features.Vector
	Y      float64
}

// Build standardizes every record with stats and attaches the observed
// emissions as target.
func Build(records []model.TripRecord, stats features.Stats) ([]Sample, error) {
	vecs, err := stats.ApplyBatch(records)
	if err != nil {
		return nil, err
	}
	out := make([]Sample, len(records))
	for i, r := range records {
		out[i] = Sample{Record: r, X: vecs[i], Y: r.CO2Kg}
	}
	return out, nil
}

// Split assigns items to a train and a test subset using a permutation drawn
// from seed. The cut is floor(trainFraction*N), kept within [1, N-1] so both
// subsets are non-empty. Identical (N, seed, trainFraction) always produce the
// same assignment.
func Split[T any](items []T, trainFraction float64, seed int64) (train, test []T, err error) {
	if !(trainFraction > 0 && trainFraction < 1) {
		return nil, nil, &model.ValidationError{
			Field:  "train_fraction",
			Value:  strconv.FormatFloat(trainFraction, 'g', -1, 64),
			Reason: "must lie in (0,1)",
		}
	}
	n := len(items)
	if n < 2 {
		return nil, nil, &model.InsufficientDataError{Op: "split", Have: n, Need: 2}
	}
	cut := int(math.Floor(trainFraction * float64(n)))
	if cut < 1 {
		cut = 1
	}
	if cut > n-1 {
		cut = n - 1
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	train = make([]T, 0, cut)
	test = make([]T, 0, n-cut)
	for i, idx := range perm {
		if i < cut {
			train = append(train, items[idx])
		} else {
			test = append(test, items[idx])
		}
	}
	return train, test, nil
}
