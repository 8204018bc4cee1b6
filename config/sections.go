package config

import (
	"fmt"

	"github.com/kilianp07/commutecarbon/core/dataset"
	"github.com/kilianp07/commutecarbon/core/prediction"
)

// DatasetConfig locates the trip file and controls the train/test split.
type DatasetConfig struct {
	Path string `json:"path"`
	// Format is "csv" or "xlsx"; empty infers it from the extension.
	Format        string  `json:"format"`
	TrainFraction float64 `json:"train_fraction"`
	SplitSeed     int64   `json:"split_seed"`
}

// SetDefaults applies sane defaults.
func (c *DatasetConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "commute_data.csv"
	}
	if c.TrainFraction == 0 {
		c.TrainFraction = dataset.DefaultTrainFraction
	}
	if c.SplitSeed == 0 {
		c.SplitSeed = 42
	}
}

// Validate checks mandatory fields.
func (c DatasetConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	if c.Format != "" && c.Format != "csv" && c.Format != "xlsx" {
		return fmt.Errorf("unknown format %s", c.Format)
	}
	if !(c.TrainFraction > 0 && c.TrainFraction < 1) {
		return fmt.Errorf("train_fraction must lie in (0,1)")
	}
	return nil
}

// ModelConfig locates the persisted artifact.
type ModelConfig struct {
	// Path ending in .zst stores a zstd compressed artifact.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *ModelConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "commute_co2_model.json"
	}
}

// Validate checks mandatory fields.
func (c ModelConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// PredictionConfig tunes inference.
type PredictionConfig struct {
	// SimilarTolerance is the relative duration window used to find
	// comparable trips.
	SimilarTolerance float64 `json:"similar_tolerance"`
	// ScenariosPath is a YAML scenario list replacing the built-in
	// reference trips scored after training.
	ScenariosPath string `json:"scenarios_path"`
}

// SetDefaults applies sane defaults.
func (c *PredictionConfig) SetDefaults() {
	if c.SimilarTolerance == 0 {
		c.SimilarTolerance = prediction.DefaultSimilarTolerance
	}
}

// Validate checks ranges.
func (c PredictionConfig) Validate() error {
	if c.SimilarTolerance <= 0 || c.SimilarTolerance >= 1 {
		return fmt.Errorf("similar_tolerance must lie in (0,1)")
	}
	return nil
}
