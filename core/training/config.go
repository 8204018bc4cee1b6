package training

import "fmt"

const (
	OptimizerAdam = "adam"
	OptimizerSGD  = "sgd"
)

// Config holds the training hyperparameters.
type Config struct {
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"learning_rate"`
	WeightDecay  float64 `json:"weight_decay"`
	Optimizer    string  `json:"optimizer"`
	Dropout      float64 `json:"dropout"`
	Seed         int64   `json:"seed"`
	// LogEvery controls how often epoch losses are logged. Zero disables it.
	LogEvery int `json:"log_every"`
}

// SetDefaults applies the hyperparameters of the reference model.
func (c *Config) SetDefaults() {
	if c.Epochs == 0 {
		c.Epochs = 500
	}
	if c.BatchSize == 0 {
		c.BatchSize = 4
	}
	if c.LearningRate == 0 {
		c.LearningRate = 0.001
	}
	if c.WeightDecay == 0 {
		c.WeightDecay = 1e-5
	}
	if c.Optimizer == "" {
		c.Optimizer = OptimizerAdam
	}
	if c.Dropout == 0 {
		c.Dropout = 0.2
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.LogEvery == 0 {
		c.LogEvery = 50
	}
}

// Validate checks the ranges.
func (c Config) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive")
	}
	if c.WeightDecay < 0 {
		return fmt.Errorf("weight_decay must not be negative")
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("dropout must lie in [0,1)")
	}
	if c.Optimizer != OptimizerAdam && c.Optimizer != OptimizerSGD {
		return fmt.Errorf("unknown optimizer %s", c.Optimizer)
	}
	return nil
}
