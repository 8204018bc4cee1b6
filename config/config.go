package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/commutecarbon/core/impact"
	"github.com/kilianp07/commutecarbon/core/metrics"
	"github.com/kilianp07/commutecarbon/core/training"
	"github.com/kilianp07/commutecarbon/infra/monitoring"
)

type Config struct {
	Dataset    DatasetConfig           `json:"dataset"`
	Training   training.Config         `json:"training"`
	Model      ModelConfig             `json:"model"`
	History    HistoryConfig           `json:"history"`
	Metrics    metrics.Config          `json:"metrics"`
	Prediction PredictionConfig        `json:"prediction"`
	Impact     impact.Config           `json:"impact"`
	Sentry     monitoring.SentryConfig `json:"sentry"`
}

// Default returns a configuration with every section defaulted.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// Load reads path (yaml or json) and applies K_ prefixed environment
// overrides, K_TRAINING__EPOCHS=10 setting training.epochs. An empty path
// loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Environment overrides: K_TRAINING__EPOCHS sets training.epochs. The
	// provider nests on "__", so keys keep that separator here.
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "k_")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Dataset.SetDefaults()
	c.Training.SetDefaults()
	c.Model.SetDefaults()
	c.History.SetDefaults()
	c.Prediction.SetDefaults()
	c.Impact.SetDefaults()
}

// Validate checks every section, prefixing errors with the section name.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"dataset", c.Dataset.Validate},
		{"training", c.Training.Validate},
		{"model", c.Model.Validate},
		{"history", c.History.Validate},
		{"prediction", c.Prediction.Validate},
		{"impact", c.Impact.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("%s: %w", ch.name, err)
		}
	}
	return nil
}
