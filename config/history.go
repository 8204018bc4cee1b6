package config

import (
	"fmt"

	"github.com/kilianp07/commutecarbon/core/factory"
	"github.com/kilianp07/commutecarbon/core/history"
)

// HistoryConfig defines settings for training run storage and rotation.
type HistoryConfig struct {
	// Backend selects the store type: "jsonl", "sqlite" or "nop".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *HistoryConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = history.BackendJSONL
	}
	if c.Path == "" {
		switch c.Backend {
		case history.BackendSQLite:
			c.Path = "training_runs.db"
		default:
			c.Path = "training_runs.jsonl"
		}
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c HistoryConfig) Validate() error {
	switch c.Backend {
	case history.BackendJSONL, history.BackendSQLite:
		if c.Path == "" {
			return fmt.Errorf("path is required")
		}
	case history.BackendNop:
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("rotation settings must not be negative")
	}
	return nil
}

// Module converts the section into the registry form consumed by history.New.
func (c HistoryConfig) Module() factory.ModuleConfig {
	conf := map[string]any{"path": c.Path}
	if c.Backend == history.BackendJSONL {
		conf["max_size_mb"] = c.MaxSizeMB
		conf["max_backups"] = c.MaxBackups
		conf["max_age_days"] = c.MaxAgeDays
	}
	return factory.ModuleConfig{Type: c.Backend, Conf: conf}
}
