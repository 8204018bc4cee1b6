package history

import (
	"context"

	"github.com/kilianp07/commutecarbon/core/factory"
)

// Backend names accepted by New.
const (
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
	BackendNop    = "nop"
)

type jsonlConf struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

type sqliteConf struct {
	Path string `json:"path"`
}

var registry = factory.NewRegistry[Store]()

// Register adds a store backend.
func Register(name string, f factory.Factory[Store]) error {
	return registry.Register(name, f)
}

// New opens the store described by cfg.
func New(cfg factory.ModuleConfig) (Store, error) {
	return registry.Create(cfg)
}

func init() {
	_ = Register(BackendJSONL, func(conf map[string]any) (Store, error) {
		var c jsonlConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
	_ = Register(BackendSQLite, func(conf map[string]any) (Store, error) {
		var c sqliteConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSQLiteStore(c.Path)
	})
	_ = Register(BackendNop, func(map[string]any) (Store, error) {
		return NopStore{}, nil
	})
}

// NopStore discards runs.
type NopStore struct{}

func (NopStore) Append(context.Context, Run) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Run, error) { return nil, nil }
func (NopStore) Close() error                                { return nil }
