package config

import (
	"os"
	"path/filepath"
	"testing"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `dataset:
  path: "data/commute.xlsx"
  format: "xlsx"
  train_fraction: 0.75
training:
  epochs: 200
  batch_size: 8
  learning_rate: 0.01
  optimizer: "sgd"
model:
  path: "out/model.json.zst"
history:
  backend: "sqlite"
metrics:
  sinks:
    - type: "nop"
    - type: "prometheus"
      conf:
        textfile: "out/metrics.prom"
prediction:
  similar_tolerance: 0.1
impact:
  student_counts: [10, 100]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("K_TRAINING__EPOCHS", "300")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"dataset.path", cfg.Dataset.Path, "data/commute.xlsx"},
		{"dataset.format", cfg.Dataset.Format, "xlsx"},
		{"dataset.train_fraction", cfg.Dataset.TrainFraction, 0.75},
		{"dataset.split_seed", cfg.Dataset.SplitSeed, int64(42)},
		{"training.epochs (env)", cfg.Training.Epochs, 300},
		{"training.batch_size", cfg.Training.BatchSize, 8},
		{"training.learning_rate", cfg.Training.LearningRate, 0.01},
		{"training.optimizer", cfg.Training.Optimizer, "sgd"},
		{"training.dropout default", cfg.Training.Dropout, 0.2},
		{"model.path", cfg.Model.Path, "out/model.json.zst"},
		{"history.backend", cfg.History.Backend, "sqlite"},
		{"history.path default", cfg.History.Path, "training_runs.db"},
		{"metrics sinks", len(cfg.Metrics.Sinks), 2},
		{"metrics textfile", cfg.Metrics.Sinks[1].Conf["textfile"], "out/metrics.prom"},
		{"prediction.similar_tolerance", cfg.Prediction.SimilarTolerance, 0.1},
		{"impact.reference default", cfg.Impact.Reference, 100},
		{"impact.school_days default", cfg.Impact.SchoolDays, 180},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Dataset.Path != "commute_data.csv" || cfg.Model.Path != "commute_co2_model.json" {
		t.Fatalf("unexpected paths %s %s", cfg.Dataset.Path, cfg.Model.Path)
	}
	if cfg.Training.Epochs != 500 || cfg.Training.Optimizer != "adam" {
		t.Fatalf("unexpected training defaults %+v", cfg.Training)
	}
	if cfg.History.Backend != "jsonl" || cfg.History.Path != "training_runs.jsonl" {
		t.Fatalf("unexpected history defaults %+v", cfg.History)
	}
	m := cfg.History.Module()
	if m.Type != "jsonl" || m.Conf["max_size_mb"] != 10 {
		t.Fatalf("unexpected history module %+v", m)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("K_TRAINING__EPOCHS", "7")
	t.Setenv("K_DATASET__PATH", "env/trips.csv")
	t.Setenv("K_PREDICTION__SIMILAR_TOLERANCE", "0.3")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Training.Epochs != 7 {
		t.Fatalf("training.epochs = %d, want 7", cfg.Training.Epochs)
	}
	if cfg.Dataset.Path != "env/trips.csv" {
		t.Fatalf("dataset.path = %s", cfg.Dataset.Path)
	}
	if cfg.Prediction.SimilarTolerance != 0.3 {
		t.Fatalf("prediction.similar_tolerance = %v", cfg.Prediction.SimilarTolerance)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "config.txt")
	if err := os.WriteFile(txt, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(txt); err == nil {
		t.Fatal("expected unsupported format error")
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected missing file error")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"history":{"backend":"postgres"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatal("expected unknown backend error")
	}
	t.Setenv("K_PREDICTION__SIMILAR_TOLERANCE", "2")
	if _, err := Load(""); err == nil {
		t.Fatal("expected tolerance range error")
	}
}
