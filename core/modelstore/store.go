// Package modelstore persists a trained regressor together with the
// standardization statistics and feature order it was trained with.
//
// An artifact is a JSON envelope holding the payload and its xxhash64
// checksum. Paths ending in ".zst" are zstd compressed. Files are written to
// a temporary sibling and renamed into place, so a failed save never leaves
// a truncated artifact behind.
package modelstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/kilianp07/commutecarbon/core/features"
	"github.com/kilianp07/commutecarbon/core/model"
	"github.com/kilianp07/commutecarbon/core/regressor"
)

// FormatVersion identifies the artifact layout.
const FormatVersion = 1

// Artifact is everything needed to run inference.
type Artifact struct {
	FormatVersion int                  `json:"format_version"`
	CreatedAt     time.Time            `json:"created_at"`
	InputDim      int                  `json:"input_dim"`
	FeatureOrder  []string             `json:"feature_order"`
	Scaler        features.Stats       `json:"scaler"`
	Params        regressor.Parameters `json:"params"`
}

type envelope struct {
	Checksum string          `json:"checksum"`
	Payload  json.RawMessage `json:"payload"`
}

// Network rebuilds the regressor from the stored parameters.
func (a *Artifact) Network() (*regressor.Network, error) {
	return regressor.FromParameters(a.Params)
}

// Save writes params and stats to path, replacing any existing file.
func Save(path string, params regressor.Parameters, stats features.Stats, featureOrder []string, inputDim int) error {
	return Write(path, &Artifact{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		InputDim:      inputDim,
		FeatureOrder:  slices.Clone(featureOrder),
		Scaler:        stats,
		Params:        params,
	})
}

// SaveNetwork is Save for a live network using the package feature order.
func SaveNetwork(path string, net *regressor.Network, stats features.Stats) error {
	return Save(path, net.Parameters(), stats, features.Names, net.InputDim())
}

// Write serializes a to path.
func Write(path string, a *Artifact) error {
	if err := validate(a); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	data, err := json.Marshal(envelope{Checksum: checksum(payload), Payload: payload})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if compressed(path) {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		data = enc.EncodeAll(data, nil)
		_ = enc.Close()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

// Load reads and verifies the artifact at path. Every integrity failure is
// reported as *model.CorruptArtifactError.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.CorruptArtifactError{Path: path, Reason: "unreadable", Err: err}
	}
	if compressed(path) {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		data, err = dec.DecodeAll(data, nil)
		dec.Close()
		if err != nil {
			return nil, &model.CorruptArtifactError{Path: path, Reason: "zstd decode failed", Err: err}
		}
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &model.CorruptArtifactError{Path: path, Reason: "not a model artifact", Err: err}
	}
	if env.Checksum == "" || len(env.Payload) == 0 {
		return nil, &model.CorruptArtifactError{Path: path, Reason: "missing checksum or payload"}
	}
	if got := checksum(env.Payload); got != env.Checksum {
		return nil, &model.CorruptArtifactError{Path: path, Reason: fmt.Sprintf("checksum mismatch: stored %s, computed %s", env.Checksum, got)}
	}
	var a Artifact
	if err := json.Unmarshal(env.Payload, &a); err != nil {
		return nil, &model.CorruptArtifactError{Path: path, Reason: "payload decode failed", Err: err}
	}
	if err := validate(&a); err != nil {
		return nil, &model.CorruptArtifactError{Path: path, Reason: "invalid content", Err: err}
	}
	return &a, nil
}

func validate(a *Artifact) error {
	switch {
	case a.InputDim == 0:
		return errors.New("missing input_dim")
	case len(a.FeatureOrder) == 0:
		return errors.New("missing feature_order")
	case len(a.Scaler.Mean) == 0:
		return errors.New("missing scaler")
	case len(a.Params.Layers) == 0:
		return errors.New("missing params")
	}
	if a.InputDim != len(a.FeatureOrder) {
		return fmt.Errorf("input_dim %d does not match %d features", a.InputDim, len(a.FeatureOrder))
	}
	if !slices.Equal(a.FeatureOrder, features.Names) {
		return fmt.Errorf("feature order %v differs from %v", a.FeatureOrder, features.Names)
	}
	if err := a.Scaler.Validate(); err != nil {
		return fmt.Errorf("scaler: %w", err)
	}
	if len(a.Scaler.Mean) != a.InputDim {
		return fmt.Errorf("scaler has %d features, want %d", len(a.Scaler.Mean), a.InputDim)
	}
	if a.Params.InputDim != a.InputDim {
		return fmt.Errorf("params input_dim %d does not match %d", a.Params.InputDim, a.InputDim)
	}
	if err := a.Params.Validate(); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	return nil
}

func checksum(b []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}
