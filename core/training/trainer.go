// Package training fits the emissions regressor with mini-batch gradient
// descent. Training always runs the configured number of epochs; there is
// no early stopping and no convergence check.
package training

import (
	"encoding/json"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/commutecarbon/core/dataset"
	"github.com/kilianp07/commutecarbon/core/logger"
	"github.com/kilianp07/commutecarbon/core/metrics"
	"github.com/kilianp07/commutecarbon/core/model"
	"github.com/kilianp07/commutecarbon/core/regressor"
)

// Epoch is one entry of the training history.
type Epoch struct {
	Epoch       int     `json:"epoch"`
	TrainLoss   float64 `json:"train_loss"`
	HeldOutLoss float64 `json:"held_out_loss"`
}

type epochJSON struct {
	Epoch       int      `json:"epoch"`
	TrainLoss   *float64 `json:"train_loss"`
	HeldOutLoss *float64 `json:"held_out_loss"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// MarshalJSON encodes a diverged (NaN or infinite) loss as null.
func (e Epoch) MarshalJSON() ([]byte, error) {
	return json.Marshal(epochJSON{Epoch: e.Epoch, TrainLoss: finite(e.TrainLoss), HeldOutLoss: finite(e.HeldOutLoss)})
}

// UnmarshalJSON decodes a null loss as NaN.
func (e *Epoch) UnmarshalJSON(b []byte) error {
	var in epochJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*e = Epoch{Epoch: in.Epoch, TrainLoss: orNaN(in.TrainLoss), HeldOutLoss: orNaN(in.HeldOutLoss)}
	return nil
}

// History lists completed epochs in order.
type History []Epoch

// TrainLosses returns the training loss curve.
func (h History) TrainLosses() []float64 {
	out := make([]float64, len(h))
	for i, e := range h {
		out[i] = e.TrainLoss
	}
	return out
}

// HeldOutLosses returns the held-out loss curve.
func (h History) HeldOutLosses() []float64 {
	out := make([]float64, len(h))
	for i, e := range h {
		out[i] = e.HeldOutLoss
	}
	return out
}

// Trainer runs the optimization loop.
type Trainer struct {
	cfg      Config
	log      logger.Logger
	recorder metrics.EpochRecorder
	runID    string
	onEpoch  func(Epoch)
}

// New validates cfg and returns a Trainer.
func New(cfg Config, log logger.Logger) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Trainer{cfg: cfg, log: logger.OrNop(log), recorder: metrics.NopSink{}}, nil
}

// SetRecorder forwards every completed epoch to rec, tagged with runID.
func (t *Trainer) SetRecorder(rec metrics.EpochRecorder, runID string) {
	if rec == nil {
		rec = metrics.NopSink{}
	}
	t.recorder = rec
	t.runID = runID
}

// SetOnEpoch registers a callback invoked after each epoch.
func (t *Trainer) SetOnEpoch(fn func(Epoch)) { t.onEpoch = fn }

// Config returns the hyperparameters.
func (t *Trainer) Config() Config { return t.cfg }

// Train fits net on train, evaluating test after every epoch. net is updated
// in place. Shuffling and dropout draw from a generator seeded with cfg.Seed.
func (t *Trainer) Train(net *regressor.Network, train, test []dataset.Sample) (History, error) {
	if len(train) == 0 {
		return nil, &model.InsufficientDataError{Op: "train", Have: 0, Need: 1}
	}
	if len(test) == 0 {
		return nil, &model.InsufficientDataError{Op: "train: held-out subset", Have: 0, Need: 1}
	}
	opt, err := NewOptimizer(t.cfg)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(t.cfg.Seed))
	order := make([]int, len(train))
	for i := range order {
		order[i] = i
	}

	history := make(History, 0, t.cfg.Epochs)
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		var sum float64
		batches := 0
		for start := 0; start < len(order); start += t.cfg.BatchSize {
			end := min(start+t.cfg.BatchSize, len(order))
			x, y := batch(train, order[start:end])
			loss, grads, err := net.Gradient(x, y, rng)
			if err != nil {
				return nil, err
			}
			opt.Step(net.Tensors(), grads.Tensors())
			sum += loss
			batches++
		}
		e := Epoch{Epoch: epoch, TrainLoss: sum / float64(batches), HeldOutLoss: HeldOutLoss(net, test, t.cfg.BatchSize)}
		history = append(history, e)
		t.observe(e)
	}
	return history, nil
}

func (t *Trainer) observe(e Epoch) {
	if math.IsNaN(e.TrainLoss) || math.IsInf(e.TrainLoss, 0) {
		t.log.Warnf("epoch %d: non-finite training loss", e.Epoch)
	}
	if t.cfg.LogEvery > 0 && (e.Epoch%t.cfg.LogEvery == 0 || e.Epoch == t.cfg.Epochs) {
		t.log.Infof("epoch %d/%d train_loss=%.4f held_out_loss=%.4f", e.Epoch, t.cfg.Epochs, e.TrainLoss, e.HeldOutLoss)
	}
	if err := t.recorder.RecordEpoch(metrics.EpochEvent{
		RunID:       t.runID,
		Epoch:       e.Epoch,
		TrainLoss:   e.TrainLoss,
		HeldOutLoss: e.HeldOutLoss,
		Time:        time.Now(),
	}); err != nil {
		t.log.Warnf("record epoch %d: %v", e.Epoch, err)
	}
	if t.onEpoch != nil {
		t.onEpoch(e)
	}
}

// HeldOutLoss returns the mean batch MSE of net over samples in inference
// mode. Parameters are not touched.
func HeldOutLoss(net *regressor.Network, samples []dataset.Sample, batchSize int) float64 {
	if len(samples) == 0 {
		return math.NaN()
	}
	if batchSize <= 0 {
		batchSize = len(samples)
	}
	idx := make([]int, len(samples))
	for i := range idx {
		idx[i] = i
	}
	var sum float64
	batches := 0
	for start := 0; start < len(idx); start += batchSize {
		end := min(start+batchSize, len(idx))
		x, y := batch(samples, idx[start:end])
		out := net.Forward(x, regressor.Inference, nil)
		var se float64
		for i, v := range out {
			se += (v - y[i]) * (v - y[i])
		}
		sum += se / float64(len(out))
		batches++
	}
	return sum / float64(batches)
}

func batch(samples []dataset.Sample, idx []int) (*mat.Dense, []float64) {
	rows := make([][]float64, len(idx))
	y := make([]float64, len(idx))
	for i, k := range idx {
		rows[i] = samples[k].X
		y[i] = samples[k].Y
	}
	return regressor.Batch(rows), y
}
