package prediction

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/kilianp07/commutecarbon/core/features"
	"github.com/kilianp07/commutecarbon/core/logger"
	"github.com/kilianp07/commutecarbon/core/metrics"
	"github.com/kilianp07/commutecarbon/core/model"
	"github.com/kilianp07/commutecarbon/core/regressor"
)

// DefaultSimilarTolerance is the relative duration window used to match
// comparable trips.
const DefaultSimilarTolerance = 0.2

// Predictor is the Engine backed by a trained network.
type Predictor struct {
	net       *regressor.Network
	stats     features.Stats
	corpus    []model.TripRecord
	tolerance float64
	recorder  metrics.PredictionRecorder
	log       logger.Logger
}

// Option customizes a Predictor.
type Option func(*Predictor)

// WithCorpus sets the records searched by Similar.
func WithCorpus(records []model.TripRecord) Option {
	return func(p *Predictor) { p.corpus = records }
}

// WithTolerance overrides DefaultSimilarTolerance.
func WithTolerance(t float64) Option {
	return func(p *Predictor) {
		if t > 0 {
			p.tolerance = t
		}
	}
}

// WithRecorder forwards every successful prediction to rec.
func WithRecorder(rec metrics.PredictionRecorder) Option {
	return func(p *Predictor) {
		if rec != nil {
			p.recorder = rec
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Predictor) { p.log = logger.OrNop(l) }
}

// NewPredictor checks that stats match the network input and returns a
// Predictor.
func NewPredictor(net *regressor.Network, st features.Stats, opts ...Option) (*Predictor, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if net.InputDim() != len(st.Mean) {
		return nil, &model.ValidationError{Field: "input_dim", Reason: "network and feature statistics disagree"}
	}
	p := &Predictor{net: net, stats: st, tolerance: DefaultSimilarTolerance, recorder: metrics.NopSink{}, log: logger.Nop{}}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Predict standardizes q and runs the network in inference mode.
func (p *Predictor) Predict(q Query) (float64, error) {
	tc, err := q.Validate()
	if err != nil {
		return 0, err
	}
	x, err := p.stats.Transform(q.raw())
	if err != nil {
		return 0, err
	}
	y := p.net.Predict(x)
	if err := p.recorder.RecordPrediction(metrics.PredictionEvent{
		Traffic:        tc.String(),
		DurationMin:    q.DurationMin,
		DistanceKm:     q.DistanceKm,
		EfficiencyL100: q.EfficiencyL100,
		PredictedKg:    y,
		Time:           time.Now(),
	}); err != nil {
		p.log.Warnf("record prediction: %v", err)
	}
	return y, nil
}

// Similar averages the emissions of corpus trips with the same traffic
// condition and a duration within the tolerance window, bounds included.
func (p *Predictor) Similar(q Query) (Similar, error) {
	tc, err := q.Validate()
	if err != nil {
		return Similar{}, err
	}
	lo, hi := q.DurationMin*(1-p.tolerance), q.DurationMin*(1+p.tolerance)
	var found stats.Float64Data
	for _, r := range p.corpus {
		if r.Traffic == tc && r.DurationMin >= lo && r.DurationMin <= hi {
			found = append(found, r.CO2Kg)
		}
	}
	if len(found) == 0 {
		return Similar{}, nil
	}
	m, err := found.Mean()
	if err != nil {
		return Similar{}, err
	}
	return Similar{Count: len(found), MeanKg: m}, nil
}
