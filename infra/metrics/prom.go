package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/kilianp07/commutecarbon/auth"
	coremetrics "github.com/kilianp07/commutecarbon/core/metrics"
)

// PromConfig selects how collected metrics leave the process. A training
// run is short lived, so metrics are written to a node_exporter textfile,
// pushed to a Pushgateway, served over HTTP while the run lasts, or any
// combination.
type PromConfig struct {
	Textfile   string `json:"textfile"`
	PushURL    string `json:"push_url"`
	Job        string `json:"job"`
	ListenAddr string `json:"listen_addr"`
	// OAuth2 authenticates pushes to a gateway behind a token proxy.
	OAuth2 auth.Conf `json:"oauth2"`
}

// PromSink records training runs in Prometheus metrics.
type PromSink struct {
	cfg         PromConfig
	gatherer    prometheus.Gatherer
	epoch       prometheus.Gauge
	trainLoss   prometheus.Gauge
	heldOutLoss prometheus.Gauge
	evaluation  *prometheus.GaugeVec
	predictions *prometheus.CounterVec
	co2         *prometheus.GaugeVec
	server      *Server
}

// NewPromSink registers run metrics on a dedicated registry.
func NewPromSink(cfg PromConfig) (*PromSink, error) {
	reg := prometheus.NewRegistry()
	return NewPromSinkWithRegistry(cfg, reg, reg)
}

// NewPromSinkWithRegistry registers metrics on reg and exports from g.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg PromConfig, reg prometheus.Registerer, g prometheus.Gatherer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if cfg.Job == "" {
		cfg.Job = "commutecarbon"
	}
	s := &PromSink{
		cfg:      cfg,
		gatherer: g,
		epoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "commute_training_epoch",
			Help: "Last completed training epoch",
		}),
		trainLoss: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "commute_training_loss",
			Help: "Mean batch MSE over the training subset for the last epoch",
		}),
		heldOutLoss: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "commute_heldout_loss",
			Help: "Mean batch MSE over the held-out subset for the last epoch",
		}),
		evaluation: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "commute_evaluation",
			Help: "Held-out evaluation metrics per model",
		}, []string{"model", "metric"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commute_predictions_total",
			Help: "Number of emission predictions served",
		}, []string{"traffic"}),
		co2: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "commute_predicted_co2_kg",
			Help: "Last predicted trip emissions per traffic condition",
		}, []string{"traffic"}),
	}
	var err error
	if s.epoch, err = register(reg, s.epoch); err != nil {
		return nil, err
	}
	if s.trainLoss, err = register(reg, s.trainLoss); err != nil {
		return nil, err
	}
	if s.heldOutLoss, err = register(reg, s.heldOutLoss); err != nil {
		return nil, err
	}
	if s.evaluation, err = register(reg, s.evaluation); err != nil {
		return nil, err
	}
	if s.predictions, err = register(reg, s.predictions); err != nil {
		return nil, err
	}
	if s.co2, err = register(reg, s.co2); err != nil {
		return nil, err
	}
	if cfg.ListenAddr != "" {
		s.server = NewServer(cfg.ListenAddr, g)
		if err := s.server.Start(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// register reuses an existing collector when one with the same descriptor
// is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordEpoch sets the loss gauges to the latest epoch.
func (s *PromSink) RecordEpoch(ev coremetrics.EpochEvent) error {
	s.epoch.Set(float64(ev.Epoch))
	s.trainLoss.Set(ev.TrainLoss)
	s.heldOutLoss.Set(ev.HeldOutLoss)
	return nil
}

// RecordEvaluation exposes every score of the evaluated model.
func (s *PromSink) RecordEvaluation(ev coremetrics.EvaluationEvent) error {
	s.evaluation.WithLabelValues(ev.Model, "mse").Set(ev.MSE)
	s.evaluation.WithLabelValues(ev.Model, "rmse").Set(ev.RMSE)
	s.evaluation.WithLabelValues(ev.Model, "mae").Set(ev.MAE)
	s.evaluation.WithLabelValues(ev.Model, "r2").Set(ev.R2)
	s.evaluation.WithLabelValues(ev.Model, "samples").Set(float64(ev.Samples))
	return nil
}

// RecordPrediction counts the prediction and keeps the latest value.
func (s *PromSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	s.predictions.WithLabelValues(ev.Traffic).Inc()
	s.co2.WithLabelValues(ev.Traffic).Set(ev.PredictedKg)
	return nil
}

// Flush writes the textfile and pushes to the gateway when configured.
func (s *PromSink) Flush(ctx context.Context) error {
	if s.cfg.Textfile != "" {
		if err := prometheus.WriteToTextfile(s.cfg.Textfile, s.gatherer); err != nil {
			return fmt.Errorf("prometheus textfile: %w", err)
		}
	}
	if s.cfg.PushURL != "" {
		p := push.New(s.cfg.PushURL, s.cfg.Job).Gatherer(s.gatherer)
		if s.cfg.OAuth2.Enabled() {
			p = p.Client(auth.NewClientCred(s.cfg.OAuth2).HTTPClient(ctx))
		}
		if err := p.PushContext(ctx); err != nil {
			return fmt.Errorf("prometheus push: %w", err)
		}
	}
	return nil
}

// Close stops the HTTP endpoint if one was started.
func (s *PromSink) Close() error {
	if s.server == nil {
		return nil
	}
	return s.server.Close()
}
