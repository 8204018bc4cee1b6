// Package app wires the prediction pipeline: dataset loading, feature
// scaling, training, evaluation, persistence and scenario predictions, with
// every run reported to the configured metrics sinks and history store.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/kilianp07/commutecarbon/config"
	"github.com/kilianp07/commutecarbon/core/dataset"
	"github.com/kilianp07/commutecarbon/core/evaluation"
	"github.com/kilianp07/commutecarbon/core/features"
	"github.com/kilianp07/commutecarbon/core/history"
	"github.com/kilianp07/commutecarbon/core/logger"
	coremetrics "github.com/kilianp07/commutecarbon/core/metrics"
	"github.com/kilianp07/commutecarbon/core/model"
	"github.com/kilianp07/commutecarbon/core/modelstore"
	"github.com/kilianp07/commutecarbon/core/prediction"
	"github.com/kilianp07/commutecarbon/core/regressor"
	"github.com/kilianp07/commutecarbon/core/training"
	infradataset "github.com/kilianp07/commutecarbon/infra/dataset"
	"github.com/kilianp07/commutecarbon/infra/scenarios"

	// Sink backends register themselves with core/metrics.
	_ "github.com/kilianp07/commutecarbon/infra/metrics"
	_ "github.com/kilianp07/commutecarbon/infra/mqtt"
)

// Model names attached to evaluation events.
const (
	ModelRegressor = "regressor"
	ModelBaseline  = "baseline"
)

// Service runs pipeline stages against one configuration.
type Service struct {
	cfg     *config.Config
	log     logger.Logger
	sink    coremetrics.RunRecorder
	history history.Store
	closed  bool
}

// New builds the metrics sinks and opens the history store described by cfg.
func New(cfg *config.Config, log logger.Logger) (*Service, error) {
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := history.New(cfg.History.Module())
	if err != nil {
		closeSink(sink)
		return nil, fmt.Errorf("history store: %w", err)
	}
	return &Service{cfg: cfg, log: logger.OrNop(log), sink: sink, history: store}, nil
}

// Result is the outcome of a training run.
type Result struct {
	Run       history.Run
	Summary   dataset.Summary
	Network   *regressor.Network
	Stats     features.Stats
	Predictor *prediction.Predictor
}

// LoadDataset reads the configured trip file and logs its summary.
func (s *Service) LoadDataset() ([]model.TripRecord, error) {
	records, err := infradataset.LoadFormat(s.cfg.Dataset.Path, s.cfg.Dataset.Format)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	sum, err := dataset.Summarize(records)
	if err != nil {
		return nil, err
	}
	s.log.Infof("loaded %s: %s", s.cfg.Dataset.Path, sum)
	return records, nil
}

// Train runs the full pipeline over records: fit the scaler, split, train,
// evaluate against the group mean baseline, save the artifact, score the
// reference scenarios and append the run to the history store. onEpoch may
// be nil.
func (s *Service) Train(ctx context.Context, records []model.TripRecord, onEpoch func(training.Epoch)) (*Result, error) {
	run := history.NewRun()
	run.Dataset = s.cfg.Dataset.Path
	run.Records = len(records)
	run.Config = s.cfg.Training
	run.Artifact = s.cfg.Model.Path

	sum, err := dataset.Summarize(records)
	if err != nil {
		return nil, err
	}
	list, err := s.Scenarios()
	if err != nil {
		return nil, err
	}
	stats, err := features.Fit(records)
	if err != nil {
		return nil, fmt.Errorf("fit features: %w", err)
	}
	samples, err := dataset.Build(records, stats)
	if err != nil {
		return nil, err
	}
	train, test, err := dataset.Split(samples, s.cfg.Dataset.TrainFraction, s.cfg.Dataset.SplitSeed)
	if err != nil {
		return nil, fmt.Errorf("split dataset: %w", err)
	}
	run.TrainSize, run.TestSize = len(train), len(test)
	s.log.Infof("run %s: %d training and %d held-out trips", run.ID, len(train), len(test))

	net, err := regressor.New(features.Dim, s.cfg.Training.Dropout, rand.New(rand.NewSource(s.cfg.Training.Seed)))
	if err != nil {
		return nil, err
	}
	trainer, err := training.New(s.cfg.Training, s.log)
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	trainer.SetRecorder(s.sink, run.ID)
	trainer.SetOnEpoch(onEpoch)
	losses, err := trainer.Train(net, train, test)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	run.Losses = losses

	run.Metrics, run.Baseline, err = s.score(run.ID, net, train, test)
	if err != nil {
		return nil, err
	}

	if err := modelstore.SaveNetwork(s.cfg.Model.Path, net, stats); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}
	s.log.Infof("model saved to %s", s.cfg.Model.Path)

	pred, err := s.newPredictor(net, stats, records)
	if err != nil {
		return nil, err
	}
	run.Predictions, err = ScoreScenarios(pred, list)
	if err != nil {
		return nil, err
	}
	for _, p := range run.Predictions {
		s.log.Infof("%s: %.2f kg (similar trips: %d, mean %.2f kg)", p.Scenario, p.PredictedKg, p.SimilarCount, p.SimilarKg)
	}

	run.FinishedAt = time.Now().UTC()
	if err := s.history.Append(ctx, run); err != nil {
		s.log.Warnf("append run %s to history: %v", run.ID, err)
	}
	return &Result{Run: run, Summary: sum, Network: net, Stats: stats, Predictor: pred}, nil
}

// score evaluates the trained network and the group mean baseline on test
// and forwards both to the sinks.
func (s *Service) score(runID string, net *regressor.Network, train, test []dataset.Sample) (evaluation.Metrics, evaluation.Metrics, error) {
	m, err := evaluation.Evaluate(net, test)
	if err != nil {
		return evaluation.Metrics{}, evaluation.Metrics{}, fmt.Errorf("evaluate: %w", err)
	}
	trainRecords := make([]model.TripRecord, len(train))
	for i, smp := range train {
		trainRecords[i] = smp.Record
	}
	baseline, err := evaluation.FitGroupMeans(trainRecords)
	if err != nil {
		return evaluation.Metrics{}, evaluation.Metrics{}, err
	}
	bm, err := baseline.Evaluate(test)
	if err != nil {
		return evaluation.Metrics{}, evaluation.Metrics{}, err
	}
	s.log.Infof("regressor: %s", m)
	s.log.Infof("group mean baseline: %s", bm)
	s.record(runID, ModelRegressor, m)
	s.record(runID, ModelBaseline, bm)
	return m, bm, nil
}

func (s *Service) record(runID, name string, m evaluation.Metrics) {
	if err := s.sink.RecordEvaluation(coremetrics.EvaluationEvent{
		RunID:   runID,
		Model:   name,
		Samples: m.Samples,
		MSE:     m.MSE,
		RMSE:    m.RMSE,
		MAE:     m.MAE,
		R2:      m.R2,
		Time:    time.Now(),
	}); err != nil {
		s.log.Warnf("record %s evaluation: %v", name, err)
	}
}

// Evaluation holds the scores of a persisted model and its predictions on
// the held-out trips.
type Evaluation struct {
	Metrics  evaluation.Metrics
	Baseline evaluation.Metrics
	Pairs    []evaluation.Pair
}

// Evaluate scores the saved artifact on the held-out subset of records, using
// the persisted scaler and the configured split.
func (s *Service) Evaluate(records []model.TripRecord) (*Evaluation, error) {
	art, err := modelstore.Load(s.cfg.Model.Path)
	if err != nil {
		return nil, err
	}
	net, err := art.Network()
	if err != nil {
		return nil, err
	}
	samples, err := dataset.Build(records, art.Scaler)
	if err != nil {
		return nil, err
	}
	train, test, err := dataset.Split(samples, s.cfg.Dataset.TrainFraction, s.cfg.Dataset.SplitSeed)
	if err != nil {
		return nil, fmt.Errorf("split dataset: %w", err)
	}
	m, bm, err := s.score("", net, train, test)
	if err != nil {
		return nil, err
	}
	return &Evaluation{Metrics: m, Baseline: bm, Pairs: evaluation.Predictions(net, test)}, nil
}

// Predictor loads the saved artifact. The configured dataset, when readable,
// backs similar-trip lookups.
func (s *Service) Predictor() (*prediction.Predictor, error) {
	art, err := modelstore.Load(s.cfg.Model.Path)
	if err != nil {
		return nil, err
	}
	net, err := art.Network()
	if err != nil {
		return nil, err
	}
	corpus, err := infradataset.LoadFormat(s.cfg.Dataset.Path, s.cfg.Dataset.Format)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warnf("similar trips unavailable: %v", err)
		}
		corpus = nil
	}
	return s.newPredictor(net, art.Scaler, corpus)
}

func (s *Service) newPredictor(net *regressor.Network, st features.Stats, corpus []model.TripRecord) (*prediction.Predictor, error) {
	opts := []prediction.Option{
		prediction.WithCorpus(corpus),
		prediction.WithTolerance(s.cfg.Prediction.SimilarTolerance),
		prediction.WithLogger(s.log),
	}
	if pr, ok := s.sink.(coremetrics.PredictionRecorder); ok {
		opts = append(opts, prediction.WithRecorder(pr))
	}
	return prediction.NewPredictor(net, st, opts...)
}

// Scenarios returns the configured scenario list, or the built-in
// reference trips when none is configured.
func (s *Service) Scenarios() ([]prediction.Scenario, error) {
	if s.cfg.Prediction.ScenariosPath == "" {
		return prediction.Scenarios, nil
	}
	return scenarios.Load(s.cfg.Prediction.ScenariosPath)
}

// ScoreScenarios predicts every scenario with its similar-trip context.
func ScoreScenarios(e prediction.Engine, list []prediction.Scenario) ([]history.Prediction, error) {
	out := make([]history.Prediction, 0, len(list))
	for _, sc := range list {
		y, err := e.Predict(sc.Query)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		sim, err := e.Similar(sc.Query)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		out = append(out, history.Prediction{Scenario: sc.Name, PredictedKg: y, SimilarCount: sim.Count, SimilarKg: sim.MeanKg})
	}
	return out, nil
}

// History returns the stored runs matching q.
func (s *Service) History(ctx context.Context, q history.Query) ([]history.Run, error) {
	return s.history.Query(ctx, q)
}

// ErrRunNotFound is returned by FindRun when no stored run matches.
var ErrRunNotFound = errors.New("run not found")

// FindRun returns the stored run whose ID starts with prefix, or the most
// recent run when prefix is empty. An ambiguous prefix is an error.
func (s *Service) FindRun(ctx context.Context, prefix string) (history.Run, error) {
	runs, err := s.history.Query(ctx, history.Query{})
	if err != nil {
		return history.Run{}, err
	}
	if prefix == "" {
		if len(runs) == 0 {
			return history.Run{}, ErrRunNotFound
		}
		return runs[len(runs)-1], nil
	}
	var found []history.Run
	for _, r := range runs {
		if strings.HasPrefix(r.ID, prefix) {
			found = append(found, r)
		}
	}
	switch len(found) {
	case 0:
		return history.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return found[0], nil
	default:
		return history.Run{}, fmt.Errorf("run prefix %s matches %d runs", prefix, len(found))
	}
}

// Close flushes buffered sinks then releases the sinks and the history store.
func (s *Service) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	var result *multierror.Error
	if f, ok := s.sink.(coremetrics.Flusher); ok {
		if err := f.Flush(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("flush metrics: %w", err))
		}
	}
	if err := closeSink(s.sink); err != nil {
		result = multierror.Append(result, fmt.Errorf("close metrics: %w", err))
	}
	if err := s.history.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close history: %w", err))
	}
	return result.ErrorOrNil()
}

func closeSink(sink coremetrics.RunRecorder) error {
	if c, ok := sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
