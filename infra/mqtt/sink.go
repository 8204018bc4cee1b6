package mqtt

import (
	"math"
	"time"

	"github.com/kilianp07/commutecarbon/core/factory"
	coremetrics "github.com/kilianp07/commutecarbon/core/metrics"
)

type epochReport struct {
	RunID       string    `json:"run_id"`
	Epoch       int       `json:"epoch"`
	TrainLoss   float64   `json:"train_loss"`
	HeldOutLoss float64   `json:"held_out_loss"`
	Timestamp   time.Time `json:"timestamp"`
}

type evaluationReport struct {
	RunID     string    `json:"run_id"`
	Model     string    `json:"model"`
	Samples   int       `json:"samples"`
	MSE       float64   `json:"mse"`
	RMSE      float64   `json:"rmse"`
	MAE       float64   `json:"mae"`
	R2        *float64  `json:"r2"`
	Timestamp time.Time `json:"timestamp"`
}

type predictionReport struct {
	Traffic        string    `json:"traffic_condition"`
	DurationMin    float64   `json:"trip_duration"`
	DistanceKm     float64   `json:"distance_km"`
	EfficiencyL100 float64   `json:"fuel_efficiency_l_per_100km"`
	PredictedKg    float64   `json:"co2_emissions_kg"`
	Timestamp      time.Time `json:"timestamp"`
}

// RecordEpoch publishes to <prefix>/runs/<run>/epoch.
func (p *Publisher) RecordEpoch(ev coremetrics.EpochEvent) error {
	if n := p.cfg.EpochEvery; n > 1 && ev.Epoch%n != 0 {
		return nil
	}
	if math.IsNaN(ev.TrainLoss) || math.IsInf(ev.TrainLoss, 0) || math.IsNaN(ev.HeldOutLoss) || math.IsInf(ev.HeldOutLoss, 0) {
		p.logger.Warnf("skip epoch %d report: non-finite loss", ev.Epoch)
		return nil
	}
	return p.publishJSON("epoch", p.runTopic(ev.RunID, "epoch"), epochReport{
		RunID:       ev.RunID,
		Epoch:       ev.Epoch,
		TrainLoss:   ev.TrainLoss,
		HeldOutLoss: ev.HeldOutLoss,
		Timestamp:   ev.Time,
	})
}

// RecordEvaluation publishes to <prefix>/runs/<run>/evaluation.
func (p *Publisher) RecordEvaluation(ev coremetrics.EvaluationEvent) error {
	rep := evaluationReport{
		RunID:     ev.RunID,
		Model:     ev.Model,
		Samples:   ev.Samples,
		MSE:       ev.MSE,
		RMSE:      ev.RMSE,
		MAE:       ev.MAE,
		Timestamp: ev.Time,
	}
	if !math.IsNaN(ev.R2) {
		r2 := ev.R2
		rep.R2 = &r2
	}
	return p.publishJSON("evaluation", p.runTopic(ev.RunID, "evaluation"), rep)
}

// RecordPrediction publishes to <prefix>/predictions.
func (p *Publisher) RecordPrediction(ev coremetrics.PredictionEvent) error {
	return p.publishJSON("prediction", p.cfg.TopicPrefix+"/predictions", predictionReport{
		Traffic:        ev.Traffic,
		DurationMin:    ev.DurationMin,
		DistanceKm:     ev.DistanceKm,
		EfficiencyL100: ev.EfficiencyL100,
		PredictedKg:    ev.PredictedKg,
		Timestamp:      ev.Time,
	})
}

func (p *Publisher) runTopic(runID, kind string) string {
	if runID == "" {
		runID = "adhoc"
	}
	return p.cfg.TopicPrefix + "/runs/" + runID + "/" + kind
}

func init() {
	_ = coremetrics.RegisterSink("mqtt", func(conf map[string]any) (coremetrics.RunRecorder, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPublisher(c)
	})
}
