package evaluation

import (
	"github.com/montanaflynn/stats"

	"github.com/kilianp07/commutecarbon/core/dataset"
	"github.com/kilianp07/commutecarbon/core/model"
)

// GroupMeanBaseline predicts the mean observed emissions of the training
// records sharing the query's traffic condition.
type GroupMeanBaseline struct {
	Global float64
	Groups map[model.TrafficCondition]float64
}

// FitGroupMeans computes the per-condition means of records. Conditions
// absent from records fall back to the global mean.
func FitGroupMeans(records []model.TripRecord) (*GroupMeanBaseline, error) {
	if len(records) == 0 {
		return nil, &model.InsufficientDataError{Op: "fit baseline", Have: 0, Need: 1}
	}
	all := make(stats.Float64Data, 0, len(records))
	byGroup := map[model.TrafficCondition]stats.Float64Data{}
	for _, r := range records {
		all = append(all, r.CO2Kg)
		byGroup[r.Traffic] = append(byGroup[r.Traffic], r.CO2Kg)
	}
	global, err := all.Mean()
	if err != nil {
		return nil, err
	}
	b := &GroupMeanBaseline{Global: global, Groups: make(map[model.TrafficCondition]float64, len(byGroup))}
	for tc, vals := range byGroup {
		m, err := vals.Mean()
		if err != nil {
			return nil, err
		}
		b.Groups[tc] = m
	}
	return b, nil
}

// PredictRecord returns the group mean for r's traffic condition.
func (b *GroupMeanBaseline) PredictRecord(r model.TripRecord) float64 {
	if m, ok := b.Groups[r.Traffic]; ok {
		return m
	}
	return b.Global
}

// Evaluate scores the baseline over test with the regressor metrics.
func (b *GroupMeanBaseline) Evaluate(test []dataset.Sample) (Metrics, error) {
	return EvaluateFunc(func(s dataset.Sample) float64 { return b.PredictRecord(s.Record) }, test)
}
