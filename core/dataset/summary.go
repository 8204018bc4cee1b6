package dataset

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/kilianp07/commutecarbon/core/model"
)

// GroupSummary aggregates the observed emissions of one traffic condition.
type GroupSummary struct {
	Count  int     `json:"count"`
	MeanKg float64 `json:"mean_kg"`
}

// Summary describes the observed emissions of a loaded corpus.
type Summary struct {
	Records   int                                     `json:"records"`
	MeanKg    float64                                 `json:"mean_kg"`
	MinKg     float64                                 `json:"min_kg"`
	MaxKg     float64                                 `json:"max_kg"`
	ByTraffic map[model.TrafficCondition]GroupSummary `json:"by_traffic"`
}

// Summarize computes the corpus summary logged after loading.
func Summarize(records []model.TripRecord) (Summary, error) {
	if len(records) == 0 {
		return Summary{}, &model.InsufficientDataError{Op: "summarize", Have: 0, Need: 1}
	}
	all := make(stats.Float64Data, len(records))
	groups := make(map[model.TrafficCondition]stats.Float64Data)
	for i, r := range records {
		all[i] = r.CO2Kg
		groups[r.Traffic] = append(groups[r.Traffic], r.CO2Kg)
	}
	s := Summary{Records: len(records), ByTraffic: make(map[model.TrafficCondition]GroupSummary, len(groups))}
	s.MeanKg, _ = all.Mean()
	s.MinKg, _ = all.Min()
	s.MaxKg, _ = all.Max()
	for tc, data := range groups {
		mean, _ := data.Mean()
		s.ByTraffic[tc] = GroupSummary{Count: len(data), MeanKg: mean}
	}
	return s, nil
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d trips, CO2 mean %.2f kg (min %.2f, max %.2f)", s.Records, s.MeanKg, s.MinKg, s.MaxKg)
	for _, tc := range model.TrafficConditions() {
		if g, ok := s.ByTraffic[tc]; ok {
			fmt.Fprintf(&b, ", %s traffic %.2f kg over %d", tc, g.MeanKg, g.Count)
		}
	}
	return b.String()
}
