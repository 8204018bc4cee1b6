package prediction

import (
	"fmt"

	"github.com/kilianp07/commutecarbon/core/model"
)

// Query describes one trip to predict, in raw units.
type Query struct {
	Traffic        int     `json:"traffic_condition"`
	DurationMin    float64 `json:"trip_duration"`
	DistanceKm     float64 `json:"distance_km"`
	EfficiencyL100 float64 `json:"fuel_efficiency_l_per_100km"`
}

// Validate checks the query and returns its traffic condition.
func (q Query) Validate() (model.TrafficCondition, error) {
	tc, err := model.TrafficFromOrdinal(q.Traffic)
	if err != nil {
		return 0, err
	}
	if err := model.CheckPositive("trip_duration", q.DurationMin); err != nil {
		return 0, err
	}
	if err := model.CheckPositive("distance_km", q.DistanceKm); err != nil {
		return 0, err
	}
	if err := model.CheckPositive("fuel_efficiency_l_per_100km", q.EfficiencyL100); err != nil {
		return 0, err
	}
	return tc, nil
}

func (q Query) raw() []float64 {
	return []float64{float64(q.Traffic), q.DurationMin, q.DistanceKm, q.EfficiencyL100}
}

// Similar summarizes corpus trips comparable to a query.
type Similar struct {
	Count  int     `json:"count"`
	MeanKg float64 `json:"mean_kg"`
}

func (s Similar) String() string {
	if s.Count == 0 {
		return "no similar trips"
	}
	return fmt.Sprintf("%d similar trips, mean %.2f kg", s.Count, s.MeanKg)
}

// Engine predicts trip emissions.
type Engine interface {
	// Predict returns the expected kg of CO2 for q.
	Predict(q Query) (float64, error)
	// Similar reports observed emissions of comparable trips. The result
	// is advisory; Count is zero when nothing matches.
	Similar(q Query) (Similar, error)
}

// Scenario is a named query.
type Scenario struct {
	Name  string `json:"name"`
	Query Query  `json:"query"`
}

// Scenarios are the reference trips reported after every training run.
var Scenarios = []Scenario{
	{Name: "Low Traffic, Short Trip", Query: Query{Traffic: 0, DurationMin: 35, DistanceKm: 39, EfficiencyL100: 3.5}},
	{Name: "Moderate Traffic, Average Trip", Query: Query{Traffic: 1, DurationMin: 50, DistanceKm: 40, EfficiencyL100: 4.5}},
	{Name: "High Traffic, Long Trip", Query: Query{Traffic: 2, DurationMin: 80, DistanceKm: 41, EfficiencyL100: 5.0}},
}
