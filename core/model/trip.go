package model

import (
	"math"
	"time"
)

// EmissionFactor is the kg of CO2 released per liter of gasoline burnt.
const EmissionFactor = 2.31

// Trip directions recorded by the data collection tool.
const (
	DirectionHomeToCampus = "Home to Campus"
	DirectionCampusToHome = "Campus to Home"
)

// TripRecord is one observed commute. Column tags follow the shared dataset
// format consumed by the statistics and plotting tools.
type TripRecord struct {
	Date           string           `csv:"date" json:"date"`
	DepartureTime  string           `csv:"departure_time" json:"departure_time"`
	Direction      string           `csv:"trip_direction" json:"trip_direction"`
	DurationMin    float64          `csv:"trip_duration" json:"trip_duration"`
	DistanceKm     float64          `csv:"distance_km" json:"distance_km"`
	EfficiencyL100 float64          `csv:"fuel_efficiency_l_per_100km" json:"fuel_efficiency_l_per_100km"`
	FuelUsedL      float64          `csv:"fuel_used_l" json:"fuel_used_l"`
	Traffic        TrafficCondition `csv:"traffic_condition" json:"traffic_condition"`
	DayOfWeek      string           `csv:"day_of_week" json:"day_of_week"`
	CO2Kg          float64          `csv:"co2_emissions_kg" json:"co2_emissions_kg"`
}

// Covariates returns the raw model inputs in feature order:
// traffic condition, trip duration, distance, fuel efficiency.
func (r TripRecord) Covariates() []float64 {
	return []float64{float64(r.Traffic.Ordinal()), r.DurationMin, r.DistanceKm, r.EfficiencyL100}
}

// FuelUsed returns the liters burnt over distanceKm at the given L/100km.
func FuelUsed(distanceKm, efficiencyL100 float64) float64 {
	return distanceKm * efficiencyL100 / 100
}

// CO2FromFuel converts liters of gasoline to kg of CO2.
func CO2FromFuel(liters float64) float64 {
	return liters * EmissionFactor
}

// NewTrip builds a record for a trip that departed at t. Fuel used and
// emissions are derived from distance and efficiency.
func NewTrip(t time.Time, direction string, traffic TrafficCondition, durationMin, distanceKm, efficiencyL100 float64) (TripRecord, error) {
	if direction != DirectionHomeToCampus && direction != DirectionCampusToHome {
		return TripRecord{}, &ValidationError{Field: "trip_direction", Value: direction, Reason: "expected \"Home to Campus\" or \"Campus to Home\""}
	}
	if !traffic.Valid() {
		return TripRecord{}, &ValidationError{Field: "traffic_condition", Value: traffic.String(), Reason: "expected low, moderate or high"}
	}
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"trip_duration", durationMin},
		{"distance_km", distanceKm},
		{"fuel_efficiency_l_per_100km", efficiencyL100},
	} {
		if err := CheckPositive(c.name, c.v); err != nil {
			return TripRecord{}, err
		}
	}
	fuel := FuelUsed(distanceKm, efficiencyL100)
	return TripRecord{
		Date:           t.Format("2006-01-02"),
		DepartureTime:  t.Format("15:04"),
		Direction:      direction,
		DurationMin:    durationMin,
		DistanceKm:     distanceKm,
		EfficiencyL100: efficiencyL100,
		FuelUsedL:      fuel,
		Traffic:        traffic,
		DayOfWeek:      t.Weekday().String(),
		CO2Kg:          CO2FromFuel(fuel),
	}, nil
}

// CheckPositive returns a ValidationError unless v is a finite positive number.
func CheckPositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: field, Reason: "must be a finite number"}
	}
	if v <= 0 {
		return &ValidationError{Field: field, Reason: "must be positive"}
	}
	return nil
}
