// Package impact scales per-trip emissions up to yearly figures for a
// student population and expresses them in everyday equivalents.
package impact

import (
	"github.com/montanaflynn/stats"

	"github.com/kilianp07/commutecarbon/core/model"
)

const (
	// TripsPerDay counts the outbound and return commute.
	TripsPerDay = 2
	// DefaultSchoolDays is the length of the academic year in days.
	DefaultSchoolDays = 180
	// TreeKgPerYear is the CO2 a mature tree absorbs yearly.
	TreeKgPerYear = 20.0
	// CarKgPerKm is the CO2 emitted by an average car per km.
	CarKgPerKm = 0.15
	// EarthCircumferenceKm is one lap around the equator.
	EarthCircumferenceKm = 40075.0
)

// DefaultStudentCounts are the population sizes reported by default.
var DefaultStudentCounts = []int{1, 100, 1000, 10000}

// Config parametrizes the estimate.
type Config struct {
	StudentCounts []int `json:"student_counts"`
	SchoolDays    int   `json:"school_days"`
	// Reference is the population used for equivalents and the traffic
	// reduction. Defaults to the largest student count.
	Reference int `json:"reference"`
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if len(c.StudentCounts) == 0 {
		c.StudentCounts = append([]int(nil), DefaultStudentCounts...)
	}
	if c.SchoolDays == 0 {
		c.SchoolDays = DefaultSchoolDays
	}
	if c.Reference == 0 {
		for _, n := range c.StudentCounts {
			c.Reference = max(c.Reference, n)
		}
	}
}

// Validate checks the ranges.
func (c Config) Validate() error {
	if c.SchoolDays <= 0 {
		return &model.ValidationError{Field: "school_days", Reason: "must be positive"}
	}
	if c.Reference <= 0 {
		return &model.ValidationError{Field: "reference", Reason: "must be positive"}
	}
	for _, n := range c.StudentCounts {
		if n <= 0 {
			return &model.ValidationError{Field: "student_counts", Reason: "must be positive"}
		}
	}
	return nil
}

// Yearly is the emission total for one population size.
type Yearly struct {
	Students int     `json:"students"`
	Kg       float64 `json:"kg"`
}

// Tonnes converts Kg to metric tons.
func (y Yearly) Tonnes() float64 { return y.Kg / 1000 }

// Equivalents expresses a yearly total in everyday terms.
type Equivalents struct {
	Students  int     `json:"students"`
	YearlyKg  float64 `json:"yearly_kg"`
	Trees     float64 `json:"trees"`
	CarKm     float64 `json:"car_km"`
	EarthLaps float64 `json:"earth_laps"`
}

// TrafficReduction is the saving obtained by moving every high-traffic trip
// to low-traffic conditions.
type TrafficReduction struct {
	HighMeanKg     float64 `json:"high_mean_kg"`
	LowMeanKg      float64 `json:"low_mean_kg"`
	PerTripKg      float64 `json:"per_trip_kg"`
	Percent        float64 `json:"percent"`
	YearlyTonnes   float64 `json:"yearly_tonnes"`
	ReferenceCount int     `json:"reference_count"`
}

// Report is the full estimate.
type Report struct {
	MeanTripKg  float64           `json:"mean_trip_kg"`
	Yearly      []Yearly          `json:"yearly"`
	Equivalents Equivalents       `json:"equivalents"`
	Reduction   *TrafficReduction `json:"reduction,omitempty"`
}

// Estimate computes the report from the observed trips. Reduction is nil
// unless both low and high traffic trips were observed.
func Estimate(records []model.TripRecord, cfg Config) (*Report, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &model.InsufficientDataError{Op: "impact", Have: 0, Need: 1}
	}
	all := make(stats.Float64Data, len(records))
	byTraffic := map[model.TrafficCondition]stats.Float64Data{}
	for i, r := range records {
		all[i] = r.CO2Kg
		byTraffic[r.Traffic] = append(byTraffic[r.Traffic], r.CO2Kg)
	}
	mean, err := all.Mean()
	if err != nil {
		return nil, err
	}
	rep := &Report{MeanTripKg: mean}
	for _, n := range cfg.StudentCounts {
		rep.Yearly = append(rep.Yearly, Yearly{Students: n, Kg: YearlyKg(mean, n, cfg.SchoolDays)})
	}
	rep.Equivalents = Equivalent(YearlyKg(mean, cfg.Reference, cfg.SchoolDays), cfg.Reference)

	high, low := byTraffic[model.TrafficHigh], byTraffic[model.TrafficLow]
	if len(high) > 0 && len(low) > 0 {
		hm, _ := high.Mean()
		lm, _ := low.Mean()
		red := hm - lm
		rep.Reduction = &TrafficReduction{
			HighMeanKg:     hm,
			LowMeanKg:      lm,
			PerTripKg:      red,
			Percent:        red / hm * 100,
			YearlyTonnes:   YearlyKg(red, cfg.Reference, cfg.SchoolDays) / 1000,
			ReferenceCount: cfg.Reference,
		}
	}
	return rep, nil
}

// YearlyKg scales a per-trip emission to a yearly total.
func YearlyKg(perTripKg float64, students, schoolDays int) float64 {
	return perTripKg * TripsPerDay * float64(students) * float64(schoolDays)
}

// Equivalent converts a yearly total to trees, car km and laps of the Earth.
func Equivalent(yearlyKg float64, students int) Equivalents {
	carKm := yearlyKg / CarKgPerKm
	return Equivalents{
		Students:  students,
		YearlyKg:  yearlyKg,
		Trees:     yearlyKg / TreeKgPerYear,
		CarKm:     carKm,
		EarthLaps: carKm / EarthCircumferenceKm,
	}
}
