// Package simulator generates synthetic commute corpora. Output is fully
// determined by the seed, which makes it suitable for regression tests and
// demos without collected data.
package simulator

import (
	"math/rand"
	"time"

	"github.com/kilianp07/commutecarbon/core/model"
)

// Generate creates cfg.Trips records. Traffic conditions rotate low,
// moderate, high so the corpus is evenly split; trips alternate between the
// morning and evening direction of consecutive school days.
func Generate(cfg Config) ([]model.TripRecord, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	levels := model.TrafficConditions()
	out := make([]model.TripRecord, 0, cfg.Trips)
	for i := 0; i < cfg.Trips; i++ {
		tc := levels[i%len(levels)]
		p := cfg.profile(tc)
		day := schoolDay(cfg.Start, i/2)
		dir := model.DirectionHomeToCampus
		dep := day.Add(7*time.Hour + 30*time.Minute)
		if i%2 == 1 {
			dir = model.DirectionCampusToHome
			dep = day.Add(17 * time.Hour)
		}
		dep = dep.Add(time.Duration(rng.Intn(60)) * time.Minute)
		rec, err := model.NewTrip(dep, dir, tc,
			round(sample(rng, p.Duration), 0),
			round(sample(rng, p.Distance), 1),
			round(sample(rng, p.Efficiency), 2),
		)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Reference returns the 20-trip uniform corpus drawn from seed.
func Reference(seed int64) []model.TripRecord {
	recs, _ := Generate(Config{Trips: DefaultTrips, Seed: seed})
	return recs
}

// Grouped returns n trips drawn from GroupedProfiles.
func Grouped(n int, seed int64) []model.TripRecord {
	recs, _ := Generate(Config{Trips: n, Seed: seed, Profiles: GroupedProfiles()})
	return recs
}

func sample(rng *rand.Rand, b Band) float64 {
	return b.Min + rng.Float64()*(b.Max-b.Min)
}

func round(v float64, digits int) float64 {
	p := 1.0
	for i := 0; i < digits; i++ {
		p *= 10
	}
	r := float64(int64(v*p+0.5)) / p
	if r <= 0 {
		return v
	}
	return r
}

// schoolDay returns the n-th weekday on or after start.
func schoolDay(start time.Time, n int) time.Time {
	d := start
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	for n > 0 {
		d = d.AddDate(0, 0, 1)
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			n--
		}
	}
	return d
}
