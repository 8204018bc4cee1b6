package model

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewTrip(t *testing.T) {
	dep := time.Date(2025, 3, 10, 7, 45, 0, 0, time.UTC)
	r, err := NewTrip(dep, DirectionHomeToCampus, TrafficModerate, 50, 40, 4.5)
	if err != nil {
		t.Fatalf("new trip: %v", err)
	}
	if r.Date != "2025-03-10" || r.DepartureTime != "07:45" || r.DayOfWeek != "Monday" {
		t.Fatalf("unexpected time fields %+v", r)
	}
	if math.Abs(r.FuelUsedL-1.8) > 1e-12 {
		t.Fatalf("fuel used %f", r.FuelUsedL)
	}
	if math.Abs(r.CO2Kg-1.8*EmissionFactor) > 1e-12 {
		t.Fatalf("co2 %f", r.CO2Kg)
	}
	cov := r.Covariates()
	if len(cov) != 4 || cov[0] != 1 || cov[1] != 50 || cov[2] != 40 || cov[3] != 4.5 {
		t.Fatalf("covariates %v", cov)
	}
}

func TestNewTrip_Invalid(t *testing.T) {
	dep := time.Now()
	if _, err := NewTrip(dep, "Campus to Gym", TrafficLow, 30, 10, 5); err == nil {
		t.Fatal("expected direction error")
	}
	_, err := NewTrip(dep, DirectionCampusToHome, TrafficLow, -3, 10, 5)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "trip_duration" {
		t.Fatalf("expected duration validation error, got %v", err)
	}
	if _, err := NewTrip(dep, DirectionCampusToHome, TrafficLow, 30, math.NaN(), 5); err == nil {
		t.Fatal("expected NaN distance error")
	}
}

func TestValidationError_Row(t *testing.T) {
	err := &ValidationError{Row: 4, Field: "traffic_condition", Value: "heavy", Reason: "expected 0/1/2 or low/moderate/high"}
	want := `row 4: invalid traffic_condition "heavy": expected 0/1/2 or low/moderate/high`
	if err.Error() != want {
		t.Fatalf("got %q", err.Error())
	}
	plain := &ValidationError{Field: "distance_km", Reason: "must be positive"}
	if plain.Error() != "invalid distance_km: must be positive" {
		t.Fatalf("got %q", plain.Error())
	}
}
