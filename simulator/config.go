package simulator

import (
	"fmt"
	"time"

	"github.com/kilianp07/commutecarbon/core/model"
)

// Band is an inclusive uniform sampling range.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (b Band) valid() bool { return b.Min > 0 && b.Max >= b.Min }

// Profile holds the sampling ranges of one traffic condition.
type Profile struct {
	Duration   Band `json:"duration"`
	Distance   Band `json:"distance"`
	Efficiency Band `json:"efficiency"`
}

// UniformProfile is the reference scenario: durations 20-90 min, distances
// 30-45 km and efficiencies 3-6 L/100km regardless of traffic.
var UniformProfile = Profile{
	Duration:   Band{20, 90},
	Distance:   Band{30, 45},
	Efficiency: Band{3, 6},
}

// GroupedProfiles ties duration and efficiency to the traffic level, the way
// congestion shows up in collected commutes.
func GroupedProfiles() map[model.TrafficCondition]Profile {
	return map[model.TrafficCondition]Profile{
		model.TrafficLow:      {Duration: Band{28, 42}, Distance: Band{38, 40}, Efficiency: Band{3.2, 3.8}},
		model.TrafficModerate: {Duration: Band{45, 60}, Distance: Band{39, 41}, Efficiency: Band{4.2, 4.8}},
		model.TrafficHigh:     {Duration: Band{70, 90}, Distance: Band{40, 42}, Efficiency: Band{4.8, 5.4}},
	}
}

// Config holds parameters for corpus generation.
type Config struct {
	Trips int       `json:"trips"`
	Seed  int64     `json:"seed"`
	Start time.Time `json:"start"`
	// Profiles overrides UniformProfile per traffic condition.
	Profiles map[model.TrafficCondition]Profile `json:"profiles"`
}

// DefaultTrips is the size of the reference corpus.
const DefaultTrips = 20

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.Trips == 0 {
		c.Trips = DefaultTrips
	}
	if c.Start.IsZero() {
		c.Start = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	}
}

// Validate checks the generation parameters.
func (c Config) Validate() error {
	if c.Trips <= 0 {
		return fmt.Errorf("trips must be > 0")
	}
	for tc, p := range c.Profiles {
		if !tc.Valid() {
			return fmt.Errorf("profile for unknown traffic condition %d", tc)
		}
		if !p.Duration.valid() || !p.Distance.valid() || !p.Efficiency.valid() {
			return fmt.Errorf("profile %s: ranges must be positive with min <= max", tc)
		}
	}
	return nil
}

func (c Config) profile(tc model.TrafficCondition) Profile {
	if p, ok := c.Profiles[tc]; ok {
		return p
	}
	return UniformProfile
}
