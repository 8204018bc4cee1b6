// Package scenarios loads named prediction queries from YAML files.
package scenarios

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/commutecarbon/core/model"
	"github.com/kilianp07/commutecarbon/core/prediction"
)

// TripDef is the YAML form of one scenario. Traffic accepts an ordinal
// or a label.
type TripDef struct {
	Name       string  `yaml:"name"`
	Traffic    string  `yaml:"traffic"`
	Duration   float64 `yaml:"duration_min"`
	Distance   float64 `yaml:"distance_km"`
	Efficiency float64 `yaml:"efficiency_l_per_100km"`
}

// ToScenario validates the definition and converts it.
func (d TripDef) ToScenario() (prediction.Scenario, error) {
	if d.Name == "" {
		return prediction.Scenario{}, &model.ValidationError{Field: "name", Reason: "missing value"}
	}
	tc, err := model.ParseTrafficCondition(d.Traffic)
	if err != nil {
		return prediction.Scenario{}, err
	}
	q := prediction.Query{
		Traffic:        tc.Ordinal(),
		DurationMin:    d.Duration,
		DistanceKm:     d.Distance,
		EfficiencyL100: d.Efficiency,
	}
	if _, err := q.Validate(); err != nil {
		return prediction.Scenario{}, err
	}
	return prediction.Scenario{Name: d.Name, Query: q}, nil
}

type file struct {
	Scenarios []TripDef `yaml:"scenarios"`
}

// Load reads the scenario list at path.
func Load(path string) ([]prediction.Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	return Parse(b)
}

// Parse decodes a scenario document. Unknown keys are rejected.
func Parse(b []byte) ([]prediction.Scenario, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode scenarios: %w", err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("decode scenarios: no scenarios defined")
	}
	out := make([]prediction.Scenario, 0, len(f.Scenarios))
	seen := make(map[string]bool, len(f.Scenarios))
	for i, d := range f.Scenarios {
		sc, err := d.ToScenario()
		if err != nil {
			return nil, fmt.Errorf("scenario %d: %w", i+1, err)
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("scenario %d: duplicate name %q", i+1, sc.Name)
		}
		seen[sc.Name] = true
		out = append(out, sc)
	}
	return out, nil
}
