package model

import (
	"strconv"
	"strings"
)

// TrafficCondition is the ordinal traffic level observed during a trip.
type TrafficCondition int

const (
	TrafficLow TrafficCondition = iota
	TrafficModerate
	TrafficHigh
)

// trafficLabels maps each level to its textual encoding. The ordinal value is
// the index, which gives the bidirectional table used at loading time.
var trafficLabels = [...]string{"low", "moderate", "high"}

// TrafficConditions lists the recognized levels in ordinal order.
func TrafficConditions() []TrafficCondition {
	return []TrafficCondition{TrafficLow, TrafficModerate, TrafficHigh}
}

// Valid reports whether t is one of the three recognized levels.
func (t TrafficCondition) Valid() bool {
	return t >= TrafficLow && t <= TrafficHigh
}

// String returns the textual label of the level.
func (t TrafficCondition) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return trafficLabels[t]
}

// Ordinal returns the numeric encoding used as model feature.
func (t TrafficCondition) Ordinal() int { return int(t) }

// TrafficFromOrdinal converts the 0/1/2 encoding.
func TrafficFromOrdinal(v int) (TrafficCondition, error) {
	t := TrafficCondition(v)
	if !t.Valid() {
		return 0, &ValidationError{Field: "traffic_condition", Value: strconv.Itoa(v), Reason: "expected 0, 1 or 2"}
	}
	return t, nil
}

// ParseTrafficCondition accepts either encoding found in the datasets:
// the ordinal digits 0/1/2 or the labels low/moderate/high (any case).
func ParseTrafficCondition(s string) (TrafficCondition, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for i, l := range trafficLabels {
		if v == l {
			return TrafficCondition(i), nil
		}
	}
	if n, err := strconv.Atoi(v); err == nil {
		return TrafficFromOrdinal(n)
	}
	return 0, &ValidationError{Field: "traffic_condition", Value: s, Reason: "expected 0/1/2 or low/moderate/high"}
}

// MarshalCSV writes the ordinal encoding.
func (t TrafficCondition) MarshalCSV() (string, error) {
	return strconv.Itoa(int(t)), nil
}

// UnmarshalCSV normalizes either encoding.
func (t *TrafficCondition) UnmarshalCSV(s string) error {
	v, err := ParseTrafficCondition(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MarshalText implements encoding.TextMarshaler with the textual label.
func (t TrafficCondition) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, &ValidationError{Field: "traffic_condition", Value: strconv.Itoa(int(t)), Reason: "expected 0, 1 or 2"}
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TrafficCondition) UnmarshalText(b []byte) error {
	v, err := ParseTrafficCondition(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
