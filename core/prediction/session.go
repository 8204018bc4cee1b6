package prediction

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/commutecarbon/core/model"
)

// Session runs one interactive prediction over a line-oriented stream.
type Session struct {
	Engine Engine
	In     io.Reader
	Out    io.Writer
}

// Run prompts for the four trip attributes, prints the prediction and the
// similar-trip comparison. Malformed input prints a message and Run returns
// the validation error without querying the engine.
func (s *Session) Run() (Query, float64, error) {
	sc := bufio.NewScanner(s.In)
	fmt.Fprintln(s.Out, "Enter your commute details to predict CO2 emissions:")

	var q Query
	tc, err := s.ask(sc, "Traffic condition (0=Low, 1=Moderate, 2=High): ", "traffic_condition")
	if err == nil {
		var t model.TrafficCondition
		t, err = model.ParseTrafficCondition(tc)
		q.Traffic = t.Ordinal()
	}
	if err == nil {
		q.DurationMin, err = s.askFloat(sc, "Trip duration (minutes): ", "trip_duration")
	}
	if err == nil {
		q.DistanceKm, err = s.askFloat(sc, "Distance (km): ", "distance_km")
	}
	if err == nil {
		q.EfficiencyL100, err = s.askFloat(sc, "Fuel efficiency (L/100km): ", "fuel_efficiency_l_per_100km")
	}
	if err != nil {
		return q, 0, s.fail(err)
	}

	y, err := Report(s.Out, s.Engine, q)
	if err != nil {
		return q, 0, s.fail(err)
	}
	return q, y, nil
}

// Report predicts q with e and prints the estimate followed by the
// similar-trip comparison.
func Report(out io.Writer, e Engine, q Query) (float64, error) {
	y, err := e.Predict(q)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(out, "\nPredicted CO2 emissions: %.2f kg\n", y)
	sim, err := e.Similar(q)
	switch {
	case err != nil:
		fmt.Fprintf(out, "Similar trips unavailable: %v\n", err)
	case sim.Count > 0:
		fmt.Fprintf(out, "Average CO2 for %d similar trips in dataset: %.2f kg\n", sim.Count, sim.MeanKg)
	default:
		fmt.Fprintln(out, "No similar trips found in the dataset for comparison")
	}
	return y, nil
}

func (s *Session) fail(err error) error {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		fmt.Fprintf(s.Out, "Invalid input: %v\n", err)
	} else {
		fmt.Fprintf(s.Out, "Error: %v\n", err)
	}
	return err
}

func (s *Session) ask(sc *bufio.Scanner, prompt, field string) (string, error) {
	fmt.Fprint(s.Out, prompt)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("read %s: %w", field, err)
		}
		return "", &model.ValidationError{Field: field, Reason: "no input"}
	}
	return strings.TrimSpace(sc.Text()), nil
}

func (s *Session) askFloat(sc *bufio.Scanner, prompt, field string) (float64, error) {
	v, err := s.ask(sc, prompt, field)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &model.ValidationError{Field: field, Value: v, Reason: "expected a number"}
	}
	return f, nil
}
