package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/commutecarbon/core/model"
	"github.com/kilianp07/commutecarbon/infra/dataset"
)

var recordFlags struct {
	at         string
	direction  string
	traffic    string
	duration   float64
	distance   float64
	efficiency float64
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Append an observed trip to the dataset",
	RunE:  runRecord,
}

func init() {
	f := recordCmd.Flags()
	f.StringVar(&recordFlags.at, "at", "", `departure time "2006-01-02 15:04" (default now)`)
	f.StringVar(&recordFlags.direction, "direction", model.DirectionHomeToCampus, `"Home to Campus" or "Campus to Home"`)
	f.StringVar(&recordFlags.traffic, "traffic", "", "traffic condition: 0/1/2 or low/moderate/high")
	f.Float64Var(&recordFlags.duration, "duration", 0, "trip duration in minutes")
	f.Float64Var(&recordFlags.distance, "distance", 0, "distance in km")
	f.Float64Var(&recordFlags.efficiency, "efficiency", 0, "fuel efficiency in L/100km")
	_ = recordCmd.MarkFlagRequired("traffic")
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	at := time.Now()
	if recordFlags.at != "" {
		at, err = time.ParseInLocation("2006-01-02 15:04", recordFlags.at, time.Local)
		if err != nil {
			return &model.ValidationError{Field: "at", Value: recordFlags.at, Reason: `expected "2006-01-02 15:04"`}
		}
	}
	tc, err := model.ParseTrafficCondition(recordFlags.traffic)
	if err != nil {
		return err
	}
	trip, err := model.NewTrip(at, recordFlags.direction, tc, recordFlags.duration, recordFlags.distance, recordFlags.efficiency)
	if err != nil {
		return err
	}
	if err := dataset.AppendCSV(cfg.Dataset.Path, trip); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Trip recorded in %s: %.2f L of fuel, %.2f kg CO2\n", cfg.Dataset.Path, trip.FuelUsedL, trip.CO2Kg)
	return nil
}
