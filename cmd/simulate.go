package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/commutecarbon/infra/dataset"
	"github.com/kilianp07/commutecarbon/simulator"
)

var simulateFlags struct {
	out     string
	trips   int
	seed    int64
	grouped bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Write a synthetic commute dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := simulateFlags.out
		if out == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out = cfg.Dataset.Path
		}
		sc := simulator.Config{Trips: simulateFlags.trips, Seed: simulateFlags.seed}
		if simulateFlags.grouped {
			sc.Profiles = simulator.GroupedProfiles()
		}
		trips, err := simulator.Generate(sc)
		if err != nil {
			return err
		}
		if err := dataset.WriteCSV(out, trips); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d trips to %s\n", len(trips), out)
		return nil
	},
}

func init() {
	f := simulateCmd.Flags()
	f.StringVarP(&simulateFlags.out, "out", "o", "", "output CSV (default dataset.path)")
	f.IntVarP(&simulateFlags.trips, "trips", "n", simulator.DefaultTrips, "number of trips")
	f.Int64Var(&simulateFlags.seed, "seed", 42, "random seed")
	f.BoolVar(&simulateFlags.grouped, "grouped", false, "tie duration and efficiency to the traffic level")
	rootCmd.AddCommand(simulateCmd)
}
