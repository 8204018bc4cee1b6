package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/commutecarbon/core/impact"
	"github.com/kilianp07/commutecarbon/infra/dataset"
)

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Estimate yearly emissions and traffic reduction potential",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		records, err := dataset.LoadFormat(cfg.Dataset.Path, cfg.Dataset.Format)
		if err != nil {
			return err
		}
		rep, err := impact.Estimate(records, cfg.Impact)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Average CO2 per trip: %.2f kg\n\n", rep.MeanTripKg)
		fmt.Fprintln(out, "Estimated yearly emissions:")
		for _, y := range rep.Yearly {
			fmt.Fprintf(out, "  %d students: %.2f tonnes CO2\n", y.Students, y.Tonnes())
		}
		eq := rep.Equivalents
		fmt.Fprintf(out, "\nFor %d students, the yearly emissions equal:\n", eq.Students)
		fmt.Fprintf(out, "  %.0f trees absorbing CO2 for a year\n", eq.Trees)
		fmt.Fprintf(out, "  %.0f km driven by an average car\n", eq.CarKm)
		fmt.Fprintf(out, "  %.1f trips around the Earth\n", eq.EarthLaps)
		if r := rep.Reduction; r != nil {
			fmt.Fprintf(out, "\nMoving high traffic trips to low traffic saves %.2f kg per trip (%.1f%%),\n", r.PerTripKg, r.Percent)
			fmt.Fprintf(out, "%.2f tonnes CO2 per year for %d students\n", r.YearlyTonnes, r.ReferenceCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(impactCmd)
}
