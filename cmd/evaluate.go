package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/commutecarbon/app"
	"github.com/kilianp07/commutecarbon/infra/charts"
)

var evaluateChart string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score the saved model on the held-out trips",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return withService(cfg, func(svc *app.Service) error {
			records, err := svc.LoadDataset()
			if err != nil {
				return err
			}
			ev, err := svc.Evaluate(records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Regressor: %s\n", ev.Metrics)
			fmt.Fprintf(cmd.OutOrStdout(), "Group mean baseline: %s\n", ev.Baseline)
			if evaluateChart == "" {
				return nil
			}
			f, err := os.Create(evaluateChart)
			if err != nil {
				return err
			}
			if err := charts.WritePredictionChart(f, ev.Pairs); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote prediction chart to %s\n", evaluateChart)
			return nil
		})
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateChart, "chart", "", "write a predicted vs actual scatter to this HTML file")
	rootCmd.AddCommand(evaluateCmd)
}
