package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/commutecarbon/app"
	"github.com/kilianp07/commutecarbon/core/dataset"
	"github.com/kilianp07/commutecarbon/infra/charts"
)

var chartOut string

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the mean emissions per traffic condition of the dataset as an HTML chart",
	RunE:  runChart,
}

func init() {
	chartCmd.Flags().StringVarP(&chartOut, "output", "o", "emissions.html", "output HTML file")
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return withService(cfg, func(svc *app.Service) error {
		records, err := svc.LoadDataset()
		if err != nil {
			return err
		}
		sum, err := dataset.Summarize(records)
		if err != nil {
			return err
		}
		f, err := os.Create(chartOut)
		if err != nil {
			return err
		}
		if err := charts.WriteEmissionsChart(f, sum); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote emissions chart of %d trips to %s\n", sum.Records, chartOut)
		return nil
	})
}
