package cmd

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/commutecarbon/app"
	"github.com/kilianp07/commutecarbon/core/history"
	"github.com/kilianp07/commutecarbon/infra/charts"
)

var historyFlags struct {
	since time.Duration
	limit int
	out   string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Training run history",
}

var historyLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recorded training runs",
	RunE:  runHistoryLs,
}

var historyPlotCmd = &cobra.Command{
	Use:   "plot [run-id]",
	Short: "Render the loss curves of a run as an HTML chart",
	Long:  "Render the loss curves of a run as an HTML chart. Without a run ID the most recent run is plotted; an ID prefix is enough.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryPlot,
}

func init() {
	historyLsCmd.Flags().DurationVar(&historyFlags.since, "since", 0, "only runs started within this duration")
	historyLsCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "maximum number of runs (0 for all)")
	historyPlotCmd.Flags().StringVarP(&historyFlags.out, "output", "o", "loss.html", "output HTML file")
	historyCmd.AddCommand(historyLsCmd, historyPlotCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryLs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	q := history.Query{Limit: historyFlags.limit}
	if historyFlags.since > 0 {
		q.Start = time.Now().Add(-historyFlags.since)
	}
	return withService(cfg, func(svc *app.Service) error {
		runs, err := svc.History(cmd.Context(), q)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tDATASET\tTRIPS\tEPOCHS\tRMSE\tR2\tBASELINE RMSE")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4f\t%s\t%.4f\n",
				shortID(r.ID), r.StartedAt.Local().Format("2006-01-02 15:04"), r.Dataset, r.Records,
				len(r.Losses), r.Metrics.RMSE, formatR2(r.Metrics.R2), r.Baseline.RMSE)
		}
		return w.Flush()
	})
}

func runHistoryPlot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	var prefix string
	if len(args) == 1 {
		prefix = args[0]
	}
	return withService(cfg, func(svc *app.Service) error {
		run, err := svc.FindRun(cmd.Context(), prefix)
		if err != nil {
			return err
		}
		f, err := os.Create(historyFlags.out)
		if err != nil {
			return err
		}
		if err := charts.WriteLossChart(f, run); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote loss chart of run %s to %s\n", shortID(run.ID), historyFlags.out)
		return nil
	})
}

func formatR2(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
