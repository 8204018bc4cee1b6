package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/commutecarbon/app"
	"github.com/kilianp07/commutecarbon/core/model"
	"github.com/kilianp07/commutecarbon/core/prediction"
	"github.com/kilianp07/commutecarbon/infra/scenarios"
)

var predictFlags struct {
	interactive bool
	traffic     string
	duration    float64
	distance    float64
	efficiency  float64
	scenarios   string
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the CO2 emissions of a trip with the saved model",
	Example: `  commutecarbon predict --traffic low --duration 35 --distance 39 --efficiency 3.5
  commutecarbon predict -i
  commutecarbon predict --scenarios scenarios.yaml`,
	RunE: runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.BoolVarP(&predictFlags.interactive, "interactive", "i", false, "prompt for the trip details")
	f.StringVar(&predictFlags.traffic, "traffic", "", "traffic condition: 0/1/2 or low/moderate/high")
	f.Float64Var(&predictFlags.duration, "duration", 0, "trip duration in minutes")
	f.Float64Var(&predictFlags.distance, "distance", 0, "distance in km")
	f.Float64Var(&predictFlags.efficiency, "efficiency", 0, "fuel efficiency in L/100km")
	f.StringVar(&predictFlags.scenarios, "scenarios", "", "predict every trip of a YAML scenario file")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return withService(cfg, func(svc *app.Service) error {
		pred, err := svc.Predictor()
		if err != nil {
			return err
		}
		if predictFlags.interactive {
			s := prediction.Session{Engine: pred, In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
			_, _, err := s.Run()
			return err
		}
		if predictFlags.scenarios != "" {
			list, err := scenarios.Load(predictFlags.scenarios)
			if err != nil {
				return err
			}
			return reportScenarios(cmd.OutOrStdout(), pred, list)
		}
		if predictFlags.traffic == "" {
			return fmt.Errorf("--traffic is required unless --interactive is set")
		}
		tc, err := model.ParseTrafficCondition(predictFlags.traffic)
		if err != nil {
			return err
		}
		q := prediction.Query{
			Traffic:        tc.Ordinal(),
			DurationMin:    predictFlags.duration,
			DistanceKm:     predictFlags.distance,
			EfficiencyL100: predictFlags.efficiency,
		}
		_, err = prediction.Report(cmd.OutOrStdout(), pred, q)
		return err
	})
}

func reportScenarios(out io.Writer, e prediction.Engine, list []prediction.Scenario) error {
	for i, sc := range list {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "== %s\n", sc.Name)
		if _, err := prediction.Report(out, e, sc.Query); err != nil {
			return fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
	}
	return nil
}
