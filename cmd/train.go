package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kilianp07/commutecarbon/app"
	"github.com/kilianp07/commutecarbon/core/training"
)

var trainFlags struct {
	data       string
	model      string
	epochs     int
	noProgress bool
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the emissions regressor and save the model",
	RunE:  runTrain,
}

func init() {
	f := trainCmd.Flags()
	f.StringVarP(&trainFlags.data, "data", "d", "", "dataset file (overrides dataset.path)")
	f.StringVarP(&trainFlags.model, "model", "m", "", "model artifact (overrides model.path)")
	f.IntVar(&trainFlags.epochs, "epochs", 0, "number of epochs (overrides training.epochs)")
	f.BoolVar(&trainFlags.noProgress, "no-progress", false, "disable the progress bar")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if trainFlags.data != "" {
		cfg.Dataset.Path = trainFlags.data
	}
	if trainFlags.model != "" {
		cfg.Model.Path = trainFlags.model
	}
	if trainFlags.epochs > 0 {
		cfg.Training.Epochs = trainFlags.epochs
	}
	if !trainFlags.noProgress {
		// The bar replaces periodic epoch logs.
		cfg.Training.LogEvery = 0
	}

	return withService(cfg, func(svc *app.Service) error {
		records, err := svc.LoadDataset()
		if err != nil {
			return err
		}
		var onEpoch func(training.Epoch)
		if !trainFlags.noProgress {
			bar := progressbar.NewOptions(cfg.Training.Epochs,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("training"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			defer bar.Finish()
			onEpoch = func(e training.Epoch) {
				bar.Describe(fmt.Sprintf("loss %.4f / %.4f", e.TrainLoss, e.HeldOutLoss))
				_ = bar.Add(1)
			}
		}
		res, err := svc.Train(cmd.Context(), records, onEpoch)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run %s: %d trips, %d for training, %d held out\n", res.Run.ID, res.Run.Records, res.Run.TrainSize, res.Run.TestSize)
		if n := len(res.Run.Losses); n > 0 {
			last := res.Run.Losses[n-1]
			fmt.Fprintf(out, "Final epoch %d: train loss %.4f, held-out loss %.4f\n", last.Epoch, last.TrainLoss, last.HeldOutLoss)
		}
		fmt.Fprintf(out, "Regressor: %s\n", res.Run.Metrics)
		fmt.Fprintf(out, "Group mean baseline: %s\n", res.Run.Baseline)
		fmt.Fprintln(out, "\nPredictions for example scenarios:")
		for _, p := range res.Run.Predictions {
			fmt.Fprintf(out, "%s: %.2f kg CO2\n", p.Scenario, p.PredictedKg)
		}
		fmt.Fprintf(out, "\nModel saved to %s\n", cfg.Model.Path)
		return nil
	})
}
