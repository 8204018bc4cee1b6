package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kilianp07/commutecarbon/app"
	"github.com/kilianp07/commutecarbon/config"
	"github.com/kilianp07/commutecarbon/core/model"
	coremon "github.com/kilianp07/commutecarbon/core/monitoring"
	"github.com/kilianp07/commutecarbon/infra/logger"
	"github.com/kilianp07/commutecarbon/infra/monitoring"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "commutecarbon",
	Short:        "Commute CO2 emissions predictor",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		// stdout carries command results.
		logger.SetOutput(cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI. Unexpected failures are reported to the configured
// monitor; bad input and missing data are only returned to the caller.
func Execute() error {
	defer coremon.Flush(2 * time.Second)
	defer coremon.Recover()
	c, err := rootCmd.ExecuteC()
	if reportable(err) {
		if c == nil {
			c = rootCmd
		}
		coremon.CaptureException(err, map[string]string{"command": c.CommandPath()})
	}
	return err
}

// reportable tells whether err is worth an error-tracker event.
func reportable(err error) bool {
	if err == nil {
		return false
	}
	var (
		ve *model.ValidationError
		ie *model.InsufficientDataError
		de *model.DegenerateFeatureError
		ce *model.CorruptArtifactError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &ie), errors.As(err, &de), errors.As(err, &ce):
		return false
	case errors.Is(err, app.ErrRunNotFound), errors.Is(err, fs.ErrNotExist):
		return false
	}
	return true
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		logger.New("main").Warnf("error monitoring disabled: %v", err)
	} else {
		coremon.Init(mon)
	}
	return cfg, nil
}

// withService builds the pipeline service for cfg, runs fn and closes the
// service.
func withService(cfg *config.Config, fn func(*app.Service) error) error {
	svc, err := app.New(cfg, logger.New("pipeline"))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(context.Background()); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return fn(svc)
}
