package monitoring

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"

	coremon "github.com/kilianp07/commutecarbon/core/monitoring"
)

// SentryConfig selects where CLI failures are reported. Environment
// defaults to APP_ENV, Release to "commutecarbon".
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
}

func (c SentryConfig) options() sentry.ClientOptions {
	env := c.Environment
	if env == "" {
		env = os.Getenv("APP_ENV")
	}
	release := c.Release
	if release == "" {
		release = "commutecarbon"
	}
	return sentry.ClientOptions{
		Dsn:              c.DSN,
		Environment:      env,
		Release:          release,
		TracesSampleRate: c.TracesSampleRate,
		AttachStacktrace: true,
	}
}

// NewSentryMonitor initializes Sentry and returns a Monitor reporting to it.
// An empty DSN yields a NopMonitor.
func NewSentryMonitor(cfg SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	err := sentry.Init(cfg.options())
	if err != nil {
		return nil, fmt.Errorf("sentry init: %w", err)
	}
	return &sentryMonitor{}, nil
}

type sentryMonitor struct{}

func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	if len(tags) == 0 {
		sentry.CaptureException(err)
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

func (s *sentryMonitor) CapturePanic(v any) {
	sentry.CurrentHub().Recover(v)
}

func (s *sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }
