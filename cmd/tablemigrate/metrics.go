package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"tablemigrate/internal/config"
	"tablemigrate/internal/metrics"
	"tablemigrate/internal/metrics/datadog"
	"tablemigrate/internal/metrics/prompush"
)

// setupMetrics installs the configured metrics backend and returns the
// function that flushes it when the command is done. A configured backend
// that cannot be set up fails the command.
func setupMetrics(cfg *config.Run, log logrus.FieldLogger) (func(), error) {
	var (
		b   metrics.Backend
		err error
	)
	name := strings.ToLower(cfg.Metrics.Backend)
	switch name {
	case "prometheus":
		b, err = prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			Namespace:  "tablemigrate.",
			GlobalTags: []string{"job:" + cfg.Job},
		})
	case "", "none":
		log.Debug("metrics: disabled")
		return func() {}, nil
	default:
		return nil, fmt.Errorf("metrics: unknown backend %q (want prometheus, datadog or none)", cfg.Metrics.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("metrics: %s: %w", name, err)
	}

	log.WithFields(logrus.Fields{"backend": cfg.Metrics.Backend, "job": cfg.Job}).Info("metrics: enabled")
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.WithError(err).Warn("metrics: flush failed")
		}
	}, nil
}
