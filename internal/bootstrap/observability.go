package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/blackboxsec/blackbox/config"
	"github.com/blackboxsec/blackbox/internal/observability/notify/pagerduty"
	"github.com/blackboxsec/blackbox/internal/observability/notify/slack"
	"github.com/blackboxsec/blackbox/internal/observability/statsd"
	"github.com/blackboxsec/blackbox/internal/service/failurenotifier"
)

// buildObservability constructs the StatsD client and the failure notifier
// from config. Both come back usable even when disabled; a disabled client
// drops metrics and a notifier without sinks reports Enabled() == false.
func buildObservability(cfg *config.AppConfig, logger *slog.Logger) (*statsd.Client, *failurenotifier.Service, error) {
	metricsCfg := cfg.Observability.Metrics
	metricsClient, err := statsd.NewClient(statsd.Config{
		Enabled: metricsCfg.IsEnabled(),
		Address: metricsCfg.StatsdAddress,
		Prefix:  metricsCfg.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build statsd client: %w", err)
	}

	notifCfg := cfg.Observability.Notifications
	var sinks []failurenotifier.SinkRegistration

	if notifCfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: notifCfg.Slack.WebhookURL,
			Channel:    notifCfg.Slack.Channel,
			Username:   notifCfg.Slack.Username,
			Timeout:    notifCfg.Timeout,
			RetryLimit: notifCfg.RetryLimit,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build slack sink: %w", err)
		}
		sinks = append(sinks, failurenotifier.SinkRegistration{Name: "slack", Sink: client})
	}

	if notifCfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: notifCfg.PagerDuty.RoutingKey,
			Source:     notifCfg.PagerDuty.Source,
			Component:  notifCfg.PagerDuty.Component,
			Timeout:    notifCfg.Timeout,
			RetryLimit: notifCfg.RetryLimit,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build pagerduty sink: %w", err)
		}
		sinks = append(sinks, failurenotifier.SinkRegistration{Name: "pagerduty", Sink: client})
	}

	notifier := failurenotifier.NewService(failurenotifier.Options{
		Logger: logger,
		Sinks:  sinks,
	})

	logger.Info("observability configured",
		"metrics_enabled", metricsClient.Enabled(),
		"failure_sinks", len(sinks))

	return metricsClient, notifier, nil
}
