// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/climate_display/internal/app"
	"github.com/relabs-tech/climate_display/internal/config"
	"github.com/relabs-tech/climate_display/internal/logging"
	"github.com/relabs-tech/climate_display/internal/telemetry"
)

var version = "dev"
var appName = "climate-station"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], app.BootPeriph)
	stop()
	os.Exit(code)
}

// run returns the process exit code once every deferred release has run.
func run(ctx context.Context, args []string, boot app.BootFunc) int {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	configPath := fs.String("config", "./climate_config.txt", "path to configuration file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}

	out, closer, err := logging.Output(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "diagnostic port: %v\n", err)
		return 1
	}
	defer closer.Close()

	logger := logging.New(cfg, out, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"sensor", cfg.SensorType,
		"display", cfg.DisplayType,
		"interval", cfg.UpdateInterval(),
	)

	var pub app.Publisher
	if cfg.MQTTBroker != "" {
		client, err := telemetry.Connect(cfg, cfg.MQTTClientIDStation, logger)
		if err != nil {
			// The display loop does not depend on the broker.
			slog.Warn("telemetry disabled", "err", err)
		} else {
			p := telemetry.NewPublisher(client, cfg, logger)
			defer p.Close()
			pub = p
		}
	}

	if err := app.Supervise(ctx, cfg, boot, pub, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("station stopped", "err", err)
		return 1
	}

	slog.Info("shutting down")
	return 0
}
