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
)

var version = "dev"
var appName = "climate-web"

func main() {
	configPath := flag.String("config", "./climate_config.txt", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.MQTTBroker == "" {
		fmt.Fprintln(os.Stderr, "config error: MQTT_BROKER is required")
		os.Exit(1)
	}

	logger := logging.New(cfg, os.Stderr, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting web server (MQTT subscriber)", "port", cfg.WebServerPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunWeb(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("web server stopped", "err", err)
		os.Exit(1)
	}

	slog.Info("shutting down")
}
