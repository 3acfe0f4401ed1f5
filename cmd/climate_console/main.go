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
var appName = "climate-console"

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

	// Readings go to stdout, logs to stderr.
	logger := logging.New(cfg, os.Stderr, version, appName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunConsole(ctx, cfg, os.Stdout, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("console stopped", "err", err)
		os.Exit(1)
	}
}
