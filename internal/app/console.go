// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/relabs-tech/climate_display/internal/climate"
	"github.com/relabs-tech/climate_display/internal/config"
	"github.com/relabs-tech/climate_display/internal/telemetry"
)

// RunConsole prints every published reading to out until ctx is cancelled.
func RunConsole(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	logger = logger.With("component", "console")

	client, err := telemetry.Connect(cfg, cfg.MQTTClientIDConsole, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	err = telemetry.Subscribe(client, cfg.TopicClimate, logger, func(t climate.Telemetry) {
		fmt.Fprintln(out, formatConsoleLine(t))
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

func formatConsoleLine(t climate.Telemetry) string {
	return fmt.Sprintf("[%s] %-12s TEMP=%6.2f C  HUM=%6.2f %%  (%s)",
		t.Timestamp.Format(time.RFC3339), t.StationID, t.TemperatureC, t.HumidityPct, t.Source)
}
