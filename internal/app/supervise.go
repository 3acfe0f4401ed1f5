// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/relabs-tech/climate_display/internal/config"
)

// Supervise runs the station. Init failures either end the run or, when
// cfg.InitRetryInterval is set, are retried after that interval. Once the
// station runs it owns the devices until ctx is cancelled.
func Supervise(ctx context.Context, cfg *config.Config, boot BootFunc, publisher Publisher, logger *slog.Logger) error {
	for attempt := 1; ; attempt++ {
		devs, err := boot(cfg, logger)
		if err == nil {
			station := NewStation(devs.Sensor, devs.Screen, publisher, cfg.UpdateInterval(), logger)
			runErr := station.Run(ctx)
			if err := devs.Close(); err != nil {
				logger.Warn("error releasing devices", "err", err)
			}
			return runErr
		}

		if errors.Is(err, ErrDisplayNotFound) {
			logger.Error("OLED NOT FOUND", "attempt", attempt, "err", err)
		} else {
			logger.Error("init failed", "attempt", attempt, "err", err)
		}

		retry := cfg.RetryInterval()
		if retry <= 0 {
			return err
		}
		logger.Info("retrying init", "in", retry)

		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

