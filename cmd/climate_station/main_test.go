// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/relabs-tech/climate_display/internal/app"
	"github.com/relabs-tech/climate_display/internal/config"
	"github.com/relabs-tech/climate_display/internal/display"
	"github.com/relabs-tech/climate_display/internal/sensors"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "climate_config.txt")
	content := "SENSOR_TYPE=mock\nDISPLAY_TYPE=terminal\nLOG_LEVEL=error\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRun_MissingConfig(t *testing.T) {
	boot := func(*config.Config, *slog.Logger) (*app.Devices, error) {
		t.Fatal("boot called without a config")
		return nil, nil
	}
	args := []string{"-config", filepath.Join(t.TempDir(), "nope.txt")}
	if code := run(context.Background(), args, boot); code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
}

func TestRun_BadFlag(t *testing.T) {
	if code := run(context.Background(), []string{"-nope"}, nil); code != 2 {
		t.Errorf("run() = %d, want 2", code)
	}
}

func TestRun_DisplayNotFoundReturnsFailure(t *testing.T) {
	boots := 0
	boot := func(*config.Config, *slog.Logger) (*app.Devices, error) {
		boots++
		return nil, fmt.Errorf("%w: %w", app.ErrDisplayNotFound, display.ErrNotFound)
	}

	if code := run(context.Background(), []string{"-config", writeConfig(t)}, boot); code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
	if boots != 1 {
		t.Errorf("boots = %d, want 1", boots)
	}
}

func TestRun_CancelledExitsCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	boot := func(*config.Config, *slog.Logger) (*app.Devices, error) {
		return &app.Devices{Sensor: sensors.NewMock(), Screen: display.NewTerminal(io.Discard)}, nil
	}

	if code := run(ctx, []string{"-config", writeConfig(t)}, boot); code != 0 {
		t.Errorf("run() = %d, want 0", code)
	}
}
