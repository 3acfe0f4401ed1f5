// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/relabs-tech/climate_display/internal/climate"
	"github.com/relabs-tech/climate_display/internal/display"
	"github.com/relabs-tech/climate_display/internal/sensors"
)

// ErrDisplayNotFound is returned when the station cannot start because the
// panel did not answer. Nothing is polled after it.
var ErrDisplayNotFound = errors.New("OLED NOT FOUND")

// State is the station's lifecycle state.
type State int

const (
	StateInit State = iota
	StateRunning
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Screen is the part of the display the loop draws on.
type Screen interface {
	Clear()
	DrawText(pos image.Point, text string)
	Flush() error
}

// Publisher receives every reading that made it to the screen.
type Publisher interface {
	Publish(r climate.Reading) error
}

// Text layout. Baselines for the 7x13 face.
var (
	tempLabelPos = image.Pt(0, display.LineHeight)
	tempValuePos = image.Pt(42, display.LineHeight)
	humPos       = image.Pt(0, 3*display.LineHeight)
)

// Station runs the poll/draw/wait loop over one sensor and one screen.
type Station struct {
	sensor    sensors.Poller
	screen    Screen
	publisher Publisher
	interval  time.Duration
	logger    *slog.Logger

	state State
}

// NewStation wires the devices brought up during init. publisher may be nil.
func NewStation(sensor sensors.Poller, screen Screen, publisher Publisher, interval time.Duration, logger *slog.Logger) *Station {
	return &Station{
		sensor:    sensor,
		screen:    screen,
		publisher: publisher,
		interval:  interval,
		logger:    logger.With("component", "station"),
		state:     StateInit,
	}
}

// State reports where the station is in its lifecycle.
func (s *Station) State() State {
	return s.state
}

// Run loops until ctx is cancelled. A failed poll skips straight to the
// next poll; a drawn reading is followed by the update interval.
func (s *Station) Run(ctx context.Context) error {
	s.state = StateRunning
	defer func() { s.state = StateHalted }()
	s.logger.Info("starting update loop", "interval", s.interval)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !s.Cycle() {
			continue
		}

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Cycle polls once and draws the reading if it is complete. It reports
// whether the screen was updated.
func (s *Station) Cycle() bool {
	r, err := s.sensor.Poll()
	if err != nil || !r.Valid() {
		s.logger.Warn("Failed to read from DHT!", "source", r.Source, "err", err)
		return false
	}

	s.logger.Debug("reading",
		"temperature_c", r.TemperatureC,
		"humidity_pct", r.HumidityPct,
	)

	s.screen.Clear()
	s.screen.DrawText(tempLabelPos, "Temp:")
	s.screen.DrawText(tempValuePos, FormatTemperature(r.TemperatureC))
	s.screen.DrawText(humPos, FormatHumidity(r.HumidityPct))
	if err := s.screen.Flush(); err != nil {
		s.logger.Error("display update failed", "err", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(r); err != nil {
			s.logger.Warn("telemetry publish failed", "err", err)
		}
	}
	return true
}

// FormatTemperature renders the value line shown after "Temp:".
func FormatTemperature(c float64) string {
	return fmt.Sprintf("%.2f C", c)
}

// FormatHumidity renders the humidity line.
func FormatHumidity(pct float64) string {
	return fmt.Sprintf("Hum:%.2f %%", pct)
}
