// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/climate_display/internal/config"
	"github.com/relabs-tech/climate_display/internal/display"
	"github.com/relabs-tech/climate_display/internal/sensors"
)

// openSensor is swapped in tests.
var openSensor = sensors.Open

// Devices are the handles brought up during init.
type Devices struct {
	Sensor sensors.Poller
	Screen Screen

	closers []func() error
}

// Close releases the devices in reverse order of acquisition.
func (d *Devices) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

// BootFunc brings the station hardware up once.
type BootFunc func(cfg *config.Config, logger *slog.Logger) (*Devices, error)

// BootPeriph initializes the periph host, the I²C bus when a device needs
// it, the sensor and the display.
func BootPeriph(cfg *config.Config, logger *slog.Logger) (*Devices, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}

	var bus i2c.BusCloser
	if cfg.DisplayType == config.DisplaySSD1306 || cfg.SensorType == config.SensorBME280 {
		var err error
		if bus, err = i2creg.Open(cfg.I2CBus); err != nil {
			return nil, busOpenError(cfg, err)
		}
	}

	devs, err := bootDevices(cfg, bus, os.Stdout, logger)
	if err != nil {
		if bus != nil {
			bus.Close()
		}
		return nil, err
	}
	if bus != nil {
		devs.closers = append([]func() error{bus.Close}, devs.closers...)
	}
	return devs, nil
}

// busOpenError reports a bus that would not open. Without a bus the panel
// cannot answer either, so it counts as a missing display when one is
// configured.
func busOpenError(cfg *config.Config, err error) error {
	if cfg.DisplayType == config.DisplaySSD1306 {
		return fmt.Errorf("%w: failed to open I2C bus: %w", ErrDisplayNotFound, err)
	}
	return fmt.Errorf("failed to open I2C bus: %w", err)
}

// bootDevices brings up the sensor, then the display. Terminal frames go
// to out.
func bootDevices(cfg *config.Config, bus i2c.Bus, out io.Writer, logger *slog.Logger) (*Devices, error) {
	sensor, err := openSensor(cfg, bus, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sensor: %w", err)
	}

	devs := &Devices{Sensor: sensor}
	if h, ok := sensor.(interface{ Halt() error }); ok {
		devs.closers = append(devs.closers, h.Halt)
	}

	if cfg.DisplayType == config.DisplayTerminal {
		term := display.NewTerminal(out)
		devs.Screen = term
		devs.closers = append(devs.closers, term.Halt)
		logger.Info("display initialized", "type", config.DisplayTerminal)
		return devs, nil
	}

	if bus == nil {
		devs.Close()
		return nil, fmt.Errorf("%w: no I2C bus", ErrDisplayNotFound)
	}
	screen, err := display.Open(bus, display.Opts{
		W: cfg.DisplayWidth,
		H: cfg.DisplayHeight,
	})
	if err != nil {
		devs.Close()
		return nil, fmt.Errorf("%w: %w", ErrDisplayNotFound, err)
	}
	logger.Info("display initialized", "type", config.DisplaySSD1306, "addr", fmt.Sprintf("0x%02X", display.Addr))

	if err := screen.Splash("Climate OLED", "OLED with I2C"); err != nil {
		logger.Warn("error showing splash", "err", err)
	}

	devs.Screen = screen
	devs.closers = append(devs.closers, screen.Halt)
	return devs, nil
}
