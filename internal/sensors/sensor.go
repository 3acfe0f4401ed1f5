// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/bmxx80"

	"github.com/relabs-tech/climate_display/internal/climate"
	"github.com/relabs-tech/climate_display/internal/config"
)

var (
	// ErrTimeout means the sensor did not answer within its timing window.
	ErrTimeout = errors.New("sensor timeout")
	// ErrChecksum means the sensor answered with a corrupt frame.
	ErrChecksum = errors.New("sensor checksum mismatch")
)

// Poller defines the interface for reading temperature and humidity.
// A failed poll returns a reading whose missing fields are NaN together
// with the error.
type Poller interface {
	Poll() (climate.Reading, error)
}

// Open creates the sensor selected by cfg.SensorType. The periph host must
// already be initialized; bus is only used by I²C sensors.
func Open(cfg *config.Config, bus i2c.Bus, logger *slog.Logger) (Poller, error) {
	switch cfg.SensorType {
	case config.SensorDHT11, config.SensorDHT22:
		pin := gpioreg.ByName(cfg.DHTPin)
		if pin == nil {
			return nil, fmt.Errorf("DHT pin %q not found", cfg.DHTPin)
		}
		model := DHT11
		if cfg.SensorType == config.SensorDHT22 {
			model = DHT22
		}
		dev, err := NewDHT(pin, model)
		if err != nil {
			return nil, err
		}
		logger.Info("sensor initialized", "type", model, "pin", pin.Name())
		return dev, nil

	case config.SensorBME280:
		if bus == nil {
			return nil, errors.New("bme280: no I2C bus")
		}
		dev, err := bmxx80.NewI2C(bus, cfg.BME280I2CAddr, &bmxx80.DefaultOpts)
		if err != nil {
			return nil, fmt.Errorf("bme280 init at 0x%02X: %w", cfg.BME280I2CAddr, err)
		}
		logger.Info("sensor initialized", "type", "bme280", "addr", fmt.Sprintf("0x%02X", cfg.BME280I2CAddr))
		return NewEnvSensor(config.SensorBME280, dev), nil

	case config.SensorMock:
		logger.Info("sensor initialized", "type", "mock", "fail_every", cfg.MockFailEvery)
		if cfg.MockFailEvery > 0 {
			return NewFlakyMock(cfg.MockFailEvery), nil
		}
		return NewMock(), nil

	default:
		return nil, fmt.Errorf("unknown sensor type: %s", cfg.SensorType)
	}
}
