// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/relabs-tech/climate_display/internal/climate"
)

// EnvSensor adapts any periph environmental sensor (BME280 and friends)
// to Poller.
type EnvSensor struct {
	name string
	dev  physic.SenseEnv
}

// NewEnvSensor wraps dev; name ends up in Reading.Source.
func NewEnvSensor(name string, dev physic.SenseEnv) *EnvSensor {
	return &EnvSensor{name: name, dev: dev}
}

// Poll reads temperature and humidity from the device.
func (s *EnvSensor) Poll() (climate.Reading, error) {
	var e physic.Env
	if err := s.dev.Sense(&e); err != nil {
		return climate.Missing(s.name), fmt.Errorf("%s sense: %w", s.name, err)
	}

	return climate.Reading{
		Source:       s.name,
		TemperatureC: e.Temperature.Celsius(),
		HumidityPct:  float64(e.Humidity) / float64(physic.PercentRH),
		Timestamp:    time.Now(),
	}, nil
}

func (s *EnvSensor) String() string {
	return s.dev.String()
}

// Halt stops the underlying device.
func (s *EnvSensor) Halt() error {
	return s.dev.Halt()
}
