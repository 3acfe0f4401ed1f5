// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package climate

import (
	"math"
	"time"
)

// Reading represents a single temperature/humidity measurement.
// Missing values are NaN.
type Reading struct {
	Source string `json:"source"` // "dht11", "dht22", "bme280", "mock"

	TemperatureC float64   `json:"temperature_c"` // °C
	HumidityPct  float64   `json:"humidity_pct"`  // %rH
	Timestamp    time.Time `json:"timestamp"`
}

// Missing returns a Reading with both measurements absent.
func Missing(source string) Reading {
	return Reading{
		Source:       source,
		TemperatureC: math.NaN(),
		HumidityPct:  math.NaN(),
		Timestamp:    time.Now(),
	}
}

// Valid reports whether both measurements are numeric.
func (r Reading) Valid() bool {
	return isNumber(r.TemperatureC) && isNumber(r.HumidityPct)
}

func isNumber(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Telemetry is the JSON payload published for a valid reading.
type Telemetry struct {
	StationID    string    `json:"station_id"`
	Timestamp    time.Time `json:"timestamp"`
	TemperatureC float64   `json:"temperature_c"`
	HumidityPct  float64   `json:"humidity_pct"`
	Source       string    `json:"source"`
}

// NewTelemetry projects r into a Telemetry message for stationID.
func NewTelemetry(stationID string, r Reading) Telemetry {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return Telemetry{
		StationID:    stationID,
		Timestamp:    ts,
		TemperatureC: r.TemperatureC,
		HumidityPct:  r.HumidityPct,
		Source:       r.Source,
	}
}
