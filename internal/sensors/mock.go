// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/climate_display/internal/climate"
)

type mockSource struct {
	start time.Time
	polls int

	// failEvery makes every n-th poll time out; 0 never fails.
	failEvery int
}

// NewMock creates a mock sensor that generates smooth changing values
// around room conditions.
func NewMock() Poller {
	return &mockSource{start: time.Now()}
}

// NewFlakyMock is NewMock with every n-th poll failing like a DHT timeout.
func NewFlakyMock(n int) Poller {
	return &mockSource{start: time.Now(), failEvery: n}
}

func (m *mockSource) Poll() (climate.Reading, error) {
	m.polls++
	if m.failEvery > 0 && m.polls%m.failEvery == 0 {
		return climate.Missing("mock"), ErrTimeout
	}

	elapsed := time.Since(m.start).Seconds()
	return climate.Reading{
		Source:       "mock",
		TemperatureC: 22 + 3*math.Sin(elapsed/60),
		HumidityPct:  50 + 10*math.Cos(elapsed/90),
		Timestamp:    time.Now(),
	}, nil
}
