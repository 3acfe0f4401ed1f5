// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/relabs-tech/climate_display/internal/climate"
)

// Model selects the DHT variant. Both share the single-wire protocol but
// differ in start pulse, sampling rate and data encoding.
type Model int

const (
	DHT11 Model = iota
	DHT22
)

func (m Model) String() string {
	if m == DHT22 {
		return "dht22"
	}
	return "dht11"
}

// startHold is how long the host pulls the line low to wake the sensor.
func (m Model) startHold() time.Duration {
	if m == DHT22 {
		return 1100 * time.Microsecond
	}
	return 18 * time.Millisecond
}

// minInterval is the sensor's minimum time between conversions.
func (m Model) minInterval() time.Duration {
	if m == DHT22 {
		return 2 * time.Second
	}
	return time.Second
}

const (
	frameBits = 40
	// edgeTimeout bounds every level phase; the longest one lasts ~80µs.
	edgeTimeout = time.Millisecond
)

// DHT reads a DHT11/DHT22 sensor through one GPIO line.
type DHT struct {
	mu    sync.Mutex
	pin   gpio.PinIO
	model Model

	lastRead    time.Time
	minInterval time.Duration
	edgeTimeout time.Duration
}

// NewDHT takes ownership of pin and leaves it as a pulled-up input, the
// bus idle state.
func NewDHT(pin gpio.PinIO, model Model) (*DHT, error) {
	if pin == nil {
		return nil, errors.New("dht: nil pin")
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("dht: set %s as input: %w", pin, err)
	}
	return &DHT{
		pin:         pin,
		model:       model,
		minInterval: model.minInterval(),
		edgeTimeout: edgeTimeout,
	}, nil
}

// Poll runs one conversion. Polls arriving faster than the sensor's
// sampling rate wait for it. Failures are not retried.
func (d *DHT) Poll() (climate.Reading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.lastRead.IsZero() {
		if wait := d.minInterval - time.Since(d.lastRead); wait > 0 {
			time.Sleep(wait)
		}
	}

	lows, highs, err := d.transact()
	d.lastRead = time.Now()
	if err != nil {
		return climate.Missing(d.model.String()), fmt.Errorf("%s: %w", d.model, err)
	}

	frame, err := decodeFrame(lows, highs)
	if err != nil {
		return climate.Missing(d.model.String()), fmt.Errorf("%s: %w", d.model, err)
	}

	temp, hum := d.model.convert(frame)
	return climate.Reading{
		Source:       d.model.String(),
		TemperatureC: temp,
		HumidityPct:  hum,
		Timestamp:    d.lastRead,
	}, nil
}

func (d *DHT) String() string {
	return fmt.Sprintf("%s{%s}", d.model, d.pin)
}

// Halt returns the line to its idle state.
func (d *DHT) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pin.In(gpio.PullUp, gpio.NoEdge)
}

// transact sends the start pulse and samples the 40 bit answer. It returns
// the duration of the low and high phase of every bit.
func (d *DHT) transact() ([]time.Duration, []time.Duration, error) {
	// Keep the sampling loop on one thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := d.pin.Out(gpio.Low); err != nil {
		return nil, nil, fmt.Errorf("start pulse: %w", err)
	}
	time.Sleep(d.model.startHold())
	if err := d.pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, nil, fmt.Errorf("release line: %w", err)
	}

	// Pull-up delay, then the sensor's 80µs low / 80µs high response.
	for _, level := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
		if _, err := d.measure(level); err != nil {
			return nil, nil, fmt.Errorf("response: %w", err)
		}
	}

	lows := make([]time.Duration, frameBits)
	highs := make([]time.Duration, frameBits)
	for i := 0; i < frameBits; i++ {
		var err error
		if lows[i], err = d.measure(gpio.Low); err != nil {
			return nil, nil, fmt.Errorf("bit %d: %w", i, err)
		}
		if highs[i], err = d.measure(gpio.High); err != nil {
			return nil, nil, fmt.Errorf("bit %d: %w", i, err)
		}
	}
	return lows, highs, nil
}

// measure busy-waits while the line holds level and returns for how long.
func (d *DHT) measure(level gpio.Level) (time.Duration, error) {
	start := time.Now()
	for d.pin.Read() == level {
		if elapsed := time.Since(start); elapsed > d.edgeTimeout {
			return elapsed, ErrTimeout
		}
	}
	return time.Since(start), nil
}

// decodeFrame turns per-bit pulse widths into the 5 byte frame and checks
// its checksum. A bit is 1 when its high phase outlasts its 50µs low phase
// (~70µs for 1, ~27µs for 0).
func decodeFrame(lows, highs []time.Duration) ([5]byte, error) {
	var frame [5]byte
	if len(lows) != frameBits || len(highs) != frameBits {
		return frame, fmt.Errorf("short frame: %d bits", min(len(lows), len(highs)))
	}
	for i := 0; i < frameBits; i++ {
		frame[i/8] <<= 1
		if highs[i] > lows[i] {
			frame[i/8] |= 1
		}
	}
	if sum := frame[0] + frame[1] + frame[2] + frame[3]; sum != frame[4] {
		return frame, fmt.Errorf("%w: got 0x%02X, want 0x%02X", ErrChecksum, frame[4], sum)
	}
	return frame, nil
}

// convert decodes a checked frame into °C and %rH.
func (m Model) convert(f [5]byte) (float64, float64) {
	if m == DHT22 {
		hum := float64(uint16(f[0])<<8|uint16(f[1])) / 10
		temp := float64(uint16(f[2]&0x7F)<<8|uint16(f[3])) / 10
		if f[2]&0x80 != 0 {
			temp = -temp
		}
		return temp, hum
	}

	hum := float64(f[0]) + float64(f[1])/10
	temp := float64(f[2]) + float64(f[3]&0x0F)/10
	if f[3]&0x80 != 0 {
		temp = -temp
	}
	return temp, hum
}
