// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"math"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio/gpiotest"
)

const (
	lowPhase = 50 * time.Microsecond
	zeroHigh = 27 * time.Microsecond
	oneHigh  = 70 * time.Microsecond
)

// pulses encodes frame the way the sensor clocks it out.
func pulses(frame [5]byte) ([]time.Duration, []time.Duration) {
	lows := make([]time.Duration, 0, frameBits)
	highs := make([]time.Duration, 0, frameBits)
	for _, b := range frame {
		for bit := 7; bit >= 0; bit-- {
			lows = append(lows, lowPhase)
			if b&(1<<bit) != 0 {
				highs = append(highs, oneHigh)
			} else {
				highs = append(highs, zeroHigh)
			}
		}
	}
	return lows, highs
}

func withChecksum(b0, b1, b2, b3 byte) [5]byte {
	return [5]byte{b0, b1, b2, b3, b0 + b1 + b2 + b3}
}

func TestDecodeFrame(t *testing.T) {
	want := withChecksum(55, 0, 23, 5)
	lows, highs := pulses(want)

	got, err := decodeFrame(lows, highs)
	if err != nil {
		t.Fatalf("decodeFrame() error = %v", err)
	}
	if got != want {
		t.Errorf("decodeFrame() = % X, want % X", got, want)
	}
}

func TestDecodeFrame_Checksum(t *testing.T) {
	frame := withChecksum(55, 0, 23, 5)
	frame[4]++
	lows, highs := pulses(frame)

	_, err := decodeFrame(lows, highs)
	if !errors.Is(err, ErrChecksum) {
		t.Fatalf("decodeFrame() error = %v, want ErrChecksum", err)
	}
}

func TestDecodeFrame_Short(t *testing.T) {
	lows, highs := pulses(withChecksum(1, 2, 3, 4))
	if _, err := decodeFrame(lows[:39], highs[:39]); err == nil {
		t.Fatal("decodeFrame() error = nil for 39 bits")
	}
}

func TestModelConvert(t *testing.T) {
	tests := []struct {
		name     string
		model    Model
		frame    [5]byte
		wantTemp float64
		wantHum  float64
	}{
		{name: "dht11 integral", model: DHT11, frame: withChecksum(55, 0, 23, 0), wantTemp: 23, wantHum: 55},
		{name: "dht11 tenths", model: DHT11, frame: withChecksum(55, 0, 23, 5), wantTemp: 23.5, wantHum: 55},
		{name: "dht11 negative", model: DHT11, frame: withChecksum(40, 0, 2, 0x83), wantTemp: -2.3, wantHum: 40},
		// 0x0226 = 550 -> 55.0 %, 0x00EB = 235 -> 23.5 °C
		{name: "dht22 positive", model: DHT22, frame: withChecksum(0x02, 0x26, 0x00, 0xEB), wantTemp: 23.5, wantHum: 55},
		// 0x8065 = -10.1 °C
		{name: "dht22 negative", model: DHT22, frame: withChecksum(0x02, 0x8A, 0x80, 0x65), wantTemp: -10.1, wantHum: 65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			temp, hum := tt.model.convert(tt.frame)
			if math.Abs(temp-tt.wantTemp) > 1e-9 {
				t.Errorf("temperature = %v, want %v", temp, tt.wantTemp)
			}
			if math.Abs(hum-tt.wantHum) > 1e-9 {
				t.Errorf("humidity = %v, want %v", hum, tt.wantHum)
			}
		})
	}
}

func TestModelTiming(t *testing.T) {
	if DHT11.minInterval() != time.Second || DHT22.minInterval() != 2*time.Second {
		t.Errorf("minInterval = %v/%v, want 1s/2s", DHT11.minInterval(), DHT22.minInterval())
	}
	if DHT11.startHold() < 18*time.Millisecond {
		t.Errorf("DHT11 start pulse %v shorter than 18ms", DHT11.startHold())
	}
	if DHT11.String() != "dht11" || DHT22.String() != "dht22" {
		t.Errorf("String() = %q/%q", DHT11, DHT22)
	}
}

func TestNewDHT_NilPin(t *testing.T) {
	if _, err := NewDHT(nil, DHT11); err == nil {
		t.Fatal("NewDHT(nil) error = nil")
	}
}

func TestDHTPoll_NoSensor(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO4", Num: 4}
	dev, err := NewDHT(pin, DHT11)
	if err != nil {
		t.Fatalf("NewDHT() error = %v", err)
	}

	r, err := dev.Poll()
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Poll() error = %v, want ErrTimeout", err)
	}
	if r.Valid() {
		t.Errorf("Poll() reading = %+v, want missing values", r)
	}
	if r.Source != "dht11" {
		t.Errorf("Source = %q, want dht11", r.Source)
	}
}

func TestDHTPoll_RespectsSamplingInterval(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO4", Num: 4}
	dev, err := NewDHT(pin, DHT11)
	if err != nil {
		t.Fatalf("NewDHT() error = %v", err)
	}
	dev.minInterval = 60 * time.Millisecond

	dev.Poll()
	first := dev.lastRead
	dev.Poll()
	if gap := dev.lastRead.Sub(first); gap < dev.minInterval {
		t.Errorf("second transaction %v after the first, want >= %v", gap, dev.minInterval)
	}
}

func TestDHTHalt(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO4", Num: 4}
	dev, err := NewDHT(pin, DHT22)
	if err != nil {
		t.Fatalf("NewDHT() error = %v", err)
	}
	if err := dev.Halt(); err != nil {
		t.Errorf("Halt() error = %v", err)
	}
	if dev.String() == "" {
		t.Error("String() is empty")
	}
}
