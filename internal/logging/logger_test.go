// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/climate_display/internal/config"
)

func TestNew_ProdWritesJSON(t *testing.T) {
	cfg := config.Default()
	cfg.AppEnv = "prod"
	cfg.StationID = "bench"

	var buf bytes.Buffer
	logger := New(cfg, &buf, "1.2.3", "climate-station")
	logger.Warn("Failed to read from DHT!", "err", "timeout")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	want := map[string]string{
		"msg":        "Failed to read from DHT!",
		"level":      "WARN",
		"app":        "climate-station",
		"version":    "1.2.3",
		"env":        "prod",
		"station_id": "bench",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %q", k, got[k], v)
		}
	}
}

func TestNew_DevWritesText(t *testing.T) {
	cfg := config.Default()

	var buf bytes.Buffer
	logger := New(cfg, &buf, "dev", "climate-station")
	logger.Error("OLED NOT FOUND")

	if !strings.Contains(buf.String(), "OLED NOT FOUND") {
		t.Errorf("output %q does not contain the message", buf.String())
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	cfg := config.Default()
	cfg.AppEnv = "prod"

	var buf bytes.Buffer
	New(cfg, &buf, "1.0.0", "climate-station").Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug line written at info level: %q", buf.String())
	}
}

type fakePort struct {
	bytes.Buffer
	closed bool
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestOutput(t *testing.T) {
	t.Run("stderr only", func(t *testing.T) {
		w, closer, err := Output(config.Default())
		if err != nil {
			t.Fatalf("Output() error = %v", err)
		}
		if w == nil || closer == nil {
			t.Fatal("Output() returned nil writer or closer")
		}
		if err := closer.Close(); err != nil {
			t.Errorf("Close() = %v", err)
		}
	})

	t.Run("serial mirror", func(t *testing.T) {
		port := &fakePort{}
		var gotOpts serial.OpenOptions
		serialOpen = func(o serial.OpenOptions) (io.ReadWriteCloser, error) {
			gotOpts = o
			return port, nil
		}
		t.Cleanup(func() { serialOpen = serial.Open })

		cfg := config.Default()
		cfg.DiagSerialPort = "/dev/serial0"

		w, closer, err := Output(cfg)
		if err != nil {
			t.Fatalf("Output() error = %v", err)
		}
		if gotOpts.PortName != "/dev/serial0" || gotOpts.BaudRate != 9600 {
			t.Errorf("opened %s@%d, want /dev/serial0@9600", gotOpts.PortName, gotOpts.BaudRate)
		}
		if _, err := io.WriteString(w, "Failed to read from DHT!\n"); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if got := port.String(); got != "Failed to read from DHT!\r\n" {
			t.Errorf("serial got %q", got)
		}
		closer.Close()
		if !port.closed {
			t.Error("serial port not closed")
		}
	})

	t.Run("serial open failure", func(t *testing.T) {
		serialOpen = func(serial.OpenOptions) (io.ReadWriteCloser, error) {
			return nil, errors.New("no such device")
		}
		t.Cleanup(func() { serialOpen = serial.Open })

		cfg := config.Default()
		cfg.DiagSerialPort = "/dev/ttyUSB9"
		if _, _, err := Output(cfg); err == nil {
			t.Fatal("Output() error = nil, want error")
		}
	})
}
