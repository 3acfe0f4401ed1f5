// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package logging

import (
	"fmt"
	"io"
	"os"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/climate_display/internal/config"
)

// serialOpen is swapped in tests.
var serialOpen = serial.Open

// Output returns the writer diagnostics go to: stderr, plus the
// diagnostic UART when DIAG_SERIAL_PORT is set. The returned closer
// releases the UART and is never nil.
func Output(cfg *config.Config) (io.Writer, io.Closer, error) {
	if cfg.DiagSerialPort == "" {
		return os.Stderr, io.NopCloser(nil), nil
	}

	port, err := serialOpen(serial.OpenOptions{
		PortName:              cfg.DiagSerialPort,
		BaudRate:              uint(cfg.DiagSerialBaud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open diagnostic port %s: %w", cfg.DiagSerialPort, err)
	}

	return io.MultiWriter(os.Stderr, &crlfWriter{w: port}), port, nil
}

// crlfWriter turns "\n" into "\r\n" for serial terminals.
type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	out := make([]byte, 0, len(p)+8)
	for _, b := range p {
		if b == '\n' {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	if _, err := c.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
