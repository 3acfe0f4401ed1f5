// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Sensor types accepted by SENSOR_TYPE.
const (
	SensorDHT11  = "dht11"
	SensorDHT22  = "dht22"
	SensorBME280 = "bme280"
	SensorMock   = "mock"
)

// Display types accepted by DISPLAY_TYPE.
const (
	DisplaySSD1306  = "ssd1306"
	DisplayTerminal = "terminal"
)

// SSD1306Addr is the only panel address the periph ssd1306 driver uses.
const SSD1306Addr = 0x3C

// Config holds all application configuration values.
type Config struct {
	// Runtime
	AppEnv    string
	LogLevel  slog.Level
	StationID string

	// Sensor
	SensorType    string
	DHTPin        string
	BME280I2CAddr uint16
	MockFailEvery int // mock sensor: every n-th poll fails, 0 never

	// Display
	DisplayType           string
	I2CBus                string // periph bus name, "" selects the default bus
	DisplayI2CAddr        uint16
	DisplayWidth          int
	DisplayHeight         int
	DisplayUpdateInterval int // milliseconds
	InitRetryInterval     int // milliseconds, 0 exits on init failure

	// MQTT
	MQTTBroker          string // empty disables telemetry publishing
	MQTTClientIDStation string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string
	TopicClimate        string

	// Web Server
	WebServerPort int

	// Diagnostics UART
	DiagSerialPort string
	DiagSerialBaud int
}

// Default returns the configuration used when a key is absent from the file.
func Default() *Config {
	return &Config{
		AppEnv:    "dev",
		LogLevel:  slog.LevelInfo,
		StationID: "climate-1",

		SensorType:    SensorDHT11,
		DHTPin:        "GPIO4",
		BME280I2CAddr: 0x76,

		DisplayType:           DisplaySSD1306,
		DisplayI2CAddr:        SSD1306Addr,
		DisplayWidth:          128,
		DisplayHeight:         64,
		DisplayUpdateInterval: 2000,

		MQTTClientIDStation: "climate-station",
		MQTTClientIDConsole: "climate-console",
		MQTTClientIDWeb:     "climate-web",
		TopicClimate:        "climate/reading",

		WebServerPort: 8080,

		DiagSerialBaud: 9600,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UpdateInterval is the fixed wait after each successful draw.
func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(c.DisplayUpdateInterval) * time.Millisecond
}

// RetryInterval is the wait between init attempts; zero means no retry.
func (c *Config) RetryInterval() time.Duration {
	return time.Duration(c.InitRetryInterval) * time.Millisecond
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Runtime
	case "APP_ENV":
		c.AppEnv = value
	case "LOG_LEVEL":
		level, err := parseLogLevel(value)
		if err != nil {
			return err
		}
		c.LogLevel = level
	case "STATION_ID":
		c.StationID = value

	// Sensor
	case "SENSOR_TYPE":
		c.SensorType = strings.ToLower(value)
	case "DHT_PIN":
		c.DHTPin = value
	case "MOCK_FAIL_EVERY":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MOCK_FAIL_EVERY %q: %w", value, err)
		}
		c.MockFailEvery = n
	case "BME280_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid BME280_I2C_ADDR %q: %w", value, err)
		}
		c.BME280I2CAddr = uint16(addr)

	// Display
	case "DISPLAY_TYPE":
		c.DisplayType = strings.ToLower(value)
	case "I2C_BUS":
		c.I2CBus = value
	case "DISPLAY_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayI2CAddr = uint16(addr)
	case "DISPLAY_WIDTH":
		w, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_WIDTH %q: %w", value, err)
		}
		c.DisplayWidth = w
	case "DISPLAY_HEIGHT":
		h, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_HEIGHT %q: %w", value, err)
		}
		c.DisplayHeight = h
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval
	case "INIT_RETRY_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid INIT_RETRY_INTERVAL %q: %w", value, err)
		}
		c.InitRetryInterval = interval

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_STATION":
		c.MQTTClientIDStation = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "TOPIC_CLIMATE":
		c.TopicClimate = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Diagnostics UART
	case "DIAG_SERIAL_PORT":
		c.DiagSerialPort = value
	case "DIAG_SERIAL_BAUD":
		baud, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DIAG_SERIAL_BAUD %q: %w", value, err)
		}
		c.DiagSerialBaud = baud

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set and in range.
func (c *Config) validate() error {
	switch c.AppEnv {
	case "dev", "prod":
	default:
		return fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", c.AppEnv)
	}
	switch c.SensorType {
	case SensorDHT11, SensorDHT22:
		if c.DHTPin == "" {
			return fmt.Errorf("DHT_PIN is required for SENSOR_TYPE %s", c.SensorType)
		}
	case SensorBME280, SensorMock:
	default:
		return fmt.Errorf("invalid SENSOR_TYPE %q (allowed: dht11, dht22, bme280, mock)", c.SensorType)
	}
	if c.MockFailEvery < 0 {
		return fmt.Errorf("MOCK_FAIL_EVERY must not be negative, got %d", c.MockFailEvery)
	}
	switch c.DisplayType {
	case DisplaySSD1306, DisplayTerminal:
	default:
		return fmt.Errorf("invalid DISPLAY_TYPE %q (allowed: ssd1306, terminal)", c.DisplayType)
	}
	if c.DisplayI2CAddr != SSD1306Addr {
		return fmt.Errorf("DISPLAY_I2C_ADDR 0x%02X not supported: the ssd1306 driver only talks to 0x%02X", c.DisplayI2CAddr, SSD1306Addr)
	}
	if c.DisplayWidth <= 0 || c.DisplayWidth%8 != 0 {
		return fmt.Errorf("DISPLAY_WIDTH must be a positive multiple of 8, got %d", c.DisplayWidth)
	}
	if c.DisplayHeight <= 0 || c.DisplayHeight%8 != 0 {
		return fmt.Errorf("DISPLAY_HEIGHT must be a positive multiple of 8, got %d", c.DisplayHeight)
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive, got %d", c.DisplayUpdateInterval)
	}
	if c.InitRetryInterval < 0 {
		return fmt.Errorf("INIT_RETRY_INTERVAL must not be negative, got %d", c.InitRetryInterval)
	}
	if c.MQTTBroker != "" && c.TopicClimate == "" {
		return fmt.Errorf("TOPIC_CLIMATE is required when MQTT_BROKER is set")
	}
	if c.DiagSerialPort != "" && c.DiagSerialBaud <= 0 {
		return fmt.Errorf("DIAG_SERIAL_BAUD must be positive, got %d", c.DiagSerialBaud)
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
