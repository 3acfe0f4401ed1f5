// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry moves climate readings over MQTT.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/climate_display/internal/climate"
	"github.com/relabs-tech/climate_display/internal/config"
)

const publishTimeout = 5 * time.Second

// Connect opens an MQTT session to cfg.MQTTBroker as clientID.
func Connect(cfg *config.Config, clientID string, logger *slog.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(60 * time.Second).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second)

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "err", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.MQTTBroker, token.Error())
	}
	logger.Info("connected to MQTT broker", "broker", cfg.MQTTBroker, "client_id", clientID)
	return client, nil
}

// Publisher sends readings as retained JSON telemetry.
type Publisher struct {
	client    mqtt.Client
	topic     string
	stationID string
	logger    *slog.Logger
}

// NewPublisher publishes on cfg.TopicClimate through client.
func NewPublisher(client mqtt.Client, cfg *config.Config, logger *slog.Logger) *Publisher {
	return &Publisher{
		client:    client,
		topic:     cfg.TopicClimate,
		stationID: cfg.StationID,
		logger:    logger.With("component", "telemetry"),
	}
}

// Publish sends r. Readings with missing values are refused.
func (p *Publisher) Publish(r climate.Reading) error {
	if !r.Valid() {
		return fmt.Errorf("refusing to publish incomplete reading from %s", r.Source)
	}

	payload, err := json.Marshal(climate.NewTelemetry(p.stationID, r))
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}

	token := p.client.Publish(p.topic, 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish telemetry: %w", err)
	}

	p.logger.Debug("published telemetry", "topic", p.topic)
	return nil
}

// Close disconnects the underlying client.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// Subscribe delivers every telemetry message on topic to fn. Payloads that
// do not decode are logged and dropped.
func Subscribe(client mqtt.Client, topic string, logger *slog.Logger, fn func(climate.Telemetry)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var t climate.Telemetry
		if err := json.Unmarshal(msg.Payload(), &t); err != nil {
			logger.Warn("telemetry unmarshal error", "topic", msg.Topic(), "err", err)
			return
		}
		fn(t)
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	logger.Info("subscribed", "topic", topic)
	return nil
}
