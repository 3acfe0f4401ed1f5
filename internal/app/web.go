// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/climate_display/internal/climate"
	"github.com/relabs-tech/climate_display/internal/config"
	"github.com/relabs-tech/climate_display/internal/telemetry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const wsWriteTimeout = 2 * time.Second

// webState holds the latest telemetry and the live websocket clients.
type webState struct {
	logger *slog.Logger

	mu      sync.Mutex
	last    climate.Telemetry
	have    bool
	clients map[*websocket.Conn]struct{}
}

func newWebState(logger *slog.Logger) *webState {
	return &webState{
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// update stores t and pushes it to every client. Clients that cannot keep
// up are dropped.
func (s *webState) update(t climate.Telemetry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = t
	s.have = true
	for conn := range s.clients {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(t); err != nil {
			s.logger.Debug("dropping websocket client", "remote", conn.RemoteAddr(), "err", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func (s *webState) handleLatest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	last, have := s.last, s.have
	s.mu.Unlock()

	if !have {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(last); err != nil {
		s.logger.Warn("json encode error", "err", err)
	}
}

func (s *webState) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade error", "err", err)
		return
	}

	s.mu.Lock()
	if s.have {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(s.last); err != nil {
			s.mu.Unlock()
			conn.Close()
			return
		}
	}
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// Clients only listen; reading detects when they go away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket error", "err", err)
			}
			break
		}
	}

	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *webState) handler(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/climate", s.handleLatest)
	mux.HandleFunc("/ws", s.handleWS)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

// RunWeb subscribes to the climate topic and serves the latest reading
// until ctx is cancelled.
func RunWeb(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger = logger.With("component", "web")

	client, err := telemetry.Connect(cfg, cfg.MQTTClientIDWeb, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	state := newWebState(logger)
	if err := telemetry.Subscribe(client, cfg.TopicClimate, logger, state.update); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           state.handler("web"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("web server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
