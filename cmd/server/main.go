package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/banterhub/banter/hub"
	"github.com/banterhub/banter/internal/chat"
	"github.com/banterhub/banter/internal/config"
	"github.com/banterhub/banter/logging"
	"github.com/banterhub/banter/websocket"
)

func main() {
	cfg, err := config.Load(config.LoadOptions{Path: os.Getenv("BANTER_CONFIG")})
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.New(logger)
	if err := h.Start(ctx); err != nil {
		logger.Error("failed to start hub", "error", err)
		os.Exit(1)
	}

	chatRouter := chat.NewRouter(cfg.Chat, h, logger)

	wsServer := websocket.NewServer(h, chatRouter, logger, websocket.Options{
		WriteTimeout:    cfg.Websocket.WriteTimeout,
		ReadTimeout:     cfg.Websocket.ReadTimeout,
		PingInterval:    cfg.Websocket.PingInterval,
		MaxMessageSize:  cfg.Websocket.MaxMessageSize,
		ReadBufferSize:  cfg.Websocket.ReadBufferSize,
		WriteBufferSize: cfg.Websocket.WriteBufferSize,
	})

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Get("/ws", wsServer.Serve)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(h.GetStats())
	})

	srv := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     r,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		if err := h.Stop(); err != nil {
			logger.Error("hub stop error", "error", err)
		}
	}()

	logger.Info("server listening", "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
