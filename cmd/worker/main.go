// Command worker consumes the broker channels the API publishes to and logs
// each event. It requires redis.enabled.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/ayusutra-api/internal/app"
	"github.com/jwalitptl/ayusutra-api/internal/config"
	"github.com/jwalitptl/ayusutra-api/pkg/logger"
	"github.com/jwalitptl/ayusutra-api/pkg/messaging"
	"github.com/jwalitptl/ayusutra-api/pkg/worker"
)

const healthAddr = ":8081"

type eventHandler struct {
	logger *logger.Logger
	events *prometheus.CounterVec
}

func newEventHandler(log *logger.Logger, reg prometheus.Registerer, namespace string) *eventHandler {
	return &eventHandler{
		logger: log.Component("events"),
		events: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "events_total",
			Help:      "Events consumed from the broker by type",
		}, []string{"channel", "type"}),
	}
}

func (h *eventHandler) Handle(_ context.Context, channel string, payload []byte) error {
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		// Malformed payloads will not improve on retry.
		h.logger.Warn("Dropping malformed event", "channel", channel, "error", err.Error())
		return nil
	}
	if msg.Type == "" {
		return fmt.Errorf("event on %s has no type", channel)
	}

	h.events.WithLabelValues(channel, msg.Type).Inc()

	fields := []interface{}{"channel", channel, "type", msg.Type, "payload", string(msg.Payload)}
	if channel == messaging.ChannelAlerts {
		h.logger.Warn("Emergency alert received", fields...)
		return nil
	}
	h.logger.Info("Event received", fields...)
	return nil
}

func setupHealthCheck(reg *prometheus.Registry, broker interface{ Ping(context.Context) error }) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := broker.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/health/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: healthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
	return srv
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if !cfg.Redis.Enabled {
		log.Fatal().Msg("worker requires redis.enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, app.NewLogger(cfg.Log))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer a.Close()

	handler := newEventHandler(a.Logger, a.Registry, cfg.Monitoring.Namespace)
	relay, err := worker.NewRelay(a.Broker, worker.RelayConfig{
		Channels: []string{
			messaging.ChannelAlerts,
			messaging.ChannelAppointments,
			messaging.ChannelNotifications,
		},
		RetryAttempts: 3,
		RetryDelay:    500 * time.Millisecond,
	}, handler.Handle, a.Logger, a.Metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create relay")
	}

	health := setupHealthCheck(a.Registry, a.Broker)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Relay stopped")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	_ = health.Shutdown(shutdownCtx)
}
