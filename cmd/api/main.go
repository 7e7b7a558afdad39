package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/ayusutra-api/internal/app"
	"github.com/jwalitptl/ayusutra-api/internal/config"
	"github.com/jwalitptl/ayusutra-api/internal/handler/appointment"
	"github.com/jwalitptl/ayusutra-api/internal/handler/doctor"
	"github.com/jwalitptl/ayusutra-api/internal/handler/health"
	"github.com/jwalitptl/ayusutra-api/internal/handler/sos"
	"github.com/jwalitptl/ayusutra-api/internal/middleware"
	"github.com/jwalitptl/ayusutra-api/internal/router"
	"github.com/jwalitptl/ayusutra-api/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zerolog.SetGlobalLevel(logger.ParseLevel(cfg.Log.Level))
	if !cfg.Log.JSON {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, app.NewLogger(cfg.Log))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}
	defer a.Close()

	checks := map[string]health.Pinger{}
	if a.Broker != nil {
		checks["redis"] = a.Broker
	}

	healthHandler := health.NewHandler(a.Registry, checks)
	doctorHandler := doctor.NewHandler(a.Directory, a.Search)
	appointmentHandler := appointment.NewHandler(a.Directory, a.Booking, time.Now)
	sosHandler := sos.NewHandler(a.Alerts, cfg.Security.AllowedOrigins)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.Security.AllowedOrigins

	var limit rate.Limit
	if cfg.RateLimit.Enabled {
		limit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
	}

	r := router.NewRouter(healthHandler, doctorHandler, appointmentHandler, sosHandler, router.RouterConfig{
		Mode:           cfg.Server.Mode,
		RateLimit:      limit,
		RateBurst:      cfg.RateLimit.Burst,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		CORSConfig:     corsConfig,
		MetricsPrefix:  cfg.Monitoring.Namespace + "_http",
		Registerer:     a.Registry,
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", srv.Addr).Int("doctors", a.Directory.Len()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
