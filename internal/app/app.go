// Package app assembles the services from configuration. The API, the SOS
// console and the relay worker share it.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jwalitptl/ayusutra-api/internal/config"
	"github.com/jwalitptl/ayusutra-api/internal/directory"
	"github.com/jwalitptl/ayusutra-api/internal/email"
	"github.com/jwalitptl/ayusutra-api/internal/service/alert"
	"github.com/jwalitptl/ayusutra-api/internal/service/booking"
	"github.com/jwalitptl/ayusutra-api/internal/service/notification"
	"github.com/jwalitptl/ayusutra-api/internal/service/search"
	"github.com/jwalitptl/ayusutra-api/pkg/logger"
	"github.com/jwalitptl/ayusutra-api/pkg/messaging/redis"
	"github.com/jwalitptl/ayusutra-api/pkg/metrics"
)

type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Broker is nil unless redis.enabled is set.
	Broker    *redis.RedisBroker
	Directory *directory.Directory
	Notifier  notification.Notifier
	Search    *search.Engine
	Booking   *booking.Service
	Alerts    *alert.Service
}

func NewLogger(cfg config.LogConfig) *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.JSON,
	})
}

// New builds every service. Close releases the broker connection.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.Log)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(cfg.Monitoring.Namespace, reg)

	a := &App{
		Config:   cfg,
		Logger:   log,
		Registry: reg,
		Metrics:  m,
	}

	if cfg.Redis.Enabled {
		broker, err := redis.NewRedisBroker(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, log, m)
		if err != nil {
			return nil, err
		}
		a.Broker = broker
	}

	dir, err := directory.Load(ctx, a.provider())
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Directory = dir
	log.Info("Doctor directory loaded", "doctors", dir.Len(), "seed_file", cfg.Directory.SeedFile)

	loc, err := cfg.Location()
	if err != nil {
		a.Close()
		return nil, err
	}

	store, err := a.store()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Notifier = a.notifier()
	a.Search = search.NewEngine(dir, search.NewMetricsSink(m), search.NewLogSink(log))
	a.Booking = booking.NewService(store, a.Notifier, m, log, loc)
	a.Alerts = alert.NewService(alert.Config{
		TriggerKey: cfg.SOS.TriggerKey,
		Window:     cfg.SOS.Window,
		SessionTTL: cfg.SOS.SessionTTL,
	}, a.Notifier, a.recorder(), m, log)

	return a, nil
}

func (a *App) provider() directory.Provider {
	if a.Config.Directory.SeedFile != "" {
		return directory.NewFileProvider(a.Config.Directory.SeedFile)
	}
	return directory.NewStaticProvider(directory.SampleDoctors())
}

func (a *App) store() (booking.AppointmentStore, error) {
	switch a.Config.Booking.Store {
	case "", "log":
		return booking.NewLogStore(a.Logger), nil
	case "broker":
		if a.Broker == nil {
			return nil, fmt.Errorf("booking.store=broker requires redis.enabled")
		}
		return booking.NewBrokerStore(a.Broker), nil
	default:
		return nil, fmt.Errorf("unknown booking store %q", a.Config.Booking.Store)
	}
}

func (a *App) notifier() notification.Notifier {
	notifiers := notification.Multi{notification.NewLogNotifier(a.Logger)}
	if a.Broker != nil {
		notifiers = append(notifiers, notification.NewBrokerNotifier(a.Broker))
	}
	if mail := a.Config.Mail; mail.Enabled && len(mail.Recipients) > 0 {
		notifiers = append(notifiers, notification.NewMailNotifier(a.Mailer(), mail.Recipients, mail.UrgentOnly))
	}
	return notifiers
}

func (a *App) recorder() alert.Recorder {
	recorders := alert.Recorders{alert.NewLogRecorder(a.Logger)}
	if a.Broker != nil {
		recorders = append(recorders, alert.NewBrokerRecorder(a.Broker))
	}
	return recorders
}

func (a *App) Mailer() email.Service {
	mail := a.Config.Mail
	return email.NewSMTPService(email.Config{
		Host:     mail.Host,
		Port:     mail.Port,
		Username: mail.Username,
		Password: mail.Password,
		From:     mail.From,
	})
}

func (a *App) Close() error {
	if a.Broker != nil {
		return a.Broker.Close()
	}
	return nil
}
