package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/ayusutra-api/pkg/logger"
	"github.com/jwalitptl/ayusutra-api/pkg/messaging"
	"github.com/jwalitptl/ayusutra-api/pkg/metrics"
)

// Handler processes one raw message from channel.
type Handler func(ctx context.Context, channel string, payload []byte) error

type RelayConfig struct {
	Channels      []string
	RetryAttempts int
	RetryDelay    time.Duration
}

// Relay consumes broker channels and hands every message to a Handler,
// retrying failed handling a bounded number of times.
type Relay struct {
	broker  messaging.Broker
	config  RelayConfig
	handler Handler
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewRelay(
	broker messaging.Broker,
	config RelayConfig,
	handler Handler,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) (*Relay, error) {
	if len(config.Channels) == 0 {
		return nil, fmt.Errorf("relay needs at least one channel")
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}
	if config.RetryDelay < 0 {
		config.RetryDelay = 0
	}

	return &Relay{
		broker:  broker,
		config:  config,
		handler: handler,
		logger:  logger.Component("relay"),
		metrics: metrics,
	}, nil
}

// Start subscribes to every channel and blocks until ctx is done or all
// subscriptions have closed.
func (r *Relay) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, channel := range r.config.Channels {
		msgs, err := r.broker.Subscribe(ctx, channel)
		if err != nil {
			// Stop the channels already subscribed before reporting.
			cancel()
			wg.Wait()
			return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}

		wg.Add(1)
		go func(channel string, msgs <-chan []byte) {
			defer wg.Done()
			for payload := range msgs {
				r.process(ctx, channel, payload)
			}
		}(channel, msgs)
	}

	r.logger.Info("Relay started", "channels", r.config.Channels)
	wg.Wait()
	r.logger.Info("Relay stopped")
	return ctx.Err()
}

func (r *Relay) process(ctx context.Context, channel string, payload []byte) {
	timer := prometheus.NewTimer(r.metrics.RelayLatency.WithLabelValues(channel))
	defer timer.ObserveDuration()

	var err error
	for attempt := 0; attempt < r.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt) * r.config.RetryDelay):
			}
		}

		if err = r.handler(ctx, channel, payload); err == nil {
			r.metrics.RelayMessages.WithLabelValues(channel, "processed").Inc()
			return
		}
		r.logger.Warn("Retry handling message", "channel", channel, "attempt", attempt+1, "error", err.Error())
	}

	r.metrics.RelayMessages.WithLabelValues(channel, "failed").Inc()
	r.logger.Error(err, "Failed to handle message after retries", "channel", channel)
}
