package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ayusutra-api/pkg/logger"
	"github.com/jwalitptl/ayusutra-api/pkg/messaging"
	redisbroker "github.com/jwalitptl/ayusutra-api/pkg/messaging/redis"
	"github.com/jwalitptl/ayusutra-api/pkg/metrics"
)

func newBroker(t *testing.T) *redisbroker.RedisBroker {
	t.Helper()
	mr := miniredis.RunT(t)
	b := redisbroker.NewRedisBrokerFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil, nil)
	t.Cleanup(func() { b.Close() })
	return b
}

// failingBroker subscribes to the first channel and fails on the rest.
type failingBroker struct {
	mu      sync.Mutex
	stopped []string
}

func (b *failingBroker) Publish(context.Context, string, interface{}) error { return nil }
func (b *failingBroker) Close() error { return nil }

func (b *failingBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	if channel != messaging.ChannelAlerts {
		return nil, assert.AnError
	}
	out := make(chan []byte)
	go func() {
		<-ctx.Done()
		b.mu.Lock()
		b.stopped = append(b.stopped, channel)
		b.mu.Unlock()
		close(out)
	}()
	return out, nil
}

func (b *failingBroker) Stopped() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.stopped...)
}

func TestNewRelayRequiresChannels(t *testing.T) {
	_, err := NewRelay(nil, RelayConfig{}, nil, logger.Nop(), metrics.New("test"))
	assert.Error(t, err)
}

func TestRelayDeliversAndRetries(t *testing.T) {
	broker := newBroker(t)
	m := metrics.New("test")

	var (
		mu       sync.Mutex
		seen     []string
		attempts int32
	)
	handler := func(_ context.Context, channel string, payload []byte) error {
		if channel == messaging.ChannelAlerts && atomic.AddInt32(&attempts, 1) == 1 {
			return assert.AnError
		}
		mu.Lock()
		seen = append(seen, channel)
		mu.Unlock()
		return nil
	}

	relay, err := NewRelay(broker, RelayConfig{
		Channels:      []string{messaging.ChannelAlerts, messaging.ChannelAppointments},
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}, handler, logger.Nop(), m)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Start(ctx) }()

	// Subscriptions are confirmed inside Start; publish until both land.
	require.Eventually(t, func() bool {
		_ = broker.Publish(ctx, messaging.ChannelAlerts, messaging.Message{Type: "sos_alert"})
		_ = broker.Publish(ctx, messaging.ChannelAppointments, messaging.Message{Type: "appointment_requested"})
		mu.Lock()
		defer mu.Unlock()
		hasAlert, hasAppt := false, false
		for _, c := range seen {
			hasAlert = hasAlert || c == messaging.ChannelAlerts
			hasAppt = hasAppt || c == messaging.ChannelAppointments
		}
		return hasAlert && hasAppt
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop")
	}

	assert.GreaterOrEqual(t, testutil.ToFloat64(m.RelayMessages.WithLabelValues(messaging.ChannelAlerts, "processed")), 1.0)
}

func TestRelayStopsEarlierSubscriptionsWhenSubscribeFails(t *testing.T) {
	broker := &failingBroker{}
	relay, err := NewRelay(broker, RelayConfig{
		Channels: []string{messaging.ChannelAlerts, messaging.ChannelAppointments},
	}, func(context.Context, string, []byte) error { return nil }, logger.Nop(), metrics.New("test"))
	require.NoError(t, err)

	err = relay.Start(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []string{messaging.ChannelAlerts}, broker.Stopped())
}
