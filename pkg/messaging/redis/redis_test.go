package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ayusutra-api/pkg/messaging"
)

func newTestBroker(t *testing.T) (*RedisBroker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b := NewRedisBrokerFromClient(client, nil, nil)
	t.Cleanup(func() { b.Close() })
	return b, mr
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	b, _ := newTestBroker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := b.Subscribe(ctx, messaging.ChannelAlerts)
	require.NoError(t, err)

	err = b.Publish(ctx, messaging.ChannelAlerts, messaging.Message{Type: "sos", Payload: "tap"})
	require.NoError(t, err)

	select {
	case raw := <-msgs:
		var got messaging.Message
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "sos", got.Type)
		assert.Equal(t, "tap", got.Payload)
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestSubscribeClosesOnCancel(t *testing.T) {
	b, _ := newTestBroker(t)

	ctx, cancel := context.WithCancel(context.Background())
	msgs, err := b.Subscribe(ctx, messaging.ChannelNotifications)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-msgs:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("subscription channel was not closed")
	}
}

func TestPublishFailsWhenServerDown(t *testing.T) {
	b, mr := newTestBroker(t)
	mr.Close()

	err := b.Publish(context.Background(), messaging.ChannelAppointments, map[string]string{"doctor_id": "1"})
	assert.Error(t, err)
}

func TestNewRedisBrokerRejectsBadURL(t *testing.T) {
	_, err := NewRedisBroker(context.Background(), Config{URL: "://nope"}, nil, nil)
	assert.Error(t, err)
}

func TestNewRedisBrokerConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	b, err := NewRedisBroker(context.Background(), Config{URL: "redis://" + mr.Addr()}, nil, nil)
	require.NoError(t, err)
	defer b.Close()

	assert.NoError(t, b.Ping(context.Background()))
}
