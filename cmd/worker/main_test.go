package main

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/ayusutra-api/pkg/logger"
	"github.com/jwalitptl/ayusutra-api/pkg/messaging"
)

func TestEventHandler(t *testing.T) {
	h := newEventHandler(logger.Nop(), prometheus.NewRegistry(), "test")
	ctx := context.Background()

	assert.NoError(t, h.Handle(ctx, messaging.ChannelAlerts, []byte(`{"type":"sos_alert","payload":{"id":"1"}}`)))
	assert.NoError(t, h.Handle(ctx, messaging.ChannelAppointments, []byte(`{"type":"appointment_requested","payload":{}}`)))
	assert.NoError(t, h.Handle(ctx, messaging.ChannelAlerts, []byte(`not json`)))
	assert.Error(t, h.Handle(ctx, messaging.ChannelNotifications, []byte(`{"payload":{}}`)))

	assert.Equal(t, 1.0, testutil.ToFloat64(h.events.WithLabelValues(messaging.ChannelAlerts, "sos_alert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.events.WithLabelValues(messaging.ChannelAppointments, "appointment_requested")))
}
