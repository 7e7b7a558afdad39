package alert

import (
	"context"
	"fmt"

	"github.com/jwalitptl/ayusutra-api/internal/model"
	"github.com/jwalitptl/ayusutra-api/pkg/logger"
	"github.com/jwalitptl/ayusutra-api/pkg/messaging"
)

// Recorder keeps a trace of every fired alert.
type Recorder interface {
	Record(ctx context.Context, a model.Alert) error
}

type LogRecorder struct {
	logger *logger.Logger
}

func NewLogRecorder(log *logger.Logger) *LogRecorder {
	return &LogRecorder{logger: log.Component("sos")}
}

func (r *LogRecorder) Record(_ context.Context, a model.Alert) error {
	r.logger.Warn("Emergency alert triggered",
		"alert_id", a.ID.String(),
		"source", string(a.Source),
		"session_id", a.SessionID,
		"triggered_at", a.TriggeredAt,
	)
	return nil
}

// BrokerRecorder publishes alerts for downstream dispatchers.
type BrokerRecorder struct {
	publisher messaging.Publisher
}

func NewBrokerRecorder(p messaging.Publisher) *BrokerRecorder {
	return &BrokerRecorder{publisher: p}
}

func (r *BrokerRecorder) Record(ctx context.Context, a model.Alert) error {
	msg := messaging.Message{Type: "sos_alert", Payload: a}
	if err := r.publisher.Publish(ctx, messaging.ChannelAlerts, msg); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}
	return nil
}

// Recorders fans out to several recorders, stopping at the first error.
type Recorders []Recorder

func (rs Recorders) Record(ctx context.Context, a model.Alert) error {
	for _, r := range rs {
		if err := r.Record(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
