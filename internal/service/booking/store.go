package booking

import (
	"context"
	"fmt"

	"github.com/jwalitptl/ayusutra-api/internal/model"
	"github.com/jwalitptl/ayusutra-api/pkg/logger"
	"github.com/jwalitptl/ayusutra-api/pkg/messaging"
)

// AppointmentStore accepts appointment requests.
type AppointmentStore interface {
	Save(ctx context.Context, req model.AppointmentRequest) error
}

type StoreFunc func(ctx context.Context, req model.AppointmentRequest) error

func (f StoreFunc) Save(ctx context.Context, req model.AppointmentRequest) error {
	return f(ctx, req)
}

// LogStore only logs the request. It never fails.
type LogStore struct {
	logger *logger.Logger
}

func NewLogStore(log *logger.Logger) *LogStore {
	return &LogStore{logger: log.Component("booking")}
}

func (s *LogStore) Save(_ context.Context, req model.AppointmentRequest) error {
	s.logger.Info("Booking appointment",
		"doctor_id", req.DoctorID,
		"appointment_date", req.AppointmentDate,
		"appointment_time", req.AppointmentTime,
		"status", string(req.Status),
	)
	return nil
}

// BrokerStore hands requests to a downstream scheduler over the broker.
type BrokerStore struct {
	publisher messaging.Publisher
}

func NewBrokerStore(p messaging.Publisher) *BrokerStore {
	return &BrokerStore{publisher: p}
}

func (s *BrokerStore) Save(ctx context.Context, req model.AppointmentRequest) error {
	msg := messaging.Message{Type: "appointment_requested", Payload: req}
	if err := s.publisher.Publish(ctx, messaging.ChannelAppointments, msg); err != nil {
		return fmt.Errorf("failed to publish appointment: %w", err)
	}
	return nil
}
