package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/ayusutra-api/internal/model"
	"github.com/jwalitptl/ayusutra-api/internal/service/notification"
	"github.com/jwalitptl/ayusutra-api/pkg/logger"
	"github.com/jwalitptl/ayusutra-api/pkg/metrics"
)

// Failed is shown when the store rejects a request.
var Failed = model.Notification{
	Title:       "Booking Failed",
	Description: "There was an error booking your appointment. Please try again.",
	Severity:    model.SeverityDestructive,
}

// Confirmation is returned for an accepted request.
type Confirmation struct {
	Request      model.AppointmentRequest `json:"appointment"`
	Notification model.Notification       `json:"notification"`
}

type Service struct {
	store    AppointmentStore
	notifier notification.Notifier
	metrics  *metrics.Metrics
	logger   *logger.Logger
	loc      *time.Location
}

func NewService(store AppointmentStore, notifier notification.Notifier, m *metrics.Metrics, log *logger.Logger, loc *time.Location) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.New("booking")
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:    store,
		notifier: notifier,
		metrics:  m,
		logger:   log.Component("booking"),
		loc:      loc,
	}
}

// Location is the zone appointment times are read in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Submit packages the form for doctor and hands it to the store. A nil
// doctor is a no-op and returns (nil, nil). Form checks are not repeated
// here; callers run ValidateForm first.
func (s *Service) Submit(ctx context.Context, doctor *model.Doctor, form model.BookingForm) (*Confirmation, error) {
	if doctor == nil {
		return nil, nil
	}

	date, clock := SplitDateTime(form.AppointmentDateTime)
	req := model.AppointmentRequest{
		DoctorID:        doctor.ID,
		PatientName:     strings.TrimSpace(form.PatientName),
		PatientPhone:    strings.TrimSpace(form.PatientPhone),
		AppointmentDate: date,
		AppointmentTime: clock,
		Status:          model.AppointmentStatusScheduled,
	}

	if err := s.store.Save(ctx, req); err != nil {
		s.metrics.Bookings.WithLabelValues("failed").Inc()
		s.logger.Error(err, "Failed to save appointment", "doctor_id", doctor.ID)
		s.notify(ctx, Failed)
		return nil, &PersistenceError{Err: err}
	}

	confirmed := model.Notification{
		Title: "✅ Appointment Booked Successfully!",
		Description: fmt.Sprintf("Your appointment with %s is confirmed for %s",
			doctor.Name, DisplayTime(form.AppointmentDateTime, s.loc)),
		Severity: model.SeverityDefault,
	}
	s.metrics.Bookings.WithLabelValues("confirmed").Inc()
	s.notify(ctx, confirmed)

	return &Confirmation{Request: req, Notification: confirmed}, nil
}

func (s *Service) notify(ctx context.Context, n model.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error(err, "Failed to deliver booking notification", "title", n.Title)
	}
}
