package booking

import (
	"context"
	"sync"

	"github.com/jwalitptl/ayusutra-api/internal/model"
)

// Session is one booking intake surface: the selected doctor, the form and
// whether the surface is open. Success clears and closes it; failure leaves
// it untouched.
type Session struct {
	mu      sync.Mutex
	service *Service
	doctor  *model.Doctor
	form    model.BookingForm
	open    bool
}

func NewSession(service *Service) *Session {
	return &Session{service: service}
}

// Open selects doctor and shows the intake. The form keeps whatever was
// typed before.
func (s *Session) Open(doctor *model.Doctor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doctor = doctor
	s.open = true
}

func (s *Session) Fill(form model.BookingForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = form
}

// Close hides the intake without clearing the form.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Session) Form() model.BookingForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

func (s *Session) Doctor() *model.Doctor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doctor
}

// Submit sends the current form for the selected doctor. There is no
// in-flight guard: concurrent calls produce separate requests.
func (s *Session) Submit(ctx context.Context) (*Confirmation, error) {
	s.mu.Lock()
	doctor, form := s.doctor, s.form
	s.mu.Unlock()

	conf, err := s.service.Submit(ctx, doctor, form)
	if err != nil || conf == nil {
		return conf, err
	}

	s.mu.Lock()
	s.form = model.BookingForm{}
	s.open = false
	s.mu.Unlock()
	return conf, nil
}
