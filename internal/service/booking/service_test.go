package booking

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ayusutra-api/internal/model"
	"github.com/jwalitptl/ayusutra-api/internal/service/notification"
	"github.com/jwalitptl/ayusutra-api/pkg/logger"
	"github.com/jwalitptl/ayusutra-api/pkg/messaging"
	"github.com/jwalitptl/ayusutra-api/pkg/metrics"
	redisbroker "github.com/jwalitptl/ayusutra-api/pkg/messaging/redis"
)

var aditi = &model.Doctor{ID: "1", Name: "Dr. Aditi Sharma", Specialty: "Cardiologist"}

var validForm = model.BookingForm{
	PatientName:         "Asha Verma",
	PatientPhone:        "+91-9876543210",
	AppointmentDateTime: "2030-03-14T17:30",
}

type memoryStore struct {
	mu       sync.Mutex
	requests []model.AppointmentRequest
	err      error
}

func (s *memoryStore) Save(_ context.Context, req model.AppointmentRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.requests = append(s.requests, req)
	return nil
}

func (s *memoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func newTestService(store AppointmentStore, notes notification.Notifier) (*Service, *metrics.Metrics) {
	m := metrics.New("test")
	return NewService(store, notes, m, logger.Nop(), time.UTC), m
}

func TestSubmitBuildsRequestAndConfirms(t *testing.T) {
	store := &memoryStore{}
	notes := &notification.Buffer{}
	svc, m := newTestService(store, notes)

	conf, err := svc.Submit(context.Background(), aditi, validForm)
	require.NoError(t, err)
	require.NotNil(t, conf)

	require.Equal(t, 1, store.Len())
	assert.Equal(t, model.AppointmentRequest{
		DoctorID:        "1",
		PatientName:     "Asha Verma",
		PatientPhone:    "+91-9876543210",
		AppointmentDate: "2030-03-14",
		AppointmentTime: "17:30",
		Status:          model.AppointmentStatusScheduled,
	}, store.requests[0])

	got := notes.All()
	require.Len(t, got, 1)
	assert.Equal(t, "✅ Appointment Booked Successfully!", got[0].Title)
	assert.Equal(t, "Your appointment with Dr. Aditi Sharma is confirmed for Mar 14, 2030, 5:30 PM", got[0].Description)
	assert.False(t, got[0].IsUrgent())
	assert.Equal(t, got[0], conf.Notification)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Bookings.WithLabelValues("confirmed")))
}

func TestSubmitStoresTrimmedContact(t *testing.T) {
	store := &memoryStore{}
	svc, _ := newTestService(store, &notification.Buffer{})

	form := validForm
	form.PatientName = "  Asha Verma  "
	form.PatientPhone = " +91-9876543210 "
	require.NoError(t, ValidateForm(form, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), time.UTC))

	_, err := svc.Submit(context.Background(), aditi, form)
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())
	assert.Equal(t, "Asha Verma", store.requests[0].PatientName)
	assert.Equal(t, "+91-9876543210", store.requests[0].PatientPhone)
}

func TestSubmitWithoutDoctorIsNoop(t *testing.T) {
	store := &memoryStore{}
	notes := &notification.Buffer{}
	svc, _ := newTestService(store, notes)

	conf, err := svc.Submit(context.Background(), nil, validForm)
	assert.NoError(t, err)
	assert.Nil(t, conf)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, notes.Len())
}

func TestSubmitPersistenceFailure(t *testing.T) {
	store := &memoryStore{err: assert.AnError}
	notes := &notification.Buffer{}
	svc, m := newTestService(store, notes)

	conf, err := svc.Submit(context.Background(), aditi, validForm)
	assert.Nil(t, conf)

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.ErrorIs(t, err, assert.AnError)

	got := notes.All()
	require.Len(t, got, 1)
	assert.Equal(t, Failed, got[0])
	assert.True(t, got[0].IsUrgent())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Bookings.WithLabelValues("failed")))
}

func TestSubmitDoesNotRevalidate(t *testing.T) {
	store := &memoryStore{}
	svc, _ := newTestService(store, nil)

	conf, err := svc.Submit(context.Background(), aditi, model.BookingForm{AppointmentDateTime: "2030-03-14"})
	require.NoError(t, err)
	assert.Equal(t, "2030-03-14", conf.Request.AppointmentDate)
	assert.Equal(t, "", conf.Request.AppointmentTime)
	assert.Contains(t, conf.Notification.Description, "confirmed for 2030-03-14")
}

func TestSubmitToleratesNotifierFailure(t *testing.T) {
	failing := notification.NotifierFunc(func(context.Context, model.Notification) error {
		return assert.AnError
	})
	svc, _ := newTestService(&memoryStore{}, failing)

	conf, err := svc.Submit(context.Background(), aditi, validForm)
	require.NoError(t, err)
	assert.NotNil(t, conf)
}

func TestSessionSuccessClearsAndCloses(t *testing.T) {
	notes := &notification.Buffer{}
	svc, _ := newTestService(&memoryStore{}, notes)

	s := NewSession(svc)
	s.Open(aditi)
	s.Fill(validForm)

	conf, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, conf)

	assert.False(t, s.IsOpen())
	assert.True(t, s.Form().IsEmpty())
	assert.Equal(t, 1, notes.Len())
}

func TestSessionFailureKeepsState(t *testing.T) {
	notes := &notification.Buffer{}
	svc, _ := newTestService(&memoryStore{err: assert.AnError}, notes)

	s := NewSession(svc)
	s.Open(aditi)
	s.Fill(validForm)

	_, err := s.Submit(context.Background())
	require.Error(t, err)

	assert.True(t, s.IsOpen())
	assert.Equal(t, validForm, s.Form())
	assert.Equal(t, 1, notes.Len())
}

func TestSessionWithoutDoctor(t *testing.T) {
	store := &memoryStore{}
	svc, _ := newTestService(store, nil)

	s := NewSession(svc)
	s.Fill(validForm)

	conf, err := s.Submit(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, conf)
	assert.Equal(t, validForm, s.Form())
	assert.Equal(t, 0, store.Len())
}

func TestSessionDoubleSubmitSendsTwice(t *testing.T) {
	store := &memoryStore{}
	svc, _ := newTestService(store, nil)

	s := NewSession(svc)
	s.Open(aditi)
	s.Fill(validForm)

	var wg sync.WaitGroup
	release := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-release
			_, _ = s.Submit(context.Background())
		}()
	}
	close(release)
	wg.Wait()

	// The form may already be cleared for the second call, but both calls
	// reach the store.
	assert.Equal(t, 2, store.Len())
}

func TestBrokerStorePublishes(t *testing.T) {
	mr := miniredis.RunT(t)
	broker := redisbroker.NewRedisBrokerFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil, nil)
	defer broker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := broker.Subscribe(ctx, messaging.ChannelAppointments)
	require.NoError(t, err)

	svc, _ := newTestService(NewBrokerStore(broker), nil)
	_, err = svc.Submit(ctx, aditi, validForm)
	require.NoError(t, err)

	select {
	case raw := <-msgs:
		var got struct {
			Type    string                   `json:"type"`
			Payload model.AppointmentRequest `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "appointment_requested", got.Type)
		assert.Equal(t, "1", got.Payload.DoctorID)
		assert.Equal(t, "17:30", got.Payload.AppointmentTime)
	case <-ctx.Done():
		t.Fatal("timed out waiting for appointment")
	}
}

func TestBrokerStoreFailureIsPersistenceError(t *testing.T) {
	mr := miniredis.RunT(t)
	broker := redisbroker.NewRedisBrokerFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil, nil)
	defer broker.Close()
	mr.Close()

	notes := &notification.Buffer{}
	svc, _ := newTestService(NewBrokerStore(broker), notes)

	_, err := svc.Submit(context.Background(), aditi, validForm)
	var perr *PersistenceError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, Failed, notes.All()[0])
}

func TestLogStoreNeverFails(t *testing.T) {
	svc, _ := newTestService(NewLogStore(logger.Nop()), nil)
	_, err := svc.Submit(context.Background(), aditi, validForm)
	assert.NoError(t, err)
}
