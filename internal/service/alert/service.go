package alert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/ayusutra-api/internal/model"
	"github.com/jwalitptl/ayusutra-api/internal/service/notification"
	"github.com/jwalitptl/ayusutra-api/pkg/logger"
	"github.com/jwalitptl/ayusutra-api/pkg/metrics"
)

var ErrSessionRequired = errors.New("session id is required")

// Notification shown when an alert fires.
var Activated = model.Notification{
	Title:       "🚨 Emergency Alert Activated",
	Description: "Emergency services have been notified. Help is on the way!",
	Severity:    model.SeverityDestructive,
}

// KeySource hands out key press subscriptions. The release func must be
// called once the listener is done.
type KeySource interface {
	Subscribe() (<-chan string, func())
}

type Config struct {
	TriggerKey string
	Window     time.Duration
	// SessionTTL bounds how long an idle key-press session is remembered.
	SessionTTL time.Duration
	Now        func() time.Time
}

type Service struct {
	cfg      Config
	notifier notification.Notifier
	recorder Recorder
	metrics  *metrics.Metrics
	logger   *logger.Logger
	sessions *cache.Cache
}

func NewService(cfg Config, notifier notification.Notifier, recorder Recorder, m *metrics.Metrics, log *logger.Logger) *Service {
	if cfg.TriggerKey == "" {
		cfg.TriggerKey = DefaultTriggerKey
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 5 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.New("sos")
	}

	return &Service{
		cfg:      cfg,
		notifier: notifier,
		recorder: recorder,
		metrics:  m,
		logger:   log.Component("sos"),
		sessions: cache.New(cfg.SessionTTL, 2*cfg.SessionTTL),
	}
}

// NewDetector returns a detector configured like the service's own.
func (s *Service) NewDetector() *Detector {
	return NewDetector(s.cfg.TriggerKey, s.cfg.Window, s.cfg.Now)
}

// Fire raises an alert: the urgent notification is emitted and the alert is
// recorded. The alert is returned even when a collaborator fails.
func (s *Service) Fire(ctx context.Context, source model.AlertSource, sessionID string) (*model.Alert, error) {
	alert := &model.Alert{
		ID:          uuid.New(),
		Source:      source,
		SessionID:   sessionID,
		Status:      model.AlertStatusTriggered,
		TriggeredAt: s.cfg.Now(),
	}
	s.metrics.AlertsTriggered.WithLabelValues(string(source)).Inc()

	var errs []error
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, Activated); err != nil {
			s.logger.Error(err, "Failed to emit alert notification", "alert_id", alert.ID.String())
			errs = append(errs, fmt.Errorf("failed to notify: %w", err))
		}
	}
	if s.recorder != nil {
		if err := s.recorder.Record(ctx, *alert); err != nil {
			s.logger.Error(err, "Failed to record alert", "alert_id", alert.ID.String())
			errs = append(errs, fmt.Errorf("failed to record alert: %w", err))
		}
	}

	return alert, errors.Join(errs...)
}

// Tap fires immediately, as the on-screen SOS button does.
func (s *Service) Tap(ctx context.Context) (*model.Alert, error) {
	return s.Fire(ctx, model.AlertSourceTap, "")
}

// Handle feeds one key press to det and fires when it completes a double
// press. Non-trigger keys are ignored.
func (s *Service) Handle(ctx context.Context, det *Detector, key, sessionID string) (*model.Alert, error) {
	qualifying := det.Qualifies(key)
	s.metrics.KeyPresses.WithLabelValues(fmt.Sprint(qualifying)).Inc()
	if !qualifying {
		return nil, nil
	}
	if !det.Press(key) {
		return nil, nil
	}
	return s.Fire(ctx, model.AlertSourceKeyboard, sessionID)
}

// Press handles a key press for a client-held session. Each session owns its
// own detector, kept until the session has been idle for SessionTTL.
func (s *Service) Press(ctx context.Context, sessionID, key string) (*model.Alert, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	det := s.NewDetector()
	if err := s.sessions.Add(sessionID, det, cache.DefaultExpiration); err != nil {
		existing, ok := s.sessions.Get(sessionID)
		if ok {
			det = existing.(*Detector)
		}
	}
	// Refresh the idle timer.
	s.sessions.Set(sessionID, det, cache.DefaultExpiration)

	return s.Handle(ctx, det, key, sessionID)
}

// Sessions returns the number of live key-press sessions.
func (s *Service) Sessions() int {
	return s.sessions.ItemCount()
}

// Bind hands out a detector for a long-lived key source such as a websocket
// connection. The release func must be called when the source goes away.
func (s *Service) Bind() (*Detector, func()) {
	s.metrics.KeyListeners.Inc()
	var once sync.Once
	return s.NewDetector(), func() {
		once.Do(s.metrics.KeyListeners.Dec)
	}
}

// Listen binds a detector to src until ctx is done or src closes. The
// subscription is always released on return.
func (s *Service) Listen(ctx context.Context, src KeySource) error {
	keys, release := src.Subscribe()
	defer release()
	return s.Run(ctx, keys)
}

// Run feeds keys to a fresh detector until ctx is done or keys is closed.
// Keys already buffered when keys closes are still handled.
func (s *Service) Run(ctx context.Context, keys <-chan string) error {
	det, unbind := s.Bind()
	defer unbind()
	s.logger.Info("SOS listener active", "trigger_key", s.cfg.TriggerKey, "window", s.cfg.Window.String())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			if _, err := s.Handle(ctx, det, key, ""); err != nil {
				s.logger.Error(err, "SOS alert delivery incomplete")
			}
		}
	}
}
