package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jwalitptl/ayusutra-api/internal/email"
	"github.com/jwalitptl/ayusutra-api/internal/model"
	"github.com/jwalitptl/ayusutra-api/pkg/logger"
	"github.com/jwalitptl/ayusutra-api/pkg/messaging"
)

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

type NotifierFunc func(ctx context.Context, n model.Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n model.Notification) error {
	return f(ctx, n)
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n model.Notification) error {
	var errs []error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type LogNotifier struct {
	logger *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log.Component("notification")}
}

func (l *LogNotifier) Notify(_ context.Context, n model.Notification) error {
	if n.IsUrgent() {
		l.logger.Warn(n.Title, "description", n.Description, "severity", string(n.Severity))
		return nil
	}
	l.logger.Info(n.Title, "description", n.Description, "severity", string(n.Severity))
	return nil
}

// BrokerNotifier pushes in-app notifications onto the notifications channel.
type BrokerNotifier struct {
	publisher messaging.Publisher
}

func NewBrokerNotifier(p messaging.Publisher) *BrokerNotifier {
	return &BrokerNotifier{publisher: p}
}

func (b *BrokerNotifier) Notify(ctx context.Context, n model.Notification) error {
	msg := messaging.Message{Type: "in_app_notification", Payload: n}
	if err := b.publisher.Publish(ctx, messaging.ChannelNotifications, msg); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// MailNotifier forwards notifications to a fixed recipient list. With
// UrgentOnly set, default-severity messages are skipped.
type MailNotifier struct {
	mailer     email.Service
	recipients []string
	urgentOnly bool
}

func NewMailNotifier(mailer email.Service, recipients []string, urgentOnly bool) *MailNotifier {
	return &MailNotifier{
		mailer:     mailer,
		recipients: recipients,
		urgentOnly: urgentOnly,
	}
}

func (m *MailNotifier) Notify(ctx context.Context, n model.Notification) error {
	if m.urgentOnly && !n.IsUrgent() {
		return nil
	}
	if len(m.recipients) == 0 {
		return nil
	}
	if err := m.mailer.SendCustom(ctx, m.recipients, n.Title, n.Description); err != nil {
		return fmt.Errorf("failed to mail notification: %w", err)
	}
	return nil
}

// Buffer keeps every notification in memory. Safe for concurrent use.
type Buffer struct {
	mu    sync.Mutex
	items []model.Notification
}

func (b *Buffer) Notify(_ context.Context, n model.Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
	return nil
}

func (b *Buffer) All() []model.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Notification, len(b.items))
	copy(out, b.items)
	return out
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
