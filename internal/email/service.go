package email

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

type Service interface {
	SendCustom(ctx context.Context, to []string, subject string, content string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPService delivers plain-text mail through an SMTP relay.
type SMTPService struct {
	from   string
	sender func(msgs ...*gomail.Message) error
}

func NewSMTPService(cfg Config) *SMTPService {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPService{
		from:   cfg.From,
		sender: dialer.DialAndSend,
	}
}

// NewWithSender is used when the transport is supplied by the caller.
// Transport errors are returned as-is so callers can match them.
func NewWithSender(from string, s gomail.Sender) *SMTPService {
	return &SMTPService{
		from: from,
		sender: func(msgs ...*gomail.Message) error {
			// gomail.Send flattens the transport error with %v.
			var cause error
			err := gomail.Send(gomail.SendFunc(func(addr string, to []string, msg io.WriterTo) error {
				cause = s.Send(addr, to, msg)
				return cause
			}), msgs...)
			if err != nil && cause != nil {
				return cause
			}
			return err
		},
	}
}

func (s *SMTPService) SendCustom(ctx context.Context, to []string, subject string, content string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.sender(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
