package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"poagov/internal/model"
)

// EmailConfig configures SMTP delivery.
type EmailConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Recipients []string
}

type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// EmailSink mails every notification to each validator separately.
type EmailSink struct {
	cfg    EmailConfig
	sender mailSender
	logger *zap.Logger
}

// NewEmailSink builds an SMTP client that requires STARTTLS and PLAIN auth.
func NewEmailSink(cfg EmailConfig, logger *zap.Logger) (*EmailSink, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if len(cfg.Recipients) == 0 {
		return nil, fmt.Errorf("at least one email recipient is required")
	}
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return newEmailSink(cfg, client, logger), nil
}

func newEmailSink(cfg EmailConfig, sender mailSender, logger *zap.Logger) *EmailSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailSink{cfg: cfg, sender: sender, logger: logger}
}

// Dispatch sends one message per recipient; a failed recipient does not stop the rest.
func (s *EmailSink) Dispatch(ctx context.Context, n model.Notification) error {
	body := FormatBody(n)

	var errs error
	for _, recipient := range s.cfg.Recipients {
		msg, err := s.buildMessage(recipient, body)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := s.sender.DialAndSendWithContext(ctx, msg); err != nil {
			s.logger.Warn("email failed", zap.String("recipient", recipient), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("send email to %s: %w", recipient, err))
			continue
		}
		s.logger.Info("email sent", zap.String("recipient", recipient), zap.String("notification", n.Key()))
	}
	return errs
}

func (s *EmailSink) buildMessage(recipient, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("email sender %q: %w", s.cfg.From, err)
	}
	if err := msg.To(recipient); err != nil {
		return nil, fmt.Errorf("email recipient %q: %w", recipient, err)
	}
	msg.Subject(emailSubject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
