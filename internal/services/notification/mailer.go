package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"canteen-system/internal/config"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

// Sender delivers a notification to its recipient
type Sender interface {
	Send(ctx context.Context, msg *models.NotificationMessage, requestID string) error
}

// NewSender returns an SMTP sender, or a log-only sender when no SMTP host is configured
func NewSender(cfg config.SMTPConfig, log *logger.Logger) (Sender, error) {
	if cfg.Host == "" {
		return &LogSender{logger: log}, nil
	}
	return NewSMTPSender(cfg, log)
}

// SMTPSender sends notifications as plain-text email
type SMTPSender struct {
	client *mail.Client
	from   string
	logger *logger.Logger
}

// NewSMTPSender creates an SMTP sender
func NewSMTPSender(cfg config.SMTPConfig, log *logger.Logger) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.From, logger: log}, nil
}

// Send emails msg to the order owner
func (s *SMTPSender) Send(ctx context.Context, msg *models.NotificationMessage, requestID string) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.Email); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject())
	m.SetBodyString(mail.TypeTextPlain, FormatNotification(msg))

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email_sent", "Notification email sent", requestID, map[string]interface{}{
		"order_id": msg.OrderID,
		"event":    msg.Event,
	})
	return nil
}

// LogSender only logs notifications. Used when SMTP is not configured.
type LogSender struct {
	logger *logger.Logger
}

// Send logs msg
func (s *LogSender) Send(ctx context.Context, msg *models.NotificationMessage, requestID string) error {
	s.logger.Info("notification_logged", msg.Subject(), requestID, map[string]interface{}{
		"order_id":   msg.OrderID,
		"event":      msg.Event,
		"recipient":  msg.Email,
		"old_status": msg.OldStatus,
		"new_status": msg.NewStatus,
	})
	return nil
}

// FormatNotification renders the email body for msg
func FormatNotification(msg *models.NotificationMessage) string {
	var b strings.Builder
	name := msg.Username
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)

	switch msg.Event {
	case models.EventOrderPlaced:
		fmt.Fprintf(&b, "Your order #%d has been placed. Total: %s.\n", msg.OrderID, msg.TotalAmount.StringFixed(2))
	case models.EventOrderCancelled:
		fmt.Fprintf(&b, "Your order #%d has been cancelled.\n", msg.OrderID)
	default:
		fmt.Fprintf(&b, "Your order #%d moved from %s to %s.\n", msg.OrderID, msg.OldStatus, msg.NewStatus)
	}

	fmt.Fprintf(&b, "\nUpdated at %s UTC.\n", msg.Timestamp.UTC().Format("2006-01-02 15:04:05"))
	return b.String()
}
