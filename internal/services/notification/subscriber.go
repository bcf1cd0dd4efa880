package notification

import (
	"context"
	"fmt"

	"canteen-system/internal/logger"
	"canteen-system/internal/messaging"
	"canteen-system/internal/models"
)

// Consumer delivers queued messages to a handler until its context ends
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
}

// Subscriber turns notification messages into emails
type Subscriber struct {
	consumer Consumer
	sender   Sender
	logger   *logger.Logger
}

// NewSubscriber creates a new notification subscriber
func NewSubscriber(consumer Consumer, sender Sender, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		sender:   sender,
		logger:   log,
	}
}

// Start consumes notifications until ctx is cancelled
func (s *Subscriber) Start(ctx context.Context) error {
	s.logger.Info("service_started", "Notification subscriber started", "", nil)
	if err := s.consumer.StartConsuming(ctx, s.handleNotification); err != nil {
		return fmt.Errorf("notification consumer failed: %w", err)
	}
	s.logger.Info("service_stopped", "Notification subscriber stopped", "", nil)
	return nil
}

// handleNotification delivers one message. Returning an error lets the consumer requeue it.
func (s *Subscriber) handleNotification(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var msg models.NotificationMessage
	if err := messaging.ParseMessage(body, &msg); err != nil {
		// a malformed body never parses, so ack it instead of requeueing
		s.logger.Error("message_parsing_failed", "Failed to parse notification message", requestID, err, nil)
		return nil
	}

	s.logger.Debug("notification_received", "Received order notification", requestID, map[string]interface{}{
		"order_id":   msg.OrderID,
		"event":      msg.Event,
		"new_status": msg.NewStatus,
	})

	if msg.Email == "" {
		s.logger.Warn("notification_skipped", "User has no email address", requestID, map[string]interface{}{
			"order_id": msg.OrderID,
			"user_id":  msg.UserID,
		})
		return nil
	}

	return s.sender.Send(ctx, &msg, requestID)
}
