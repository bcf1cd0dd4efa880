package notification

import (
	"context"

	"canteen-system/internal/models"
)

// Publisher puts a message on the notifications exchange
type Publisher interface {
	PublishNotification(ctx context.Context, message interface{}, requestID string) error
}

// Notifier publishes order events for the subscriber to deliver
type Notifier struct {
	publisher Publisher
}

// NewNotifier creates a notifier backed by publisher
func NewNotifier(publisher Publisher) *Notifier {
	return &Notifier{publisher: publisher}
}

// Notify publishes msg
func (n *Notifier) Notify(ctx context.Context, msg *models.NotificationMessage, requestID string) error {
	return n.publisher.PublishNotification(ctx, msg, requestID)
}
