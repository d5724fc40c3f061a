package notification

import (
	"context"
	"fmt"
	"io"

	"food-ordering/internal/logger"
	"food-ordering/internal/messaging"
	"food-ordering/internal/models"
)

// Consumer delivers raw messages from a queue
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber handles status update messages from the notifications queue.
// Each update is printed to out and, when a store is set, added to the
// in-app notification list.
type Subscriber struct {
	consumer Consumer
	store    *Store
	out      io.Writer
	logger   *logger.Logger
}

// NewSubscriber creates a new notification subscriber. store may be nil.
func NewSubscriber(consumer Consumer, store *Store, out io.Writer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		store:    store,
		out:      out,
		logger:   log,
	}
}

// Start consumes until ctx is cancelled, then closes the consumer
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.handleNotification)

	s.logger.Info("graceful_shutdown", "Stopping notification subscriber", requestID, nil)
	if closeErr := s.consumer.Close(); closeErr != nil {
		s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, closeErr, nil)
	}

	if ctx.Err() != nil {
		return nil
	}
	return err
}

// handleNotification processes one status update message
func (s *Subscriber) handleNotification(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var statusUpdate models.StatusUpdateMessage
	if err := messaging.ParseMessage(body, &statusUpdate); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse notification message", requestID, err, nil)
		return err
	}

	s.logger.Debug("notification_received", "Received status update notification", requestID, map[string]interface{}{
		"order_id":   statusUpdate.OrderID,
		"new_status": statusUpdate.NewStatus,
		"changed_by": statusUpdate.ChangedBy,
	})

	if _, err := fmt.Fprintln(s.out, formatConsoleLine(&statusUpdate)); err != nil {
		s.logger.Error("notification_display_failed", "Failed to write notification", requestID, err, nil)
	}

	if s.store != nil {
		if err := s.store.NotifyStatus(ctx, &statusUpdate); err != nil {
			return fmt.Errorf("failed to store notification: %w", err)
		}
	}

	s.logger.Info("notification_displayed", "Notification displayed to user", requestID, map[string]interface{}{
		"order_id":   statusUpdate.OrderID,
		"old_status": statusUpdate.OldStatus,
		"new_status": statusUpdate.NewStatus,
		"timestamp":  statusUpdate.Timestamp.Format("2006-01-02 15:04:05"),
	})
	return nil
}
