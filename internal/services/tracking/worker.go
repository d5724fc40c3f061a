package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-ordering/internal/logger"
	"food-ordering/internal/messaging"
	"food-ordering/internal/models"
)

// Consumer delivers raw messages from a queue
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Worker tracks every order announced on the tracking queue
type Worker struct {
	name     string
	manager  *Manager
	consumer Consumer
	logger   *logger.Logger
}

func NewWorker(name string, manager *Manager, consumer Consumer, log *logger.Logger) *Worker {
	return &Worker{
		name:     name,
		manager:  manager,
		consumer: consumer,
		logger:   log,
	}
}

// Start consumes until ctx is cancelled, then stops every tracker
func (w *Worker) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	w.logger.Info("worker_started", fmt.Sprintf("Tracking worker %s started", w.name), requestID, map[string]interface{}{
		"worker_name": w.name,
	})

	err := w.consumer.StartConsuming(ctx, w.handleMessage)

	w.logger.Info("graceful_shutdown", "Starting graceful shutdown", requestID, map[string]interface{}{
		"active_orders": len(w.manager.Active()),
	})
	w.manager.StopAll()
	if closeErr := w.consumer.Close(); closeErr != nil {
		w.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, closeErr, nil)
	}
	w.logger.Info("graceful_shutdown", "Graceful shutdown completed", requestID, nil)

	if ctx.Err() != nil {
		return nil
	}
	return err
}

// handleMessage starts tracking one placed order
func (w *Worker) handleMessage(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var placed models.OrderPlacedMessage
	if err := messaging.ParseMessage(body, &placed); err != nil {
		w.logger.Error("message_parsing_failed", "Failed to parse order message", requestID, err, nil)
		return err
	}
	if placed.OrderID == "" {
		return messaging.Permanent(errors.New("order message without order id"))
	}

	if _, ok := w.manager.Get(placed.OrderID); ok {
		w.logger.Debug("order_already_tracked", fmt.Sprintf("Order %s is already tracked", placed.OrderID), requestID, map[string]interface{}{
			"order_id": placed.OrderID,
		})
		return nil
	}

	w.manager.Track(orderFromMessage(&placed))

	w.logger.Debug("order_tracking_started", fmt.Sprintf("Tracking order %s", placed.OrderID), requestID, map[string]interface{}{
		"order_id":      placed.OrderID,
		"restaurant_id": placed.RestaurantID,
		"total":         placed.Total,
		"processed_by":  w.name,
	})
	return nil
}

// orderFromMessage rebuilds the parts of an order the tracker needs
func orderFromMessage(msg *models.OrderPlacedMessage) models.Order {
	return models.Order{
		ID:     msg.OrderID,
		UserID: msg.UserID,
		Restaurant: models.Restaurant{
			ID:          msg.RestaurantID,
			Name:        msg.RestaurantName,
			Coordinates: msg.Restaurant,
		},
		DeliveryAddress:   models.Address{Coordinates: msg.Destination},
		Status:            models.StatusPending,
		StatusTimestamps:  map[models.OrderStatus]time.Time{models.StatusPending: msg.PlacedAt},
		CreatedAt:         msg.PlacedAt,
		UpdatedAt:         msg.PlacedAt,
		EstimatedDelivery: msg.EstimatedDelivery,
		Total:             msg.Total,
		PromoCode:         msg.PromoCode,
	}
}
