package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"food-ordering/internal/models"
)

// SaveOrder writes the order snapshot to the archive, replacing an older one
func (db *DB) SaveOrder(ctx context.Context, order *models.Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	err = db.Exec(ctx, UpsertOrderSQL,
		order.ID,
		order.UserID,
		order.Restaurant.ID,
		string(order.Status),
		order.Total,
		payload,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.ID, err)
	}
	return nil
}

// RecordStatus appends a status change to the order status log
func (db *DB) RecordStatus(ctx context.Context, orderID string, status models.OrderStatus, changedBy string, at time.Time) error {
	if err := db.Exec(ctx, InsertOrderStatusLogSQL, orderID, string(status), changedBy, at); err != nil {
		return fmt.Errorf("failed to record status for %s: %w", orderID, err)
	}
	return nil
}
