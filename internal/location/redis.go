// Package location stores the latest simulated driver position per order in Redis.
package location

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"food-ordering/internal/models"
)

// positionTTL keeps stale positions from outliving their order for long
const positionTTL = time.Hour

// Redis keeps one hash per order under "<prefix>driver:<order id>"
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key(orderID string) string {
	return r.prefix + "driver:" + orderID
}

// UpdateLocation stores the driver position carried by msg
func (r *Redis) UpdateLocation(ctx context.Context, msg *models.LocationUpdateMessage) error {
	key := r.key(msg.OrderID)

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, toFields(msg))
	pipe.Expire(ctx, key, positionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store driver location for %s: %w", msg.OrderID, err)
	}
	return nil
}

// Position returns the last stored position of the order's driver
func (r *Redis) Position(ctx context.Context, orderID string) (*models.LocationUpdateMessage, bool, error) {
	fields, err := r.rdb.HGetAll(ctx, r.key(orderID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read driver location for %s: %w", orderID, err)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}

	msg, err := fromFields(orderID, fields)
	if err != nil {
		return nil, false, err
	}
	return msg, true, nil
}

// Clear drops the stored position once tracking ends
func (r *Redis) Clear(ctx context.Context, orderID string) error {
	return r.rdb.Del(ctx, r.key(orderID)).Err()
}

func toFields(msg *models.LocationUpdateMessage) map[string]interface{} {
	return map[string]interface{}{
		"driver_id":  msg.DriverID,
		"lat":        strconv.FormatFloat(msg.Location.Latitude, 'f', -1, 64),
		"lon":        strconv.FormatFloat(msg.Location.Longitude, 'f', -1, 64),
		"eta":        strconv.Itoa(msg.ETAMinutes),
		"updated_at": msg.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func fromFields(orderID string, fields map[string]string) (*models.LocationUpdateMessage, error) {
	lat, err := strconv.ParseFloat(fields["lat"], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude for %s: %w", orderID, err)
	}
	lon, err := strconv.ParseFloat(fields["lon"], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude for %s: %w", orderID, err)
	}
	eta, err := strconv.Atoi(fields["eta"])
	if err != nil {
		return nil, fmt.Errorf("invalid eta for %s: %w", orderID, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp for %s: %w", orderID, err)
	}

	return &models.LocationUpdateMessage{
		OrderID:    orderID,
		DriverID:   fields["driver_id"],
		Location:   models.Coordinates{Latitude: lat, Longitude: lon},
		ETAMinutes: eta,
		Timestamp:  ts,
	}, nil
}
