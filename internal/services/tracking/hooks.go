package tracking

import (
	"context"
	"time"

	"food-ordering/internal/models"
)

// StatusRecorder writes status changes through to the order store
type StatusRecorder interface {
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, changedBy string, at time.Time) error
	AssignDriver(ctx context.Context, orderID string, driver models.Driver) error
}

// Notifier is told about every status change, e.g. the RabbitMQ publisher,
// the Kafka event log or the in-app notification store.
type Notifier interface {
	NotifyStatus(ctx context.Context, msg *models.StatusUpdateMessage) error
}

// LocationSink receives every simulated driver position
type LocationSink interface {
	UpdateLocation(ctx context.Context, msg *models.LocationUpdateMessage) error
}

// Hooks connects a tracker to the rest of the system. Every field is optional.
// Hooks run while the tracker is locked and must not call back into it.
type Hooks struct {
	Recorder    StatusRecorder
	Notifiers   []Notifier
	Locations   LocationSink
	OnDelivered func(orderID string)
}
