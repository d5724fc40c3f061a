package models

import (
	"time"
)

// OrderPlacedMessage is published once an order has been placed and persisted
type OrderPlacedMessage struct {
	OrderID           string      `json:"order_id"`
	UserID            string      `json:"user_id"`
	RestaurantID      string      `json:"restaurant_id"`
	RestaurantName    string      `json:"restaurant_name"`
	Restaurant        Coordinates `json:"restaurant_location"`
	Destination       Coordinates `json:"delivery_location"`
	ItemCount         int         `json:"item_count"`
	Total             float64     `json:"total"`
	PaymentType       PaymentType `json:"payment_type"`
	PromoCode         string      `json:"promo_code,omitempty"`
	PlacedAt          time.Time   `json:"placed_at"`
	EstimatedDelivery time.Time   `json:"estimated_delivery"`
}

// StatusUpdateMessage represents a status update notification
type StatusUpdateMessage struct {
	OrderID           string      `json:"order_id"`
	OldStatus         OrderStatus `json:"old_status"`
	NewStatus         OrderStatus `json:"new_status"`
	ChangedBy         string      `json:"changed_by"`
	Timestamp         time.Time   `json:"timestamp"`
	EstimatedDelivery *time.Time  `json:"estimated_delivery,omitempty"`
	DriverName        string      `json:"driver_name,omitempty"`
}

// LocationUpdateMessage carries a simulated driver position
type LocationUpdateMessage struct {
	OrderID    string      `json:"order_id"`
	DriverID   string      `json:"driver_id"`
	Location   Coordinates `json:"location"`
	ETAMinutes int         `json:"eta_minutes"`
	Timestamp  time.Time   `json:"timestamp"`
}

// NewOrderPlacedMessage builds the event published after checkout
func NewOrderPlacedMessage(order *Order) *OrderPlacedMessage {
	return &OrderPlacedMessage{
		OrderID:           order.ID,
		UserID:            order.UserID,
		RestaurantID:      order.Restaurant.ID,
		RestaurantName:    order.Restaurant.Name,
		Restaurant:        order.Restaurant.Coordinates,
		Destination:       order.DeliveryAddress.Coordinates,
		ItemCount:         order.ItemCount(),
		Total:             order.Total,
		PaymentType:       order.PaymentMethod.Type,
		PromoCode:         order.PromoCode,
		PlacedAt:          order.CreatedAt,
		EstimatedDelivery: order.EstimatedDelivery,
	}
}

// CreateStatusUpdateMessage creates a StatusUpdateMessage for order status changes
func CreateStatusUpdateMessage(orderID string, oldStatus, newStatus OrderStatus, changedBy string, at time.Time, estimatedDelivery *time.Time) *StatusUpdateMessage {
	return &StatusUpdateMessage{
		OrderID:           orderID,
		OldStatus:         oldStatus,
		NewStatus:         newStatus,
		ChangedBy:         changedBy,
		Timestamp:         at.UTC(),
		EstimatedDelivery: estimatedDelivery,
	}
}

// Routing keys used on the orders topic exchange
const (
	RoutingKeyOrderPlaced = "orders.placed"
	RoutingKeyDriverMoved = "orders.location"
)
