package models

import "time"

// OrderRating is the customer's feedback on a delivered order
type OrderRating struct {
	OrderID      string    `json:"order_id"`
	FoodRating   int       `json:"food_rating"`
	DriverRating int       `json:"driver_rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NotificationType groups in-app notifications
type NotificationType string

const (
	NotificationOrderStatus NotificationType = "order_status"
	NotificationPromo       NotificationType = "promo"
	NotificationSystem      NotificationType = "system"
)

// Notification is an in-app message shown in the notification list
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	OrderID   string           `json:"order_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	Read      bool             `json:"read"`
}
