package models

import (
	"errors"
	"fmt"
)

// ErrInvalidStatus reports a status outside the declared set
var ErrInvalidStatus = errors.New("invalid order status")

// ErrInvalidTransition reports a status change the order's current status does not allow
var ErrInvalidTransition = errors.New("invalid status transition")

// OrderStatus represents the fulfillment status of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusPickedUp  OrderStatus = "PICKED_UP"
	StatusOnTheWay  OrderStatus = "ON_THE_WAY"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// statusFlow is the happy path. CANCELLED is out of band.
var statusFlow = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusPickedUp,
	StatusOnTheWay,
	StatusDelivered,
}

// AllStatuses returns every status, happy path first.
func AllStatuses() []OrderStatus {
	all := make([]OrderStatus, 0, len(statusFlow)+1)
	all = append(all, statusFlow...)
	return append(all, StatusCancelled)
}

// ParseOrderStatus converts a raw string into a known status
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// Valid reports whether s is one of the declared statuses
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusPickedUp, StatusOnTheWay, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Rank is the position of s on the happy path, or -1 for CANCELLED and unknown values.
func (s OrderStatus) Rank() int {
	for i, st := range statusFlow {
		if st == s {
			return i
		}
	}
	return -1
}

// Label returns the text shown to the customer for s
func (s OrderStatus) Label() string {
	switch s {
	case StatusPending:
		return "Order placed"
	case StatusConfirmed:
		return "Order confirmed"
	case StatusPreparing:
		return "Preparing your food"
	case StatusReady:
		return "Ready for pickup"
	case StatusPickedUp:
		return "Picked up by driver"
	case StatusOnTheWay:
		return "On the way"
	case StatusDelivered:
		return "Delivered"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// NextStatus returns the status that follows current on the happy path.
// It returns false at DELIVERED and CANCELLED.
func NextStatus(current OrderStatus) (OrderStatus, bool) {
	switch current {
	case StatusPending:
		return StatusConfirmed, true
	case StatusConfirmed:
		return StatusPreparing, true
	case StatusPreparing:
		return StatusReady, true
	case StatusReady:
		return StatusPickedUp, true
	case StatusPickedUp:
		return StatusOnTheWay, true
	case StatusOnTheWay:
		return StatusDelivered, true
	case StatusDelivered, StatusCancelled:
		return "", false
	default:
		return "", false
	}
}

// ShouldHaveDriver reports whether a driver is attached to an order in status s
func ShouldHaveDriver(s OrderStatus) bool {
	switch s {
	case StatusReady, StatusPickedUp, StatusOnTheWay, StatusDelivered:
		return true
	case StatusPending, StatusConfirmed, StatusPreparing, StatusCancelled:
		return false
	default:
		return false
	}
}

// IsComplete reports whether s is terminal
func IsComplete(s OrderStatus) bool {
	switch s {
	case StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether an order may move from one status to another.
// Only the next happy-path step, or cancellation of a non-terminal order, is allowed.
func CanTransition(from, to OrderStatus) bool {
	if to == StatusCancelled {
		return from.Valid() && !IsComplete(from)
	}
	next, ok := NextStatus(from)
	return ok && next == to
}
