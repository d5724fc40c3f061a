package notification

import (
	"fmt"

	"food-ordering/internal/models"
)

// FormatStatusUpdate returns the title and body of the in-app notification
// for a status change.
func FormatStatusUpdate(msg *models.StatusUpdateMessage) (string, string) {
	title := msg.NewStatus.Label()

	var body string
	switch msg.NewStatus {
	case models.StatusConfirmed:
		body = fmt.Sprintf("The restaurant has accepted order %s.", msg.OrderID)
	case models.StatusPreparing:
		if msg.EstimatedDelivery != nil {
			body = fmt.Sprintf("Order %s is being prepared. Estimated delivery: %s.",
				msg.OrderID, msg.EstimatedDelivery.Format("15:04"))
		} else {
			body = fmt.Sprintf("Order %s is being prepared.", msg.OrderID)
		}
	case models.StatusReady:
		body = fmt.Sprintf("Order %s is ready and waiting for a driver.", msg.OrderID)
	case models.StatusPickedUp:
		if msg.DriverName != "" {
			body = fmt.Sprintf("%s picked up order %s.", msg.DriverName, msg.OrderID)
		} else {
			body = fmt.Sprintf("Order %s has been picked up.", msg.OrderID)
		}
	case models.StatusOnTheWay:
		body = fmt.Sprintf("Order %s is on its way to you.", msg.OrderID)
	case models.StatusDelivered:
		body = fmt.Sprintf("Order %s has been delivered. Enjoy your meal!", msg.OrderID)
	case models.StatusCancelled:
		body = fmt.Sprintf("Order %s has been cancelled.", msg.OrderID)
	case models.StatusPending:
		body = fmt.Sprintf("Order %s has been placed.", msg.OrderID)
	default:
		body = fmt.Sprintf("Order %s status changed from '%s' to '%s'.",
			msg.OrderID, msg.OldStatus, msg.NewStatus)
	}

	return title, body
}

// formatConsoleLine renders a status change for the subscriber's stdout feed
func formatConsoleLine(msg *models.StatusUpdateMessage) string {
	timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")
	_, body := FormatStatusUpdate(msg)

	var icon string
	switch msg.NewStatus {
	case models.StatusPreparing:
		icon = "🍳"
	case models.StatusReady:
		icon = "✅"
	case models.StatusPickedUp, models.StatusOnTheWay:
		icon = "🚗"
	case models.StatusDelivered:
		icon = "🎉"
	case models.StatusCancelled:
		icon = "❌"
	default:
		icon = "📋"
	}

	return fmt.Sprintf("%s [%s] %s", icon, timestamp, body)
}
