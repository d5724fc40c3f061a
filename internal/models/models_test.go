package models

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus_ReachesDeliveredInSixSteps(t *testing.T) {
	status := StatusPending
	steps := 0
	for {
		next, ok := NextStatus(status)
		if !ok {
			break
		}
		status = next
		steps++
		require.LessOrEqual(t, steps, 6, "status machine did not terminate")
	}

	assert.Equal(t, 6, steps)
	assert.Equal(t, StatusDelivered, status)

	for i := 0; i < 3; i++ {
		_, ok := NextStatus(StatusDelivered)
		assert.False(t, ok)
	}
}

func TestNextStatus_CancelledIsAbsorbing(t *testing.T) {
	_, ok := NextStatus(StatusCancelled)
	assert.False(t, ok)

	for _, s := range AllStatuses() {
		next, ok := NextStatus(s)
		if ok {
			assert.NotEqual(t, StatusCancelled, next, "cancelled reached from %s", s)
		}
	}
}

func TestShouldHaveDriver(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{StatusPending, false},
		{StatusConfirmed, false},
		{StatusPreparing, false},
		{StatusReady, true},
		{StatusPickedUp, true},
		{StatusOnTheWay, true},
		{StatusDelivered, true},
		{StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldHaveDriver(tt.status))
		})
	}
}

func TestIsComplete(t *testing.T) {
	for _, s := range AllStatuses() {
		want := s == StatusDelivered || s == StatusCancelled
		assert.Equal(t, want, IsComplete(s), string(s))
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"forward step", StatusPending, StatusConfirmed, true},
		{"skip a step", StatusPending, StatusPreparing, false},
		{"regress", StatusOnTheWay, StatusPreparing, false},
		{"same status", StatusReady, StatusReady, false},
		{"cancel pending", StatusPending, StatusCancelled, true},
		{"cancel on the way", StatusOnTheWay, StatusCancelled, true},
		{"cancel delivered", StatusDelivered, StatusCancelled, false},
		{"cancel cancelled", StatusCancelled, StatusCancelled, false},
		{"leave cancelled", StatusCancelled, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("ON_THE_WAY")
	require.NoError(t, err)
	assert.Equal(t, StatusOnTheWay, s)

	_, err = ParseOrderStatus("cooking")
	assert.Error(t, err)
}

func TestGenerateOrderID_Format(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^ORD-[0-9A-Z]+-[0-9A-Z]+$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := GenerateOrderID(now)
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestOrder_CloneIsDeep(t *testing.T) {
	discount := 2.5
	order := Order{
		ID:               "ORD-1",
		Items:            []OrderItem{{MenuItem: MenuItem{ID: "m1"}, Quantity: 2, Customizations: []Customization{{ID: "c1"}}}},
		StatusTimestamps: map[OrderStatus]time.Time{StatusPending: time.Now()},
		Discount:         &discount,
	}

	clone := order.Clone()
	clone.Items[0].Quantity = 9
	clone.Items[0].Customizations[0].ID = "changed"
	clone.StatusTimestamps[StatusConfirmed] = time.Now()
	*clone.Discount = 0

	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "c1", order.Items[0].Customizations[0].ID)
	assert.Len(t, order.StatusTimestamps, 1)
	assert.Equal(t, 2.5, order.DiscountAmount())
}

func TestNewOrderPlacedMessage(t *testing.T) {
	order := &Order{
		ID:            "ORD-1",
		UserID:        "u1",
		Restaurant:    Restaurant{ID: "r1", Name: "Pasta Place"},
		Items:         []OrderItem{{Quantity: 2}, {Quantity: 1}},
		PaymentMethod: CashPayment(),
		Total:         31.5,
	}

	msg := NewOrderPlacedMessage(order)
	assert.Equal(t, "ORD-1", msg.OrderID)
	assert.Equal(t, 3, msg.ItemCount)
	assert.Equal(t, PaymentCash, msg.PaymentType)
}
