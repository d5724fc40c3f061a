package models

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// OrderItem is a line of an order: menu item, quantity, chosen customizations
// and the computed line price.
type OrderItem struct {
	MenuItem       MenuItem        `json:"menu_item"`
	Quantity       int             `json:"quantity"`
	Customizations []Customization `json:"customizations,omitempty"`
	SpecialNotes   string          `json:"special_notes,omitempty"`
	LinePrice      float64         `json:"line_price"`
}

// Order is a placed purchase
type Order struct {
	ID                string                    `json:"id"`
	UserID            string                    `json:"user_id"`
	Restaurant        Restaurant                `json:"restaurant"`
	Items             []OrderItem               `json:"items"`
	Status            OrderStatus               `json:"status"`
	StatusTimestamps  map[OrderStatus]time.Time `json:"status_timestamps,omitempty"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
	EstimatedDelivery time.Time                 `json:"estimated_delivery"`
	DeliveryAddress   Address                   `json:"delivery_address"`
	PaymentMethod     PaymentMethod             `json:"payment_method"`
	Subtotal          float64                   `json:"subtotal"`
	DeliveryFee       float64                   `json:"delivery_fee"`
	Tax               float64                   `json:"tax"`
	Discount          *float64                  `json:"discount,omitempty"`
	Total             float64                   `json:"total"`
	PromoCode         string                    `json:"promo_code,omitempty"`
	Driver            *Driver                   `json:"driver,omitempty"`
}

// DiscountAmount returns the discount, zero when none was applied
func (o *Order) DiscountAmount() float64 {
	if o.Discount == nil {
		return 0
	}
	return *o.Discount
}

// ItemCount returns the number of units across all lines
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// Clone returns a deep copy so callers cannot mutate store-owned state
func (o Order) Clone() Order {
	c := o
	c.Items = make([]OrderItem, len(o.Items))
	for i, item := range o.Items {
		c.Items[i] = item
		c.Items[i].Customizations = append([]Customization(nil), item.Customizations...)
	}
	if o.StatusTimestamps != nil {
		c.StatusTimestamps = make(map[OrderStatus]time.Time, len(o.StatusTimestamps))
		for k, v := range o.StatusTimestamps {
			c.StatusTimestamps[k] = v
		}
	}
	if o.Discount != nil {
		d := *o.Discount
		c.Discount = &d
	}
	if o.Restaurant.DeliveryFee != nil {
		fee := *o.Restaurant.DeliveryFee
		c.Restaurant.DeliveryFee = &fee
	}
	if o.Driver != nil {
		d := *o.Driver
		c.Driver = &d
	}
	return c
}

// GenerateOrderID returns an id in the format ORD-<base36 unix ms>-<base36 random>
func GenerateOrderID(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	random := strconv.FormatUint(rand.Uint64N(1<<46), 36)
	return strings.ToUpper("ORD-" + ts + "-" + random)
}
