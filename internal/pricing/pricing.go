// Package pricing computes order totals. Every function is pure.
package pricing

import (
	"github.com/shopspring/decimal"
)

const (
	// TaxRate applied to the subtotal
	TaxRate = 0.0875
	// DeliveryFeeMinimum is charged when the restaurant sets no fee of its own
	DeliveryFeeMinimum = 2.99
)

// Breakdown is the price summary shown on checkout and stored on the order
type Breakdown struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"delivery_fee"`
	Tax         float64 `json:"tax"`
	Discount    float64 `json:"discount"`
	Total       float64 `json:"total"`
}

// CalculateTax returns the sales tax owed on subtotal
func CalculateTax(subtotal float64) float64 {
	return subtotal * TaxRate
}

// GetDeliveryFee returns the restaurant's fee, or DeliveryFeeMinimum when it has none
func GetDeliveryFee(restaurantFee *float64) float64 {
	if restaurantFee == nil {
		return DeliveryFeeMinimum
	}
	return *restaurantFee
}

// CalculateTotal returns subtotal + deliveryFee + tax - discount
func CalculateTotal(subtotal, deliveryFee, tax, discount float64) float64 {
	return subtotal + deliveryFee + tax - discount
}

// FormatPrice renders n as "$12.34"
func FormatPrice(n float64) string {
	return "$" + decimal.NewFromFloat(n).StringFixed(2)
}

// RoundCents rounds n to the nearest cent, halves away from zero
func RoundCents(n float64) float64 {
	f, _ := decimal.NewFromFloat(n).Round(2).Float64()
	return f
}

// LinePrice returns (unit price + customization prices) * quantity, rounded to cents
func LinePrice(unitPrice float64, customizationPrices []float64, quantity int) float64 {
	unit := decimal.NewFromFloat(unitPrice)
	for _, p := range customizationPrices {
		unit = unit.Add(decimal.NewFromFloat(p))
	}
	f, _ := unit.Mul(decimal.NewFromInt(int64(quantity))).Round(2).Float64()
	return f
}

// Summarize rounds each component to cents and derives the total from them,
// so Total == Subtotal + DeliveryFee + Tax - Discount holds exactly.
func Summarize(subtotal float64, restaurantFee *float64, discount float64) Breakdown {
	b := Breakdown{
		Subtotal:    RoundCents(subtotal),
		DeliveryFee: RoundCents(GetDeliveryFee(restaurantFee)),
		Tax:         RoundCents(CalculateTax(subtotal)),
		Discount:    RoundCents(discount),
	}
	b.Total = CalculateTotal(b.Subtotal, b.DeliveryFee, b.Tax, b.Discount)
	return b
}
