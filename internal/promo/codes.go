package promo

import (
	"time"

	"food-ordering/internal/models"
)

// DefaultCodes is the code table shipped with the app
func DefaultCodes() []models.PromoCode {
	summerEnd := time.Date(2023, time.September, 1, 0, 0, 0, 0, time.UTC)

	return []models.PromoCode{
		{
			Code:        "WELCOME10",
			Type:        models.DiscountPercentage,
			Value:       0.10,
			MinOrder:    15,
			MaxDiscount: 10,
			Description: "10% off your order, up to $10",
		},
		{
			Code:        "SAVE5",
			Type:        models.DiscountFixed,
			Value:       5,
			MinOrder:    20,
			Description: "$5 off orders over $20",
		},
		{
			Code:        "HALFOFF",
			Type:        models.DiscountPercentage,
			Value:       0.50,
			MinOrder:    30,
			MaxDiscount: 15,
			UsageLimit:  1,
			Description: "50% off once, up to $15",
		},
		{
			Code:        "SUMMER2023",
			Type:        models.DiscountPercentage,
			Value:       0.20,
			MinOrder:    10,
			ExpiresAt:   &summerEnd,
			Description: "Summer special",
		},
	}
}
