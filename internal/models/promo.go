package models

import "time"

// DiscountType is how a promo code reduces the subtotal
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// PromoCode is a discount rule identified by a code string.
// Value is a rate in [0,1] for percentage codes and a dollar amount for fixed ones.
// MaxDiscount, ExpiresAt and UsageLimit are unset when zero/nil.
type PromoCode struct {
	Code        string       `json:"code"`
	Type        DiscountType `json:"type"`
	Value       float64      `json:"value"`
	MinOrder    float64      `json:"min_order"`
	MaxDiscount float64      `json:"max_discount,omitempty"`
	ExpiresAt   *time.Time   `json:"expires_at,omitempty"`
	UsageLimit  int          `json:"usage_limit,omitempty"`
	Description string       `json:"description,omitempty"`
}

// Expired reports whether the code has expired at now
func (p *PromoCode) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}
