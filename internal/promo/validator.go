// Package promo validates promo codes and computes their discount.
package promo

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"food-ordering/internal/models"
	"food-ordering/internal/pricing"
)

// Result is the outcome of validating a code against a subtotal
type Result struct {
	IsValid   bool              `json:"is_valid"`
	PromoCode *models.PromoCode `json:"promo_code,omitempty"`
	Error     string            `json:"error,omitempty"`
}

const (
	msgEmpty      = "Please enter a promo code"
	msgUnknown    = "Invalid promo code"
	msgExpired    = "This promo code has expired"
	msgUsageLimit = "This promo code has reached its usage limit"
	msgCancelled  = "Promo validation was cancelled"
)

// Validator checks codes against the code table. Usage counts live in the
// validator instance.
type Validator struct {
	mu      sync.Mutex
	codes   map[string]models.PromoCode
	usage   map[string]int
	latency time.Duration
	now     func() time.Time
}

// Option configures a Validator
type Option func(*Validator)

// WithLatency sets the simulated network delay
func WithLatency(d time.Duration) Option {
	return func(v *Validator) { v.latency = d }
}

// WithClock overrides the clock used for expiry checks
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// NewValidator creates a validator over codes
func NewValidator(codes []models.PromoCode, opts ...Option) *Validator {
	v := &Validator{
		codes: make(map[string]models.PromoCode, len(codes)),
		usage: make(map[string]int),
		now:   time.Now,
	}
	for _, c := range codes {
		v.codes[normalize(c.Code)] = c
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks code against subtotal after the simulated latency.
// The returned error is non-nil only when ctx ends first.
func (v *Validator) Validate(ctx context.Context, code string, subtotal float64) (Result, error) {
	if v.latency > 0 {
		timer := time.NewTimer(v.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{Error: msgCancelled}, ctx.Err()
		case <-timer.C:
		}
	}

	key := normalize(code)
	if key == "" {
		return Result{Error: msgEmpty}, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	promo, ok := v.codes[key]
	if !ok {
		return Result{Error: msgUnknown}, nil
	}
	if promo.Expired(v.now()) {
		return Result{Error: msgExpired}, nil
	}
	if subtotal < promo.MinOrder {
		return Result{Error: fmt.Sprintf("Minimum order of %s required", pricing.FormatPrice(promo.MinOrder))}, nil
	}
	if promo.UsageLimit > 0 && v.usage[key] >= promo.UsageLimit {
		return Result{Error: msgUsageLimit}, nil
	}

	return Result{IsValid: true, PromoCode: &promo}, nil
}

// RecordUsage counts a redemption of code after an order is placed
func (v *Validator) RecordUsage(code string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.usage[normalize(code)]++
}

// CalculateDiscount returns the discount promo grants on subtotal.
// The result is never negative and never exceeds subtotal.
func CalculateDiscount(promo *models.PromoCode, subtotal float64) float64 {
	if promo == nil || subtotal <= 0 {
		return 0
	}

	var discount float64
	switch promo.Type {
	case models.DiscountPercentage:
		discount = subtotal * promo.Value
		if promo.MaxDiscount > 0 {
			discount = math.Min(discount, promo.MaxDiscount)
		}
	case models.DiscountFixed:
		discount = promo.Value
	default:
		return 0
	}

	discount = pricing.RoundCents(discount)
	return math.Max(0, math.Min(discount, subtotal))
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
