package promo

import (
	"context"
	"errors"
	"sync"

	"food-ordering/internal/models"
)

var (
	// ErrValidationInFlight is returned when a code is submitted while another is being checked
	ErrValidationInFlight = errors.New("promo validation already in progress")
	// ErrStaleResult is returned when the session was cleared while the request was in flight
	ErrStaleResult = errors.New("promo validation result discarded")
)

// Checker validates a code against a subtotal
type Checker interface {
	Validate(ctx context.Context, code string, subtotal float64) (Result, error)
}

// Session is the promo section of a checkout: at most one validation in
// flight, and the latest request wins.
type Session struct {
	checker Checker

	mu         sync.Mutex
	generation uint64
	validating bool
	applied    *models.PromoCode
	errMsg     string
}

// NewSession creates an empty promo section
func NewSession(checker Checker) *Session {
	return &Session{checker: checker}
}

// Apply validates code and, when valid, applies it
func (s *Session) Apply(ctx context.Context, code string, subtotal float64) (Result, error) {
	s.mu.Lock()
	if s.validating {
		s.mu.Unlock()
		return Result{}, ErrValidationInFlight
	}
	s.validating = true
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	result, err := s.checker.Validate(ctx, code, subtotal)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return result, ErrStaleResult
	}
	s.validating = false

	if err != nil {
		s.errMsg = result.Error
		return result, err
	}
	if !result.IsValid {
		s.applied = nil
		s.errMsg = result.Error
		return result, nil
	}

	promo := *result.PromoCode
	s.applied = &promo
	s.errMsg = ""
	return result, nil
}

// Clear removes the applied code and discards any in-flight validation
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.validating = false
	s.applied = nil
	s.errMsg = ""
}

// Applied returns a copy of the applied code
func (s *Session) Applied() (*models.PromoCode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applied == nil {
		return nil, false
	}
	promo := *s.applied
	return &promo, true
}

// Error returns the inline error of the last validation
func (s *Session) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// IsValidating reports whether a validation is in flight
func (s *Session) IsValidating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validating
}

// Discount returns the discount for subtotal. It is zero when no code is
// applied or the subtotal has dropped below the code's minimum.
func (s *Session) Discount(subtotal float64) float64 {
	promo, ok := s.Applied()
	if !ok || subtotal < promo.MinOrder {
		return 0
	}
	return CalculateDiscount(promo, subtotal)
}
