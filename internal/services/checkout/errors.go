package checkout

import (
	"errors"
	"fmt"
)

// Kind classifies why an order could not be placed
type Kind string

const (
	KindMissingAddress       Kind = "missing_address"
	KindInvalidAddress       Kind = "invalid_address"
	KindEmptyCart            Kind = "empty_cart"
	KindMissingPayment       Kind = "missing_payment"
	KindMissingRestaurant    Kind = "missing_restaurant"
	KindMissingUser          Kind = "missing_user"
	KindOrderPlacementFailed Kind = "order_placement_failed"
)

// DefaultFailureMessage is shown when a placement error carries no message of its own
const DefaultFailureMessage = "Failed to place order. Please try again."

// Sentinels for errors.Is. Only Kind is compared.
var (
	ErrMissingAddress       = &Error{Kind: KindMissingAddress}
	ErrInvalidAddress       = &Error{Kind: KindInvalidAddress}
	ErrEmptyCart            = &Error{Kind: KindEmptyCart}
	ErrMissingPayment       = &Error{Kind: KindMissingPayment}
	ErrMissingRestaurant    = &Error{Kind: KindMissingRestaurant}
	ErrMissingUser          = &Error{Kind: KindMissingUser}
	ErrOrderPlacementFailed = &Error{Kind: KindOrderPlacementFailed}

	// ErrPlacementInFlight rejects a second submission while one is running
	ErrPlacementInFlight = errors.New("order placement already in progress")
)

// Error is a checkout failure shown to the customer
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Retryable reports whether retrying without changing input can succeed
func (e *Error) Retryable() bool {
	return e.Kind == KindOrderPlacementFailed
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}
