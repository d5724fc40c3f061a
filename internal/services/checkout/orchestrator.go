// Package checkout turns the cart into a placed order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
	"food-ordering/internal/pricing"
	"food-ordering/internal/validation"
)

const defaultDeliveryMinutes = 45

// AddressSource provides the address chosen for delivery
type AddressSource interface {
	Selected() (models.Address, bool)
}

// CartSource is the cart being checked out
type CartSource interface {
	Items() []models.OrderItem
	Restaurant() (models.Restaurant, bool)
	Subtotal() float64
	IsEmpty() bool
	Clear()
}

// PaymentSource resolves how the order is paid
type PaymentSource interface {
	GetSelectedPaymentMethod() (models.PaymentMethod, bool)
	GetDefaultPaymentMethod() (models.PaymentMethod, bool)
}

// UserSource provides the signed-in customer
type UserSource interface {
	Current() (models.User, bool)
}

// OrderSink stores placed orders
type OrderSink interface {
	Add(ctx context.Context, order models.Order) error
}

// PromoSource is the promo section of the checkout screen
type PromoSource interface {
	Applied() (*models.PromoCode, bool)
	Discount(subtotal float64) float64
}

// UsageRecorder counts promo redemptions
type UsageRecorder interface {
	RecordUsage(code string)
}

// OrderPublisher announces placed orders to downstream consumers
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, msg *models.OrderPlacedMessage) error
}

// Deps wires the orchestrator to the stores it reads and writes.
// Promo, Usage, Publishers and Navigate are optional.
type Deps struct {
	Addresses  AddressSource
	Cart       CartSource
	Payments   PaymentSource
	Users      UserSource
	Orders     OrderSink
	Placer     Placer
	Promo      PromoSource
	Usage      UsageRecorder
	Publishers []OrderPublisher

	// Navigate is called with the placed order id once the order is stored
	Navigate func(orderID string)

	Now                     func() time.Time
	FallbackDeliveryMinutes int
}

// Failure is the error banner state of the checkout screen
type Failure struct {
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// Orchestrator runs the place-order flow. At most one placement runs at a time.
type Orchestrator struct {
	deps Deps
	log  *logger.Logger

	mu      sync.Mutex
	placing bool
	failure *Failure
}

func NewOrchestrator(deps Deps, log *logger.Logger) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.FallbackDeliveryMinutes <= 0 {
		deps.FallbackDeliveryMinutes = defaultDeliveryMinutes
	}
	return &Orchestrator{deps: deps, log: log}
}

// PlaceOrder validates the checkout, submits the order and, on success,
// stores it, empties the cart and navigates to tracking. Local state is
// untouched on any failure.
func (o *Orchestrator) PlaceOrder(ctx context.Context) (models.Order, error) {
	requestID := logger.GenerateRequestID()

	o.mu.Lock()
	if o.placing {
		o.mu.Unlock()
		return models.Order{}, ErrPlacementInFlight
	}
	o.mu.Unlock()

	in, err := o.validate()
	if err != nil {
		o.fail(err)
		o.log.Warn("checkout_validation_failed", err.Message, requestID, map[string]interface{}{
			"kind": err.Kind,
		})
		return models.Order{}, err
	}

	o.mu.Lock()
	if o.placing {
		o.mu.Unlock()
		return models.Order{}, ErrPlacementInFlight
	}
	o.placing = true
	o.failure = nil
	o.mu.Unlock()

	order := o.buildOrder(in)

	o.log.Info("order_placement_started", fmt.Sprintf("Placing order %s", order.ID), requestID, map[string]interface{}{
		"order_id":      order.ID,
		"restaurant_id": order.Restaurant.ID,
		"total":         order.Total,
		"payment_type":  order.PaymentMethod.Type,
	})

	placedID, perr := o.deps.Placer.PlaceOrder(ctx, order)
	if perr != nil {
		cerr := newError(KindOrderPlacementFailed, failureMessage(perr), perr)
		o.finish(cerr)
		o.log.Error("order_placement_failed", "Order placement failed", requestID, perr, map[string]interface{}{
			"order_id": order.ID,
		})
		return models.Order{}, cerr
	}
	if placedID != "" {
		order.ID = placedID
	}

	if err := o.deps.Orders.Add(ctx, order); err != nil {
		cerr := newError(KindOrderPlacementFailed, "Order could not be saved", err)
		o.finish(cerr)
		o.log.Error("order_save_failed", "Failed to store placed order", requestID, err, map[string]interface{}{
			"order_id": order.ID,
		})
		return models.Order{}, cerr
	}

	o.deps.Cart.Clear()
	o.finish(nil)

	o.log.Info("order_placed", fmt.Sprintf("Order %s placed", order.ID), requestID, map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total,
	})

	if o.deps.Navigate != nil {
		o.deps.Navigate(order.ID)
	}

	o.afterPlacement(ctx, &order, requestID)
	return order, nil
}

// Retry re-runs the whole flow, validation included
func (o *Orchestrator) Retry(ctx context.Context) (models.Order, error) {
	return o.PlaceOrder(ctx)
}

// Dismiss clears the failure banner and leaves everything else as it is
func (o *Orchestrator) Dismiss() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failure = nil
}

func (o *Orchestrator) IsPlacingOrder() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.placing
}

// Failure returns the last failure, if it has not been dismissed
func (o *Orchestrator) Failure() (Failure, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failure == nil {
		return Failure{}, false
	}
	return *o.failure, true
}

// Summary returns the price breakdown of the current cart
func (o *Orchestrator) Summary() pricing.Breakdown {
	subtotal := o.deps.Cart.Subtotal()
	var fee *float64
	if r, ok := o.deps.Cart.Restaurant(); ok {
		fee = r.DeliveryFee
	}
	return pricing.Summarize(subtotal, fee, o.discount(subtotal))
}

type checkoutInput struct {
	address    models.Address
	items      []models.OrderItem
	payment    models.PaymentMethod
	restaurant models.Restaurant
	user       models.User
}

func (o *Orchestrator) validate() (checkoutInput, *Error) {
	var in checkoutInput

	addr, ok := o.deps.Addresses.Selected()
	if !ok {
		return in, newError(KindMissingAddress, "Please select a delivery address", nil)
	}
	if err := validation.ValidateAddress(&addr); err != nil {
		var verr validation.ValidationError
		if errors.As(err, &verr) {
			return in, newError(KindInvalidAddress, verr.Message, err)
		}
		return in, newError(KindInvalidAddress, "Delivery address is incomplete", err)
	}
	in.address = addr

	if o.deps.Cart.IsEmpty() {
		return in, newError(KindEmptyCart, "Your cart is empty", nil)
	}
	in.items = o.deps.Cart.Items()

	payment, ok := o.resolvePayment()
	if !ok {
		return in, newError(KindMissingPayment, "Please select a payment method", nil)
	}
	in.payment = payment

	restaurant, ok := o.deps.Cart.Restaurant()
	if !ok {
		return in, newError(KindMissingRestaurant, "Restaurant information is missing", nil)
	}
	in.restaurant = restaurant

	user, ok := o.deps.Users.Current()
	if !ok {
		return in, newError(KindMissingUser, "Please sign in to place an order", nil)
	}
	in.user = user

	return in, nil
}

// resolvePayment prefers the explicit selection (cash included) over the saved default
func (o *Orchestrator) resolvePayment() (models.PaymentMethod, bool) {
	if m, ok := o.deps.Payments.GetSelectedPaymentMethod(); ok {
		return m, true
	}
	return o.deps.Payments.GetDefaultPaymentMethod()
}

func (o *Orchestrator) buildOrder(in checkoutInput) models.Order {
	now := o.deps.Now()

	var subtotal float64
	for _, item := range in.items {
		subtotal += item.LinePrice
	}
	discount := o.discount(subtotal)
	totals := pricing.Summarize(subtotal, in.restaurant.DeliveryFee, discount)

	minutes := in.restaurant.DeliveryTimeMax
	if minutes <= 0 {
		minutes = o.deps.FallbackDeliveryMinutes
	}

	order := models.Order{
		ID:                models.GenerateOrderID(now),
		UserID:            in.user.ID,
		Restaurant:        in.restaurant,
		Items:             in.items,
		Status:            models.StatusPending,
		StatusTimestamps:  map[models.OrderStatus]time.Time{models.StatusPending: now},
		CreatedAt:         now,
		UpdatedAt:         now,
		EstimatedDelivery: now.Add(time.Duration(minutes) * time.Minute),
		DeliveryAddress:   in.address,
		PaymentMethod:     in.payment,
		Subtotal:          totals.Subtotal,
		DeliveryFee:       totals.DeliveryFee,
		Tax:               totals.Tax,
		Total:             totals.Total,
	}
	if totals.Discount > 0 {
		d := totals.Discount
		order.Discount = &d
		if code, ok := o.appliedCode(); ok {
			order.PromoCode = code
		}
	}
	return order
}

func (o *Orchestrator) discount(subtotal float64) float64 {
	if o.deps.Promo == nil {
		return 0
	}
	return o.deps.Promo.Discount(subtotal)
}

func (o *Orchestrator) appliedCode() (string, bool) {
	if o.deps.Promo == nil {
		return "", false
	}
	p, ok := o.deps.Promo.Applied()
	if !ok {
		return "", false
	}
	return p.Code, true
}

// afterPlacement runs the steps whose failure must not undo a placed order
func (o *Orchestrator) afterPlacement(ctx context.Context, order *models.Order, requestID string) {
	if order.PromoCode != "" && o.deps.Usage != nil {
		o.deps.Usage.RecordUsage(order.PromoCode)
	}

	msg := models.NewOrderPlacedMessage(order)
	for _, p := range o.deps.Publishers {
		if err := p.PublishOrderPlaced(ctx, msg); err != nil {
			o.log.Error("order_publish_failed", "Failed to publish placed order", requestID, err, map[string]interface{}{
				"order_id": order.ID,
			})
		}
	}
}

func (o *Orchestrator) fail(err *Error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failure = &Failure{Message: err.Message, Retryable: err.Retryable()}
}

// finish leaves the placing state, recording err when non-nil
func (o *Orchestrator) finish(err *Error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.placing = false
	if err != nil {
		o.failure = &Failure{Message: err.Message, Retryable: err.Retryable()}
	}
}

func failureMessage(err error) string {
	if err == nil || err.Error() == "" {
		return DefaultFailureMessage
	}
	return err.Error()
}
