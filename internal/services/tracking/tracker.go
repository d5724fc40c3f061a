// Package tracking simulates the life of a placed order: status ticks move
// it along the happy path, location ticks move the driver toward the
// customer once the food is ready.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"food-ordering/internal/geo"
	"food-ordering/internal/logger"
	"food-ordering/internal/models"
	"food-ordering/internal/schedule"
)

const (
	DefaultStatusInterval   = 30 * time.Second
	DefaultLocationInterval = 3 * time.Second

	// driverLegSteps is the number of status ticks from READY to DELIVERED
	driverLegSteps = 3

	changedByTracker = "tracker"
	changedByManual  = "manual"
)

var ErrOrderComplete = errors.New("order is already delivered or cancelled")

// Options tunes the simulation. Zero values fall back to the defaults.
type Options struct {
	StatusInterval   time.Duration
	LocationInterval time.Duration
	SpeedKmh         float64
	Rand             *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.StatusInterval <= 0 {
		o.StatusInterval = DefaultStatusInterval
	}
	if o.LocationInterval <= 0 {
		o.LocationInterval = DefaultLocationInterval
	}
	if o.SpeedKmh <= 0 {
		o.SpeedKmh = geo.DefaultSpeedKmh
	}
	return o
}

// Snapshot is the tracking screen state of one order
type Snapshot struct {
	OrderID          string                           `json:"order_id"`
	Status           models.OrderStatus               `json:"status"`
	StatusTimestamps map[models.OrderStatus]time.Time `json:"status_timestamps"`
	Driver           *models.Driver                   `json:"driver,omitempty"`
	DriverStart      *models.Coordinates              `json:"driver_start,omitempty"`
	ETAMinutes       int                              `json:"eta_minutes"`
	Running          bool                             `json:"running"`
}

// ETA renders the remaining time for display
func (s Snapshot) ETA() string {
	return geo.FormatETA(s.ETAMinutes)
}

// Tracker runs the simulation for a single order
type Tracker struct {
	orderID           string
	restaurant        models.Coordinates
	destination       models.Coordinates
	estimatedDelivery time.Time

	sched schedule.Scheduler
	hooks Hooks
	opts  Options
	log   *logger.Logger

	mu            sync.Mutex
	status        models.OrderStatus
	timestamps    map[models.OrderStatus]time.Time
	driver        *models.Driver
	driverStart   models.Coordinates
	driverReadyAt time.Time
	etaMinutes    int
	running       bool
	statusTask    schedule.Task
	locationTask  schedule.Task
}

// NewTracker prepares a tracker for order. Nothing runs until Start.
func NewTracker(order models.Order, sched schedule.Scheduler, hooks Hooks, opts Options, log *logger.Logger) *Tracker {
	t := &Tracker{
		orderID:           order.ID,
		restaurant:        order.Restaurant.Coordinates,
		destination:       order.DeliveryAddress.Coordinates,
		estimatedDelivery: order.EstimatedDelivery,
		sched:             sched,
		hooks:             hooks,
		opts:              opts.withDefaults(),
		log:               log,
		status:            order.Status,
		timestamps:        make(map[models.OrderStatus]time.Time, len(order.StatusTimestamps)+1),
	}
	for k, v := range order.StatusTimestamps {
		t.timestamps[k] = v
	}
	if _, ok := t.timestamps[t.status]; !ok {
		t.timestamps[t.status] = sched.Now()
	}

	if models.ShouldHaveDriver(t.status) {
		if order.Driver != nil {
			d := *order.Driver
			t.driver = &d
			t.driverStart = d.Location
			t.driverReadyAt = t.readyAt()
		} else {
			t.assignDriverLocked(context.Background(), sched.Now())
		}
		if t.status == models.StatusDelivered {
			t.driver.Location = t.destination
		}
	}
	t.updateETALocked(sched.Now())
	return t
}

// OrderID returns the tracked order
func (t *Tracker) OrderID() string {
	return t.orderID
}

// Start registers the status and location ticks. It does nothing when the
// tracker is already running or the order is complete.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running || models.IsComplete(t.status) {
		return
	}
	t.running = true
	t.statusTask = t.sched.Every(t.opts.StatusInterval, t.onStatusTick)
	t.locationTask = t.sched.Every(t.opts.LocationInterval, t.onLocationTick)

	t.log.Info("tracking_started", "Order tracking started", "", map[string]interface{}{
		"order_id":          t.orderID,
		"status":            t.status,
		"status_interval":   t.opts.StatusInterval.String(),
		"location_interval": t.opts.LocationInterval.String(),
	})
}

// Stop cancels both ticks. Stopping a stopped tracker is a no-op.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Advance moves the order to its next status right away, by the same rule as
// the status tick. It reports false once the order is complete.
func (t *Tracker) Advance() (models.OrderStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.advanceLocked(changedByManual)
}

// Cancel moves the order to CANCELLED and stops the ticks
func (t *Tracker) Cancel(changedBy string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if models.IsComplete(t.status) {
		return ErrOrderComplete
	}
	if !t.transitionLocked(models.StatusCancelled, changedBy) {
		return ErrOrderComplete
	}
	t.stopLocked()
	return nil
}

// Snapshot returns a copy of the current state
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		OrderID:          t.orderID,
		Status:           t.status,
		StatusTimestamps: make(map[models.OrderStatus]time.Time, len(t.timestamps)),
		ETAMinutes:       t.etaMinutes,
		Running:          t.running,
	}
	for k, v := range t.timestamps {
		s.StatusTimestamps[k] = v
	}
	if t.driver != nil {
		d := *t.driver
		start := t.driverStart
		s.Driver = &d
		s.DriverStart = &start
	}
	return s
}

func (t *Tracker) onStatusTick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.advanceLocked(changedByTracker)
}

func (t *Tracker) onLocationTick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || t.driver == nil || !models.ShouldHaveDriver(t.status) {
		return
	}

	now := t.sched.Now()
	t.driver.Location = t.positionAt(now)
	t.updateETALocked(now)
	t.publishLocationLocked(now)
}

func (t *Tracker) advanceLocked(changedBy string) (models.OrderStatus, bool) {
	next, ok := models.NextStatus(t.status)
	if !ok {
		return t.status, false
	}
	if !t.transitionLocked(next, changedBy) {
		return t.status, false
	}
	return next, true
}

// transitionLocked applies a status change and runs the hooks. A recorder
// that refuses the transition owns the order's status from then on: the
// tracker stops and reports false.
func (t *Tracker) transitionLocked(next models.OrderStatus, changedBy string) bool {
	ctx := context.Background()
	now := t.sched.Now()
	old := t.status

	if t.hooks.Recorder != nil {
		if err := t.hooks.Recorder.UpdateStatus(ctx, t.orderID, next, changedBy, now); err != nil {
			if errors.Is(err, models.ErrInvalidTransition) {
				t.log.Warn("status_rejected", fmt.Sprintf("Order %s refused %s, tracking stopped", t.orderID, next), "", map[string]interface{}{
					"order_id":   t.orderID,
					"old_status": old,
					"new_status": next,
					"error":      err.Error(),
				})
				t.stopLocked()
				return false
			}
			t.log.Error("status_record_failed", "Failed to record status change", "", err, map[string]interface{}{
				"order_id": t.orderID,
				"status":   next,
			})
		}
	}

	t.status = next
	t.timestamps[next] = now

	if next == models.StatusReady && t.driver == nil {
		t.assignDriverLocked(ctx, now)
	}
	if next == models.StatusDelivered && t.driver != nil {
		t.driver.Location = t.destination
	}
	t.updateETALocked(now)

	t.log.Info("order_status_advanced", fmt.Sprintf("Order %s moved to %s", t.orderID, next), "", map[string]interface{}{
		"order_id":   t.orderID,
		"old_status": old,
		"new_status": next,
		"changed_by": changedBy,
	})

	var estimate *time.Time
	if !models.IsComplete(next) && !t.estimatedDelivery.IsZero() {
		e := t.estimatedDelivery
		estimate = &e
	}
	msg := models.CreateStatusUpdateMessage(t.orderID, old, next, changedBy, now, estimate)
	if t.driver != nil {
		msg.DriverName = t.driver.Name
	}
	for _, n := range t.hooks.Notifiers {
		if err := n.NotifyStatus(ctx, msg); err != nil {
			t.log.Error("status_notify_failed", "Failed to publish status change", "", err, map[string]interface{}{
				"order_id": t.orderID,
				"status":   next,
			})
		}
	}

	if next == models.StatusDelivered && t.driver != nil {
		t.publishLocationLocked(now)
	}

	if models.IsComplete(next) {
		t.stopLocked()
		if next == models.StatusDelivered && t.hooks.OnDelivered != nil {
			t.hooks.OnDelivered(t.orderID)
		}
	}
	return true
}

func (t *Tracker) assignDriverLocked(ctx context.Context, now time.Time) {
	start := geo.RandomDriverStartPosition(t.restaurant, t.opts.Rand)
	d := newDriver(t.opts.Rand, start)
	t.driver = &d
	t.driverStart = start
	t.driverReadyAt = now

	t.log.Info("driver_assigned", fmt.Sprintf("Driver %s assigned to order %s", d.Name, t.orderID), "", map[string]interface{}{
		"order_id":  t.orderID,
		"driver_id": d.ID,
	})

	if t.hooks.Recorder != nil {
		if err := t.hooks.Recorder.AssignDriver(ctx, t.orderID, d); err != nil {
			t.log.Error("driver_record_failed", "Failed to record driver", "", err, map[string]interface{}{
				"order_id": t.orderID,
			})
		}
	}
}

// positionAt interpolates the driver between its start and the customer
// over the driver leg.
func (t *Tracker) positionAt(now time.Time) models.Coordinates {
	if t.status == models.StatusDelivered {
		return t.destination
	}
	leg := time.Duration(driverLegSteps) * t.opts.StatusInterval
	progress := float64(now.Sub(t.driverReadyAt)) / float64(leg)
	return geo.InterpolateCoordinates(t.driverStart, t.destination, progress)
}

func (t *Tracker) updateETALocked(now time.Time) {
	switch {
	case t.status == models.StatusDelivered || t.status == models.StatusCancelled:
		t.etaMinutes = 0
	case t.driver != nil:
		distance := geo.CalculateDistance(t.driver.Location, t.destination)
		t.etaMinutes = geo.CalculateETAMinutes(distance, t.opts.SpeedKmh)
	case !t.estimatedDelivery.IsZero():
		t.etaMinutes = int(math.Max(0, math.Ceil(t.estimatedDelivery.Sub(now).Minutes())))
	default:
		t.etaMinutes = 0
	}
}

func (t *Tracker) publishLocationLocked(now time.Time) {
	if t.hooks.Locations == nil {
		return
	}
	msg := &models.LocationUpdateMessage{
		OrderID:    t.orderID,
		DriverID:   t.driver.ID,
		Location:   t.driver.Location,
		ETAMinutes: t.etaMinutes,
		Timestamp:  now,
	}
	if err := t.hooks.Locations.UpdateLocation(context.Background(), msg); err != nil {
		t.log.Error("location_publish_failed", "Failed to store driver location", "", err, map[string]interface{}{
			"order_id": t.orderID,
		})
	}
}

func (t *Tracker) stopLocked() {
	if t.statusTask != nil {
		t.statusTask.Stop()
		t.statusTask = nil
	}
	if t.locationTask != nil {
		t.locationTask.Stop()
		t.locationTask = nil
	}
	if t.running {
		t.running = false
		t.log.Debug("tracking_stopped", "Order tracking stopped", "", map[string]interface{}{
			"order_id": t.orderID,
			"status":   t.status,
		})
	}
}

func (t *Tracker) readyAt() time.Time {
	if ts, ok := t.timestamps[models.StatusReady]; ok {
		return ts
	}
	return t.sched.Now()
}
