// Package order owns the placed orders and their status history.
package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
	"food-ordering/internal/storage"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrDuplicate         = errors.New("order already exists")
	ErrInvalidTransition = models.ErrInvalidTransition
)

// Archive receives a copy of every order and status change, e.g. the
// Postgres order tables. Archive failures are logged and never fail the store.
type Archive interface {
	SaveOrder(ctx context.Context, order *models.Order) error
	RecordStatus(ctx context.Context, orderID string, status models.OrderStatus, changedBy string, at time.Time) error
}

type Option func(*Store)

func WithArchive(a Archive) Option {
	return func(s *Store) { s.archive = a }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the order collection. Statuses only move forward.
type Store struct {
	kv      storage.Store
	log     *logger.Logger
	archive Archive
	now     func() time.Time

	mu     sync.RWMutex
	orders []models.Order
}

func NewStore(kv storage.Store, log *logger.Logger, opts ...Option) *Store {
	s := &Store{kv: kv, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores orders from storage
func (s *Store) Load(ctx context.Context) error {
	var orders []models.Order
	if _, err := storage.LoadJSON(ctx, s.kv, storage.KeyOrders, &orders); err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
	return nil
}

// Add persists a newly placed order
func (s *Store) Add(ctx context.Context, order models.Order) error {
	if !order.Status.Valid() {
		return fmt.Errorf("order %s: %w", order.ID, models.ErrInvalidStatus)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(order.ID) >= 0 {
		return ErrDuplicate
	}

	order = order.Clone()
	if order.StatusTimestamps == nil {
		order.StatusTimestamps = make(map[models.OrderStatus]time.Time)
	}
	if _, ok := order.StatusTimestamps[order.Status]; !ok {
		order.StatusTimestamps[order.Status] = order.CreatedAt
	}

	s.orders = append(s.orders, order)
	if err := s.persist(ctx); err != nil {
		s.orders = s.orders[:len(s.orders)-1]
		return err
	}

	s.log.Info("order_stored", "Order saved", "", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
		"total":    order.Total,
	})

	s.archiveOrder(ctx, &order)
	s.archiveStatus(ctx, order.ID, order.Status, "checkout", order.CreatedAt)
	return nil
}

// Get returns a copy of the order
func (s *Store) Get(id string) (models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.orders[idx].Clone(), true
	}
	return models.Order{}, false
}

// List returns every order, newest first
func (s *Store) List() []models.Order {
	return s.filter(func(models.Order) bool { return true })
}

// Active returns orders that are neither delivered nor cancelled, newest first
func (s *Store) Active() []models.Order {
	return s.filter(func(o models.Order) bool { return !models.IsComplete(o.Status) })
}

// UpdateStatus moves an order to status, refusing anything but the next
// status or a cancellation.
func (s *Store) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, changedBy string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}

	current := s.orders[idx]
	if !models.CanTransition(current.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}

	updated := current.Clone()
	updated.Status = status
	updated.UpdatedAt = at
	if updated.StatusTimestamps == nil {
		updated.StatusTimestamps = make(map[models.OrderStatus]time.Time)
	}
	updated.StatusTimestamps[status] = at

	s.orders[idx] = updated
	if err := s.persist(ctx); err != nil {
		s.orders[idx] = current
		return err
	}

	s.log.Info("order_status_updated", "Order status changed", "", map[string]interface{}{
		"order_id":   id,
		"old_status": current.Status,
		"new_status": status,
		"changed_by": changedBy,
	})

	s.archiveOrder(ctx, &updated)
	s.archiveStatus(ctx, id, status, changedBy, at)
	return nil
}

// Cancel cancels an order that is not yet delivered
func (s *Store) Cancel(ctx context.Context, id, changedBy string) error {
	return s.UpdateStatus(ctx, id, models.StatusCancelled, changedBy, s.now())
}

// AssignDriver attaches the courier to an order
func (s *Store) AssignDriver(ctx context.Context, id string, driver models.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}

	current := s.orders[idx]
	updated := current.Clone()
	updated.Driver = &driver

	s.orders[idx] = updated
	if err := s.persist(ctx); err != nil {
		s.orders[idx] = current
		return err
	}
	return nil
}

func (s *Store) filter(keep func(models.Order) bool) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) indexOf(id string) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) error {
	if err := storage.SaveJSON(ctx, s.kv, storage.KeyOrders, s.orders); err != nil {
		s.log.Error("orders_persist_failed", "Failed to save orders", "", err, nil)
		return err
	}
	return nil
}

func (s *Store) archiveOrder(ctx context.Context, order *models.Order) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveOrder(ctx, order); err != nil {
		s.log.Error("order_archive_failed", "Failed to archive order", "", err, map[string]interface{}{
			"order_id": order.ID,
		})
	}
}

func (s *Store) archiveStatus(ctx context.Context, id string, status models.OrderStatus, changedBy string, at time.Time) {
	if s.archive == nil {
		return
	}
	if err := s.archive.RecordStatus(ctx, id, status, changedBy, at); err != nil {
		s.log.Error("order_status_archive_failed", "Failed to archive status change", "", err, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
	}
}
