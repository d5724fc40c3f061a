// Package payment owns the saved payment methods and the checkout selection.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
	"food-ordering/internal/storage"
)

var ErrNotFound = errors.New("payment method not found")

// Store holds saved payment methods. At most one method is default, and
// exactly one when the collection is non-empty.
type Store struct {
	kv  storage.Store
	log *logger.Logger

	mu         sync.RWMutex
	methods    []models.PaymentMethod
	selectedID string
}

func NewStore(kv storage.Store, log *logger.Logger) *Store {
	return &Store{kv: kv, log: log}
}

// Load restores saved methods from storage
func (s *Store) Load(ctx context.Context) error {
	var methods []models.PaymentMethod
	if _, err := storage.LoadJSON(ctx, s.kv, storage.KeyPaymentMethods, &methods); err != nil {
		return fmt.Errorf("failed to load payment methods: %w", err)
	}

	normalizeDefault(methods)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods = methods
	s.selectedID = ""

	s.log.Debug("payment_methods_loaded", "Payment methods restored", "", map[string]interface{}{
		"count": len(methods),
	})
	return nil
}

// AddPaymentMethod saves m. The first method always becomes the default,
// and a method added as default takes the flag from the previous one.
func (s *Store) AddPaymentMethod(ctx context.Context, m models.PaymentMethod) (models.PaymentMethod, error) {
	if m.ID == "" {
		m.ID = "pm_" + uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.methods {
		if existing.ID == m.ID {
			return models.PaymentMethod{}, fmt.Errorf("payment method %s already exists", m.ID)
		}
	}

	prev := s.snapshot()
	if len(s.methods) == 0 {
		m.IsDefault = true
	}
	if m.IsDefault {
		for i := range s.methods {
			s.methods[i].IsDefault = false
		}
	}
	s.methods = append(s.methods, m)

	if err := s.persist(ctx); err != nil {
		s.methods = prev
		return models.PaymentMethod{}, err
	}

	s.log.Info("payment_method_added", "Payment method saved", "", map[string]interface{}{
		"payment_method_id": m.ID,
		"type":              m.Type,
		"is_default":        m.IsDefault,
	})
	return m, nil
}

// RemovePaymentMethod deletes a method. Removing the default promotes the
// first remaining method; removing the selected method clears the selection.
func (s *Store) RemovePaymentMethod(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}

	prev := s.snapshot()
	prevSelected := s.selectedID
	removed := s.methods[idx]

	s.methods = append(s.methods[:idx], s.methods[idx+1:]...)
	if removed.IsDefault && len(s.methods) > 0 {
		s.methods[0].IsDefault = true
	}
	if s.selectedID == id {
		s.selectedID = ""
	}

	if err := s.persist(ctx); err != nil {
		s.methods = prev
		s.selectedID = prevSelected
		return err
	}

	s.log.Info("payment_method_removed", "Payment method removed", "", map[string]interface{}{
		"payment_method_id": id,
		"was_default":       removed.IsDefault,
	})
	return nil
}

// SetDefaultPaymentMethod moves the default flag to id
func (s *Store) SetDefaultPaymentMethod(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return ErrNotFound
	}

	prev := s.snapshot()
	for i := range s.methods {
		s.methods[i].IsDefault = s.methods[i].ID == id
	}

	if err := s.persist(ctx); err != nil {
		s.methods = prev
		return err
	}
	return nil
}

// SelectPaymentMethod picks the method used for the current checkout.
// models.CashPaymentID selects cash on delivery.
func (s *Store) SelectPaymentMethod(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != models.CashPaymentID && s.indexOf(id) < 0 {
		return ErrNotFound
	}
	s.selectedID = id
	return nil
}

// ClearSelection forgets the checkout selection
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = ""
}

func (s *Store) GetDefaultPaymentMethod() (models.PaymentMethod, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.methods {
		if m.IsDefault {
			return m, true
		}
	}
	return models.PaymentMethod{}, false
}

func (s *Store) GetSelectedPaymentMethod() (models.PaymentMethod, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedID == "" {
		return models.PaymentMethod{}, false
	}
	if s.selectedID == models.CashPaymentID {
		return models.CashPayment(), true
	}
	if idx := s.indexOf(s.selectedID); idx >= 0 {
		return s.methods[idx], true
	}
	return models.PaymentMethod{}, false
}

func (s *Store) GetPaymentMethodByID(id string) (models.PaymentMethod, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.methods[idx], true
	}
	return models.PaymentMethod{}, false
}

// GetSavedCards returns the saved methods of type card
func (s *Store) GetSavedCards() []models.PaymentMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cards := make([]models.PaymentMethod, 0, len(s.methods))
	for _, m := range s.methods {
		if m.Type == models.PaymentCard {
			cards = append(cards, m)
		}
	}
	return cards
}

// List returns every saved method in insertion order
func (s *Store) List() []models.PaymentMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// ClearPaymentMethods removes every saved method and the stored copy
func (s *Store) ClearPaymentMethods(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(ctx, storage.KeyPaymentMethods); err != nil {
		return fmt.Errorf("failed to clear payment methods: %w", err)
	}
	s.methods = nil
	s.selectedID = ""
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, m := range s.methods {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []models.PaymentMethod {
	out := make([]models.PaymentMethod, len(s.methods))
	copy(out, s.methods)
	return out
}

func (s *Store) persist(ctx context.Context) error {
	if err := storage.SaveJSON(ctx, s.kv, storage.KeyPaymentMethods, s.methods); err != nil {
		s.log.Error("payment_methods_persist_failed", "Failed to save payment methods", "", err, nil)
		return err
	}
	return nil
}

// normalizeDefault keeps the first default flag and drops the rest. With no
// default at all, the first method is promoted.
func normalizeDefault(methods []models.PaymentMethod) {
	seen := false
	for i := range methods {
		if methods[i].IsDefault && !seen {
			seen = true
			continue
		}
		methods[i].IsDefault = false
	}
	if !seen && len(methods) > 0 {
		methods[0].IsDefault = true
	}
}
