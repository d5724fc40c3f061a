// Package address owns the saved delivery addresses.
package address

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
	"food-ordering/internal/storage"
	"food-ordering/internal/validation"
)

var ErrNotFound = errors.New("address not found")

// Store keeps the same default rule as saved payment methods: the first
// address is default and there is never more than one.
type Store struct {
	kv  storage.Store
	log *logger.Logger

	mu         sync.RWMutex
	addresses  []models.Address
	selectedID string
}

func NewStore(kv storage.Store, log *logger.Logger) *Store {
	return &Store{kv: kv, log: log}
}

// Load restores saved addresses and selects the default one
func (s *Store) Load(ctx context.Context) error {
	var addresses []models.Address
	if _, err := storage.LoadJSON(ctx, s.kv, storage.KeyAddresses, &addresses); err != nil {
		return fmt.Errorf("failed to load addresses: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses = addresses
	s.selectedID = ""
	for _, a := range addresses {
		if a.IsDefault {
			s.selectedID = a.ID
		}
	}
	return nil
}

// Add validates and saves addr
func (s *Store) Add(ctx context.Context, addr models.Address) (models.Address, error) {
	if err := validation.ValidateAddress(&addr); err != nil {
		return models.Address{}, err
	}
	if addr.ID == "" {
		addr.ID = "addr_" + uuid.NewString()
	}
	if addr.Label == "" {
		addr.Label = models.LabelOther
	}
	addr.Street = strings.TrimSpace(addr.Street)
	addr.City = strings.TrimSpace(addr.City)
	addr.ZipCode = strings.TrimSpace(addr.ZipCode)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snapshot()
	if len(s.addresses) == 0 {
		addr.IsDefault = true
	}
	if addr.IsDefault {
		for i := range s.addresses {
			s.addresses[i].IsDefault = false
		}
	}
	s.addresses = append(s.addresses, addr)

	if err := s.persist(ctx); err != nil {
		s.addresses = prev
		return models.Address{}, err
	}

	s.log.Info("address_added", "Delivery address saved", "", map[string]interface{}{
		"address_id": addr.ID,
		"label":      addr.Label,
	})
	return addr, nil
}

// Update replaces the editable fields of an existing address
func (s *Store) Update(ctx context.Context, addr models.Address) error {
	if err := validation.ValidateAddress(&addr); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(addr.ID)
	if idx < 0 {
		return ErrNotFound
	}

	prev := s.snapshot()
	addr.IsDefault = s.addresses[idx].IsDefault
	s.addresses[idx] = addr

	if err := s.persist(ctx); err != nil {
		s.addresses = prev
		return err
	}
	return nil
}

// Remove deletes an address, promoting the first remaining one when the
// default goes.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}

	prev := s.snapshot()
	prevSelected := s.selectedID
	removed := s.addresses[idx]

	s.addresses = append(s.addresses[:idx], s.addresses[idx+1:]...)
	if removed.IsDefault && len(s.addresses) > 0 {
		s.addresses[0].IsDefault = true
	}
	if s.selectedID == id {
		s.selectedID = ""
	}

	if err := s.persist(ctx); err != nil {
		s.addresses = prev
		s.selectedID = prevSelected
		return err
	}
	return nil
}

func (s *Store) SetDefault(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return ErrNotFound
	}

	prev := s.snapshot()
	for i := range s.addresses {
		s.addresses[i].IsDefault = s.addresses[i].ID == id
	}

	if err := s.persist(ctx); err != nil {
		s.addresses = prev
		return err
	}
	return nil
}

// Select picks the delivery address for the current checkout
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return ErrNotFound
	}
	s.selectedID = id
	return nil
}

// Selected returns the address chosen for checkout
func (s *Store) Selected() (models.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(s.selectedID); idx >= 0 {
		return s.addresses[idx], true
	}
	return models.Address{}, false
}

func (s *Store) Default() (models.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return models.Address{}, false
}

func (s *Store) Get(id string) (models.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.addresses[idx], true
	}
	return models.Address{}, false
}

func (s *Store) List() []models.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, a := range s.addresses {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []models.Address {
	out := make([]models.Address, len(s.addresses))
	copy(out, s.addresses)
	return out
}

func (s *Store) persist(ctx context.Context) error {
	if err := storage.SaveJSON(ctx, s.kv, storage.KeyAddresses, s.addresses); err != nil {
		s.log.Error("addresses_persist_failed", "Failed to save addresses", "", err, nil)
		return err
	}
	return nil
}
