// Package cart holds the items being ordered from a single restaurant.
package cart

import (
	"errors"
	"sync"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
	"food-ordering/internal/pricing"
	"food-ordering/internal/validation"
)

var (
	ErrDifferentRestaurant = errors.New("cart already holds items from another restaurant")
	ErrLineNotFound        = errors.New("cart line not found")
)

// Store is the cart. It is bound to the restaurant of its first item until emptied.
type Store struct {
	log *logger.Logger

	mu         sync.RWMutex
	restaurant *models.Restaurant
	items      []models.OrderItem
}

func NewStore(log *logger.Logger) *Store {
	return &Store{log: log}
}

// AddItem adds a line, merging it into an identical existing line
func (s *Store) AddItem(restaurant models.Restaurant, item models.OrderItem) error {
	if err := validation.ValidateOrderItem(item); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restaurant != nil && s.restaurant.ID != restaurant.ID {
		return ErrDifferentRestaurant
	}
	if s.restaurant == nil {
		r := restaurant
		s.restaurant = &r
	}

	for i := range s.items {
		if sameLine(s.items[i], item) {
			merged := s.items[i]
			merged.Quantity += item.Quantity
			if err := validation.ValidateOrderItem(merged); err != nil {
				return err
			}
			merged.LinePrice = linePrice(merged)
			s.items[i] = merged
			return nil
		}
	}

	item.LinePrice = linePrice(item)
	s.items = append(s.items, item)

	s.log.Debug("cart_item_added", "Item added to cart", "", map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"menu_item_id":  item.MenuItem.ID,
		"quantity":      item.Quantity,
	})
	return nil
}

// UpdateQuantity sets the quantity of line index. Zero or less removes the line.
func (s *Store) UpdateQuantity(index, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return ErrLineNotFound
	}
	if quantity <= 0 {
		s.removeLocked(index)
		return nil
	}

	updated := s.items[index]
	updated.Quantity = quantity
	if err := validation.ValidateOrderItem(updated); err != nil {
		return err
	}
	updated.LinePrice = linePrice(updated)
	s.items[index] = updated
	return nil
}

func (s *Store) RemoveItem(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return ErrLineNotFound
	}
	s.removeLocked(index)
	return nil
}

// Clear empties the cart and releases the restaurant
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.restaurant = nil
}

// Items returns a copy of the cart lines
func (s *Store) Items() []models.OrderItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.OrderItem, len(s.items))
	for i, item := range s.items {
		item.Customizations = append([]models.Customization(nil), item.Customizations...)
		out[i] = item
	}
	return out
}

func (s *Store) Restaurant() (models.Restaurant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.restaurant == nil {
		return models.Restaurant{}, false
	}
	return *s.restaurant, true
}

// Subtotal is the sum of line prices rounded to cents
func (s *Store) Subtotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, item := range s.items {
		total += item.LinePrice
	}
	return pricing.RoundCents(total)
}

// ItemCount returns the number of units in the cart
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items) == 0
}

func (s *Store) removeLocked(index int) {
	s.items = append(s.items[:index], s.items[index+1:]...)
	if len(s.items) == 0 {
		s.restaurant = nil
	}
}

func linePrice(item models.OrderItem) float64 {
	extras := make([]float64, len(item.Customizations))
	for i, c := range item.Customizations {
		extras[i] = c.Price
	}
	return pricing.LinePrice(item.MenuItem.Price, extras, item.Quantity)
}

func sameLine(a, b models.OrderItem) bool {
	if a.MenuItem.ID != b.MenuItem.ID || a.SpecialNotes != b.SpecialNotes {
		return false
	}
	if len(a.Customizations) != len(b.Customizations) {
		return false
	}
	for i := range a.Customizations {
		if a.Customizations[i].ID != b.Customizations[i].ID {
			return false
		}
	}
	return true
}
