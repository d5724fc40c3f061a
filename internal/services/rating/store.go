// Package rating collects customer ratings for delivered orders.
package rating

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
	"food-ordering/internal/storage"
	"food-ordering/internal/validation"
)

const (
	MinStars         = 1
	MaxStars         = 5
	maxCommentLength = 500
)

var ErrAlreadyRated = errors.New("order already rated")

// state is what gets persisted
type state struct {
	Ratings map[string]models.OrderRating `json:"ratings"`
	Pending []string                      `json:"pending"`
}

type Store struct {
	kv  storage.Store
	log *logger.Logger
	now func() time.Time

	mu    sync.RWMutex
	state state
}

func NewStore(kv storage.Store, log *logger.Logger, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		kv:    kv,
		log:   log,
		now:   now,
		state: state{Ratings: make(map[string]models.OrderRating)},
	}
}

func (s *Store) Load(ctx context.Context) error {
	var loaded state
	if _, err := storage.LoadJSON(ctx, s.kv, storage.KeyRatings, &loaded); err != nil {
		return fmt.Errorf("failed to load ratings: %w", err)
	}
	if loaded.Ratings == nil {
		loaded.Ratings = make(map[string]models.OrderRating)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = loaded
	return nil
}

// Submit records a rating. Each order can be rated once.
func (s *Store) Submit(ctx context.Context, r models.OrderRating) error {
	if err := validateRating(r); err != nil {
		return err
	}
	r.Comment = strings.TrimSpace(r.Comment)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Ratings[r.OrderID]; ok {
		return ErrAlreadyRated
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	prev := s.copyState()
	s.state.Ratings[r.OrderID] = r
	s.state.Pending = without(s.state.Pending, r.OrderID)

	if err := s.persist(ctx); err != nil {
		s.state = prev
		return err
	}

	s.log.Info("order_rated", "Order rating submitted", "", map[string]interface{}{
		"order_id":      r.OrderID,
		"food_rating":   r.FoodRating,
		"driver_rating": r.DriverRating,
	})
	return nil
}

func (s *Store) Get(orderID string) (models.OrderRating, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.Ratings[orderID]
	return r, ok
}

func (s *Store) HasRated(orderID string) bool {
	_, ok := s.Get(orderID)
	return ok
}

// MarkPending queues a rating prompt for a delivered order. Rated or
// already queued orders are ignored.
func (s *Store) MarkPending(ctx context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Ratings[orderID]; ok {
		return nil
	}
	for _, id := range s.state.Pending {
		if id == orderID {
			return nil
		}
	}

	prev := s.copyState()
	s.state.Pending = append(s.state.Pending, orderID)
	if err := s.persist(ctx); err != nil {
		s.state = prev
		return err
	}
	return nil
}

// Pending returns orders waiting for a rating prompt, oldest first
func (s *Store) Pending() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.state.Pending...)
}

// Dismiss drops the prompt for an order without rating it
func (s *Store) Dismiss(ctx context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.copyState()
	s.state.Pending = without(s.state.Pending, orderID)
	if err := s.persist(ctx); err != nil {
		s.state = prev
		return err
	}
	return nil
}

func validateRating(r models.OrderRating) error {
	if r.OrderID == "" {
		return validation.ValidationError{Field: "order_id", Message: "order id is required"}
	}
	if r.FoodRating < MinStars || r.FoodRating > MaxStars {
		return validation.ValidationError{Field: "food_rating", Message: fmt.Sprintf("rating must be between %d and %d", MinStars, MaxStars)}
	}
	if r.DriverRating < MinStars || r.DriverRating > MaxStars {
		return validation.ValidationError{Field: "driver_rating", Message: fmt.Sprintf("rating must be between %d and %d", MinStars, MaxStars)}
	}
	if len(r.Comment) > maxCommentLength {
		return validation.ValidationError{Field: "comment", Message: fmt.Sprintf("comment must be less than %d characters", maxCommentLength)}
	}
	return nil
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (s *Store) copyState() state {
	c := state{
		Ratings: make(map[string]models.OrderRating, len(s.state.Ratings)),
		Pending: append([]string(nil), s.state.Pending...),
	}
	for k, v := range s.state.Ratings {
		c.Ratings[k] = v
	}
	return c
}

func (s *Store) persist(ctx context.Context) error {
	if err := storage.SaveJSON(ctx, s.kv, storage.KeyRatings, s.state); err != nil {
		s.log.Error("ratings_persist_failed", "Failed to save ratings", "", err, nil)
		return err
	}
	return nil
}
