// Package notification keeps the in-app notification list and relays
// status updates from the message bus into it.
package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
	"food-ordering/internal/schedule"
	"food-ordering/internal/storage"
)

const maxNotifications = 50

var ErrNotFound = errors.New("notification not found")

// Store is the notification list, newest first
type Store struct {
	kv    storage.Store
	log   *logger.Logger
	sched schedule.Scheduler

	mu            sync.RWMutex
	notifications []models.Notification
}

func NewStore(kv storage.Store, log *logger.Logger, sched schedule.Scheduler) *Store {
	return &Store{kv: kv, log: log, sched: sched}
}

func (s *Store) Load(ctx context.Context) error {
	var notifications []models.Notification
	if _, err := storage.LoadJSON(ctx, s.kv, storage.KeyNotifications, &notifications); err != nil {
		return fmt.Errorf("failed to load notifications: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = notifications
	return nil
}

// Push adds a notification to the top of the list. The oldest entries are
// dropped beyond the list limit.
func (s *Store) Push(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.sched.Now()
	}
	if n.Type == "" {
		n.Type = models.NotificationSystem
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.notifications
	next := make([]models.Notification, 0, len(prev)+1)
	next = append(next, n)
	next = append(next, prev...)
	if len(next) > maxNotifications {
		next = next[:maxNotifications]
	}

	s.notifications = next
	if err := s.persist(ctx); err != nil {
		s.notifications = prev
		return models.Notification{}, err
	}

	s.log.Debug("notification_pushed", "Notification added", "", map[string]interface{}{
		"notification_id": n.ID,
		"type":            n.Type,
		"order_id":        n.OrderID,
	})
	return n, nil
}

// Enqueue pushes n after delay. Stopping the returned task cancels it.
func (s *Store) Enqueue(n models.Notification, delay time.Duration) schedule.Task {
	return s.sched.After(delay, func() {
		if _, err := s.Push(context.Background(), n); err != nil {
			s.log.Error("notification_enqueue_failed", "Failed to deliver queued notification", "", err, map[string]interface{}{
				"order_id": n.OrderID,
			})
		}
	})
}

// NotifyStatus turns a status change into an in-app notification
func (s *Store) NotifyStatus(ctx context.Context, msg *models.StatusUpdateMessage) error {
	title, body := FormatStatusUpdate(msg)
	_, err := s.Push(ctx, models.Notification{
		Type:      models.NotificationOrderStatus,
		Title:     title,
		Body:      body,
		OrderID:   msg.OrderID,
		CreatedAt: msg.Timestamp,
	})
	return err
}

// List returns every notification, newest first
func (s *Store) List() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Notification(nil), s.notifications...)
}

// Unread returns the notifications not yet read
func (s *Store) Unread() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if !n.Read {
			out = append(out, n)
		}
	}
	return out
}

func (s *Store) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID != id {
			continue
		}
		if s.notifications[i].Read {
			return nil
		}
		s.notifications[i].Read = true
		if err := s.persist(ctx); err != nil {
			s.notifications[i].Read = false
			return err
		}
		return nil
	}
	return ErrNotFound
}

func (s *Store) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := append([]models.Notification(nil), s.notifications...)
	for i := range s.notifications {
		s.notifications[i].Read = true
	}
	if err := s.persist(ctx); err != nil {
		s.notifications = prev
		return err
	}
	return nil
}

// Clear removes every notification
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(ctx, storage.KeyNotifications); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	s.notifications = nil
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	if err := storage.SaveJSON(ctx, s.kv, storage.KeyNotifications, s.notifications); err != nil {
		s.log.Error("notifications_persist_failed", "Failed to save notifications", "", err, nil)
		return err
	}
	return nil
}
