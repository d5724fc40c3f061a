// Package session tracks the signed-in customer.
package session

import (
	"errors"
	"net/mail"
	"strings"
	"sync"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
	"food-ordering/internal/validation"
)

var ErrNotSignedIn = errors.New("no user signed in")

type Store struct {
	log *logger.Logger

	mu   sync.RWMutex
	user *models.User
}

func NewStore(log *logger.Logger) *Store {
	return &Store{log: log}
}

// SignIn makes u the current user
func (s *Store) SignIn(u models.User) error {
	if err := validateUser(u); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u

	s.log.Info("user_signed_in", "User signed in", "", map[string]interface{}{
		"user_id": u.ID,
	})
	return nil
}

func (s *Store) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

// Current returns the signed-in user
func (s *Store) Current() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// UpdateProfile changes the name, email and phone of the current user
func (s *Store) UpdateProfile(name, email, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return ErrNotSignedIn
	}
	updated := *s.user
	updated.Name = strings.TrimSpace(name)
	updated.Email = strings.TrimSpace(email)
	updated.Phone = strings.TrimSpace(phone)
	if err := validateUser(updated); err != nil {
		return err
	}
	s.user = &updated
	return nil
}

func validateUser(u models.User) error {
	if u.ID == "" {
		return validation.ValidationError{Field: "id", Message: "user id is required"}
	}
	if strings.TrimSpace(u.Name) == "" {
		return validation.ValidationError{Field: "name", Message: "name is required"}
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return validation.ValidationError{Field: "email", Message: "email is invalid"}
	}
	return nil
}
