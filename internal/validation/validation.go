// Package validation checks user input before it reaches a store.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"food-ordering/internal/models"
)

const (
	minStreetLength = 5
	minCityLength   = 2
	minZipLength    = 5
	maxItemQuantity = 99
	maxNotesLength  = 200
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateAddress checks that an address is complete enough to deliver to
func ValidateAddress(addr *models.Address) error {
	if addr == nil {
		return ValidationError{
			Field:   "address",
			Message: "delivery address is required",
		}
	}

	if err := validateStreet(addr.Street); err != nil {
		return err
	}

	if err := validateCity(addr.City); err != nil {
		return err
	}

	if err := validateZipCode(addr.ZipCode); err != nil {
		return err
	}

	if addr.Label != "" && !addr.Label.Valid() {
		return ValidationError{
			Field:   "label",
			Message: "label must be Home, Work or Other",
		}
	}
	return nil
}

func validateStreet(street string) error {
	if utf8.RuneCountInString(strings.TrimSpace(street)) < minStreetLength {
		return ValidationError{
			Field:   "street",
			Message: fmt.Sprintf("street must be at least %d characters", minStreetLength),
		}
	}
	return nil
}

func validateCity(city string) error {
	if utf8.RuneCountInString(strings.TrimSpace(city)) < minCityLength {
		return ValidationError{
			Field:   "city",
			Message: fmt.Sprintf("city must be at least %d characters", minCityLength),
		}
	}
	return nil
}

func validateZipCode(zip string) error {
	if utf8.RuneCountInString(strings.TrimSpace(zip)) < minZipLength {
		return ValidationError{
			Field:   "zip_code",
			Message: fmt.Sprintf("zip code must be at least %d characters", minZipLength),
		}
	}
	return nil
}

// ValidateOrderItem checks a cart line before it is added
func ValidateOrderItem(item models.OrderItem) error {
	if item.MenuItem.ID == "" {
		return ValidationError{
			Field:   "menu_item.id",
			Message: "menu item is required",
		}
	}

	if !item.MenuItem.Available {
		return ValidationError{
			Field:   "menu_item",
			Message: fmt.Sprintf("%s is currently unavailable", item.MenuItem.Name),
		}
	}

	if item.Quantity <= 0 {
		return ValidationError{
			Field:   "quantity",
			Message: "item quantity must be greater than 0",
		}
	}

	if item.Quantity > maxItemQuantity {
		return ValidationError{
			Field:   "quantity",
			Message: fmt.Sprintf("item quantity must be less than or equal to %d", maxItemQuantity),
		}
	}

	if item.MenuItem.Price < 0 {
		return ValidationError{
			Field:   "menu_item.price",
			Message: "item price cannot be negative",
		}
	}

	if utf8.RuneCountInString(item.SpecialNotes) > maxNotesLength {
		return ValidationError{
			Field:   "special_notes",
			Message: fmt.Sprintf("notes must be less than %d characters", maxNotesLength),
		}
	}
	return nil
}
