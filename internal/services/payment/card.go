package payment

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"food-ordering/internal/models"
	"food-ordering/internal/validation"
)

var (
	nonDigits         = regexp.MustCompile(`\D`)
	visaPattern       = regexp.MustCompile(`^4`)
	mastercardPattern = regexp.MustCompile(`^(5[1-5]|2[2-7])`)
	amexPattern       = regexp.MustCompile(`^3[47]`)
	discoverPattern   = regexp.MustCompile(`^6(?:011|5)`)
)

// CleanCardNumber strips everything but digits
func CleanCardNumber(number string) string {
	return nonDigits.ReplaceAllString(number, "")
}

// DetectCardBrand identifies the card network from its number
func DetectCardBrand(number string) models.CardBrand {
	cleaned := CleanCardNumber(number)
	switch {
	case visaPattern.MatchString(cleaned):
		return models.BrandVisa
	case mastercardPattern.MatchString(cleaned):
		return models.BrandMastercard
	case amexPattern.MatchString(cleaned):
		return models.BrandAmex
	case discoverPattern.MatchString(cleaned):
		return models.BrandDiscover
	default:
		return models.BrandUnknown
	}
}

// MaskCardNumber renders the last four digits behind bullets, e.g. "•••• 4242"
func MaskCardNumber(last4 string) string {
	return "•••• " + last4
}

// FormatExpiry renders MM/YY
func FormatExpiry(month, year int) string {
	return fmt.Sprintf("%02d/%02d", month, year%100)
}

// IsExpired reports whether a card expiring at month/year is past at now.
// A card is valid through the last day of its expiry month.
func IsExpired(month, year int, now time.Time) bool {
	if year < 100 {
		year += 2000
	}
	currentYear, currentMonth := now.Year(), int(now.Month())
	if year != currentYear {
		return year < currentYear
	}
	return month < currentMonth
}

// Describe returns a one-line label for a payment method, e.g. "Visa •••• 4242"
func Describe(m models.PaymentMethod) string {
	if m.Type == models.PaymentCash {
		return "Cash on delivery"
	}
	return m.Brand.DisplayName() + " " + MaskCardNumber(m.Last4)
}

// CardInput is what the add-card form collects. The full number never leaves NewCard.
type CardInput struct {
	Number      string
	ExpiryMonth int
	ExpiryYear  int
	HolderName  string
	IsDefault   bool
}

// NewCard validates input and builds a saved card keeping only the last four digits
func NewCard(id string, input CardInput, now time.Time) (models.PaymentMethod, error) {
	digits := CleanCardNumber(input.Number)
	if len(digits) < 13 || len(digits) > 19 {
		return models.PaymentMethod{}, validation.ValidationError{Field: "number", Message: "card number must have 13 to 19 digits"}
	}
	if !luhnValid(digits) {
		return models.PaymentMethod{}, validation.ValidationError{Field: "number", Message: "card number is invalid"}
	}
	if input.ExpiryMonth < 1 || input.ExpiryMonth > 12 {
		return models.PaymentMethod{}, validation.ValidationError{Field: "expiry_month", Message: "expiry month must be between 1 and 12"}
	}
	if IsExpired(input.ExpiryMonth, input.ExpiryYear, now) {
		return models.PaymentMethod{}, validation.ValidationError{Field: "expiry", Message: "card has expired"}
	}

	year := input.ExpiryYear
	if year < 100 {
		year += 2000
	}

	return models.PaymentMethod{
		ID:          id,
		Type:        models.PaymentCard,
		IsDefault:   input.IsDefault,
		Brand:       DetectCardBrand(digits),
		Last4:       digits[len(digits)-4:],
		ExpiryMonth: input.ExpiryMonth,
		ExpiryYear:  year,
		HolderName:  strings.TrimSpace(input.HolderName),
	}, nil
}

func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
