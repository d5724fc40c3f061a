package models

// PaymentType distinguishes saved cards from cash on delivery
type PaymentType string

const (
	PaymentCard PaymentType = "card"
	PaymentCash PaymentType = "cash"
)

// CardBrand is the card network detected from the card number
type CardBrand string

const (
	BrandVisa       CardBrand = "visa"
	BrandMastercard CardBrand = "mastercard"
	BrandAmex       CardBrand = "amex"
	BrandDiscover   CardBrand = "discover"
	BrandUnknown    CardBrand = "unknown"
)

// DisplayName returns the brand as printed on checkout
func (b CardBrand) DisplayName() string {
	switch b {
	case BrandVisa:
		return "Visa"
	case BrandMastercard:
		return "Mastercard"
	case BrandAmex:
		return "American Express"
	case BrandDiscover:
		return "Discover"
	case BrandUnknown:
		return "Card"
	default:
		return "Card"
	}
}

// CashPaymentID identifies the synthetic cash payment method
const CashPaymentID = "cash"

// PaymentMethod is a saved card or cash. Card fields are empty for cash.
type PaymentMethod struct {
	ID          string      `json:"id"`
	Type        PaymentType `json:"type"`
	IsDefault   bool        `json:"is_default"`
	Brand       CardBrand   `json:"brand,omitempty"`
	Last4       string      `json:"last4,omitempty"`
	ExpiryMonth int         `json:"expiry_month,omitempty"`
	ExpiryYear  int         `json:"expiry_year,omitempty"`
	HolderName  string      `json:"holder_name,omitempty"`
}

// CashPayment returns the cash-on-delivery payment method
func CashPayment() PaymentMethod {
	return PaymentMethod{ID: CashPaymentID, Type: PaymentCash}
}
