package models

// AddressLabel tags a saved address
type AddressLabel string

const (
	LabelHome  AddressLabel = "Home"
	LabelWork  AddressLabel = "Work"
	LabelOther AddressLabel = "Other"
)

// Valid reports whether l is a known label
func (l AddressLabel) Valid() bool {
	switch l {
	case LabelHome, LabelWork, LabelOther:
		return true
	default:
		return false
	}
}

// Address is a saved delivery address
type Address struct {
	ID           string       `json:"id"`
	Label        AddressLabel `json:"label"`
	Street       string       `json:"street"`
	City         string       `json:"city"`
	ZipCode      string       `json:"zip_code"`
	Instructions string       `json:"instructions,omitempty"`
	IsDefault    bool         `json:"is_default"`
	Coordinates  Coordinates  `json:"coordinates"`
}
