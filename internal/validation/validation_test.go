package validation

import (
	"errors"
	"strings"
	"testing"

	"food-ordering/internal/models"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name      string
		addr      *models.Address
		wantErr   bool
		wantField string
	}{
		{
			name: "valid address",
			addr: &models.Address{
				Label:   models.LabelHome,
				Street:  "123 Main St",
				City:    "Springfield",
				ZipCode: "12345",
			},
			wantErr: false,
		},
		{
			name:      "nil address",
			addr:      nil,
			wantErr:   true,
			wantField: "address",
		},
		{
			name: "short street",
			addr: &models.Address{
				Street:  "Main",
				City:    "Springfield",
				ZipCode: "12345",
			},
			wantErr:   true,
			wantField: "street",
		},
		{
			name: "street of spaces",
			addr: &models.Address{
				Street:  "         ",
				City:    "Springfield",
				ZipCode: "12345",
			},
			wantErr:   true,
			wantField: "street",
		},
		{
			name: "short street counted in characters",
			addr: &models.Address{
				Street:  "Äöüß",
				City:    "München",
				ZipCode: "80331",
			},
			wantErr:   true,
			wantField: "street",
		},
		{
			name: "accented street long enough",
			addr: &models.Address{
				Street:  "Hauptstraße 1",
				City:    "Zürich",
				ZipCode: "80331",
			},
			wantErr: false,
		},
		{
			name: "short city counted in characters",
			addr: &models.Address{
				Street:  "123 Main St",
				City:    "Ö",
				ZipCode: "12345",
			},
			wantErr:   true,
			wantField: "city",
		},
		{
			name: "short city",
			addr: &models.Address{
				Street:  "123 Main St",
				City:    "S",
				ZipCode: "12345",
			},
			wantErr:   true,
			wantField: "city",
		},
		{
			name: "short zip",
			addr: &models.Address{
				Street:  "123 Main St",
				City:    "Springfield",
				ZipCode: "1234",
			},
			wantErr:   true,
			wantField: "zip_code",
		},
		{
			name: "unknown label",
			addr: &models.Address{
				Label:   "Cottage",
				Street:  "123 Main St",
				City:    "Springfield",
				ZipCode: "12345",
			},
			wantErr:   true,
			wantField: "label",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAddress() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateAddress() error = %T, want ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("ValidateAddress() field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestValidateOrderItem(t *testing.T) {
	pizza := models.MenuItem{ID: "m1", Name: "Margherita", Price: 12.5, Available: true}
	soldOut := pizza
	soldOut.Available = false

	tests := []struct {
		name    string
		item    models.OrderItem
		wantErr bool
	}{
		{"valid item", models.OrderItem{MenuItem: pizza, Quantity: 2}, false},
		{"missing menu item", models.OrderItem{Quantity: 1}, true},
		{"unavailable", models.OrderItem{MenuItem: soldOut, Quantity: 1}, true},
		{"zero quantity", models.OrderItem{MenuItem: pizza, Quantity: 0}, true},
		{"too many", models.OrderItem{MenuItem: pizza, Quantity: 100}, true},
		{"long notes", models.OrderItem{MenuItem: pizza, Quantity: 1, SpecialNotes: strings.Repeat("x", 201)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrderItem(tt.item)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOrderItem() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
