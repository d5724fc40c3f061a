package models

// Coordinates is a WGS84 point in degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Customization is an option chosen for a menu item, e.g. "extra cheese"
type Customization struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// MenuItem is an orderable dish
type MenuItem struct {
	ID             string          `json:"id"`
	RestaurantID   string          `json:"restaurant_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Price          float64         `json:"price"`
	Category       string          `json:"category,omitempty"`
	Available      bool            `json:"available"`
	Customizations []Customization `json:"customizations,omitempty"`
}

// Restaurant is the snapshot of a restaurant kept on carts and orders.
// DeliveryFee is nil when the restaurant does not set its own fee.
type Restaurant struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Cuisine            string      `json:"cuisine,omitempty"`
	Rating             float64     `json:"rating,omitempty"`
	Coordinates        Coordinates `json:"coordinates"`
	DeliveryFee        *float64    `json:"delivery_fee,omitempty"`
	DeliveryTimeMin    int         `json:"delivery_time_min,omitempty"`
	DeliveryTimeMax    int         `json:"delivery_time_max,omitempty"`
	MinimumOrderAmount float64     `json:"minimum_order_amount,omitempty"`
}

// User is the signed-in customer
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Driver is the courier attached to an order from READY onwards
type Driver struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Phone    string      `json:"phone,omitempty"`
	Vehicle  string      `json:"vehicle,omitempty"`
	Rating   float64     `json:"rating,omitempty"`
	Location Coordinates `json:"location"`
}
