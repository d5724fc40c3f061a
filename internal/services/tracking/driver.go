package tracking

import (
	"fmt"
	"math/rand/v2"

	"food-ordering/internal/models"
)

var (
	driverNames = []string{"Sam Carter", "Maria Lopez", "Jin Park", "Amara Okafor", "Luca Rossi", "Priya Shah"}
	vehicles    = []string{"Scooter", "Bicycle", "Car", "Motorbike"}
)

// newDriver makes up the courier for an order
func newDriver(rng *rand.Rand, start models.Coordinates) models.Driver {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	return models.Driver{
		ID:       fmt.Sprintf("DRV-%04d", intN(10000)),
		Name:     driverNames[intN(len(driverNames))],
		Phone:    fmt.Sprintf("+1-555-%04d", intN(10000)),
		Vehicle:  vehicles[intN(len(vehicles))],
		Rating:   float64(45+intN(6)) / 10,
		Location: start,
	}
}
