package location

import (
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-ordering/internal/models"
)

func TestFieldsRoundTrip(t *testing.T) {
	msg := &models.LocationUpdateMessage{
		OrderID:    "ORD-1",
		DriverID:   "drv-7",
		Location:   models.Coordinates{Latitude: 40.712776, Longitude: -74.005974},
		ETAMinutes: 12,
		Timestamp:  time.Date(2026, 2, 3, 4, 5, 6, 789, time.UTC),
	}

	raw := toFields(msg)
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		fields[k] = v.(string)
	}

	got, err := fromFields("ORD-1", fields)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestFromFields_Invalid(t *testing.T) {
	_, err := fromFields("ORD-1", map[string]string{"lat": "north", "lon": "0", "eta": "1", "updated_at": ""})
	assert.Error(t, err)
}

func TestKeyPrefix(t *testing.T) {
	r := NewRedis(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "food:")
	assert.Equal(t, "food:driver:ORD-1", r.key("ORD-1"))
}
