package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
	"food-ordering/internal/validation"
)

var (
	luigis = models.Restaurant{ID: "r1", Name: "Luigi's"}
	sushi  = models.Restaurant{ID: "r2", Name: "Sushi Go"}

	margherita = models.MenuItem{ID: "m1", RestaurantID: "r1", Name: "Margherita", Price: 12.50, Available: true}
	cola       = models.MenuItem{ID: "m2", RestaurantID: "r1", Name: "Cola", Price: 2.25, Available: true}
	extraBasil = models.Customization{ID: "c1", Name: "Extra basil", Price: 0.75}
)

func TestStore_AddItemComputesLinePrice(t *testing.T) {
	s := NewStore(logger.Discard())

	require.NoError(t, s.AddItem(luigis, models.OrderItem{MenuItem: margherita, Quantity: 2, Customizations: []models.Customization{extraBasil}}))
	require.NoError(t, s.AddItem(luigis, models.OrderItem{MenuItem: cola, Quantity: 3}))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 26.5, items[0].LinePrice)
	assert.Equal(t, 6.75, items[1].LinePrice)
	assert.Equal(t, 33.25, s.Subtotal())
	assert.Equal(t, 5, s.ItemCount())

	r, ok := s.Restaurant()
	require.True(t, ok)
	assert.Equal(t, "r1", r.ID)
}

func TestStore_MergesIdenticalLines(t *testing.T) {
	s := NewStore(logger.Discard())

	require.NoError(t, s.AddItem(luigis, models.OrderItem{MenuItem: cola, Quantity: 1}))
	require.NoError(t, s.AddItem(luigis, models.OrderItem{MenuItem: cola, Quantity: 2}))
	require.NoError(t, s.AddItem(luigis, models.OrderItem{MenuItem: cola, Quantity: 1, SpecialNotes: "no ice"}))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 6.75, items[0].LinePrice)
}

func TestStore_MergeRespectsQuantityLimit(t *testing.T) {
	s := NewStore(logger.Discard())

	require.NoError(t, s.AddItem(luigis, models.OrderItem{MenuItem: cola, Quantity: 60}))
	err := s.AddItem(luigis, models.OrderItem{MenuItem: cola, Quantity: 60})

	var verr validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity", verr.Field)
	assert.Equal(t, 60, s.ItemCount(), "the existing line is left as it was")
	assert.Equal(t, 135.0, s.Subtotal())

	require.NoError(t, s.AddItem(luigis, models.OrderItem{MenuItem: cola, Quantity: 39}))
	assert.Equal(t, 99, s.ItemCount())
}

func TestStore_SingleRestaurant(t *testing.T) {
	s := NewStore(logger.Discard())

	require.NoError(t, s.AddItem(luigis, models.OrderItem{MenuItem: cola, Quantity: 1}))
	err := s.AddItem(sushi, models.OrderItem{MenuItem: models.MenuItem{ID: "s1", Name: "Maki", Price: 6, Available: true}, Quantity: 1})
	assert.ErrorIs(t, err, ErrDifferentRestaurant)

	s.Clear()
	assert.True(t, s.IsEmpty())
	_, ok := s.Restaurant()
	assert.False(t, ok)
}

func TestStore_UpdateQuantityAndRemove(t *testing.T) {
	s := NewStore(logger.Discard())

	require.NoError(t, s.AddItem(luigis, models.OrderItem{MenuItem: margherita, Quantity: 1}))
	require.NoError(t, s.AddItem(luigis, models.OrderItem{MenuItem: cola, Quantity: 1}))

	require.NoError(t, s.UpdateQuantity(0, 3))
	assert.Equal(t, 37.5, s.Items()[0].LinePrice)

	require.NoError(t, s.UpdateQuantity(1, 0))
	assert.Len(t, s.Items(), 1)

	assert.ErrorIs(t, s.UpdateQuantity(5, 1), ErrLineNotFound)
	assert.Error(t, s.UpdateQuantity(0, 1000))

	require.NoError(t, s.RemoveItem(0))
	assert.True(t, s.IsEmpty())
	_, ok := s.Restaurant()
	assert.False(t, ok, "emptying the cart releases the restaurant")
}

func TestStore_RejectsUnavailableItem(t *testing.T) {
	s := NewStore(logger.Discard())
	soldOut := cola
	soldOut.Available = false

	assert.Error(t, s.AddItem(luigis, models.OrderItem{MenuItem: soldOut, Quantity: 1}))
	assert.True(t, s.IsEmpty())
	_, ok := s.Restaurant()
	assert.False(t, ok)
}
