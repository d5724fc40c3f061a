package payment

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
	"food-ordering/internal/storage"
	"food-ordering/internal/validation"
)

func TestDetectCardBrand(t *testing.T) {
	tests := []struct {
		number string
		want   models.CardBrand
	}{
		{"4111111111111111", models.BrandVisa},
		{"4111 1111 1111 1111", models.BrandVisa},
		{"5500000000000004", models.BrandMastercard},
		{"2221000000000009", models.BrandMastercard},
		{"340000000000009", models.BrandAmex},
		{"370000000000002", models.BrandAmex},
		{"6011000000000004", models.BrandDiscover},
		{"6500000000000002", models.BrandDiscover},
		{"3530111333300000", models.BrandUnknown},
		{"", models.BrandUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCardBrand(tt.number))
		})
	}
}

func TestDisplayHelpers(t *testing.T) {
	assert.Equal(t, "•••• 4242", MaskCardNumber("4242"))
	assert.Equal(t, "03/27", FormatExpiry(3, 2027))
	assert.Equal(t, "11/09", FormatExpiry(11, 9))

	visa := models.PaymentMethod{Type: models.PaymentCard, Brand: models.BrandVisa, Last4: "1111"}
	assert.Equal(t, "Visa •••• 1111", Describe(visa))
	assert.Equal(t, "Cash on delivery", Describe(models.CashPayment()))
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		month int
		year  int
		want  bool
	}{
		{"previous year", 12, 2025, true},
		{"earlier month this year", 5, 2026, true},
		{"this month", 6, 2026, false},
		{"later month", 7, 2026, false},
		{"next year early month", 1, 2027, false},
		{"two digit year", 6, 26, false},
		{"two digit year past", 1, 26, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExpired(tt.month, tt.year, now))
		})
	}
}

func TestNewCard(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	card, err := NewCard("c1", CardInput{
		Number:      "4242 4242 4242 4242",
		ExpiryMonth: 8,
		ExpiryYear:  28,
		HolderName:  " Jane Doe ",
	}, now)
	require.NoError(t, err)
	assert.Equal(t, models.BrandVisa, card.Brand)
	assert.Equal(t, "4242", card.Last4)
	assert.Equal(t, 2028, card.ExpiryYear)
	assert.Equal(t, "Jane Doe", card.HolderName)

	_, err = NewCard("c2", CardInput{Number: "4242424242424241", ExpiryMonth: 8, ExpiryYear: 2028}, now)
	var verr validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "number", verr.Field)

	_, err = NewCard("c3", CardInput{Number: "4242424242424242", ExpiryMonth: 1, ExpiryYear: 2026}, now)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "expiry", verr.Field)
}

func newTestStore() (*Store, *storage.Memory) {
	kv := storage.NewMemory()
	return NewStore(kv, logger.Discard()), kv
}

func card(id string, isDefault bool) models.PaymentMethod {
	return models.PaymentMethod{ID: id, Type: models.PaymentCard, Brand: models.BrandVisa, Last4: "1111", IsDefault: isDefault}
}

func countDefaults(methods []models.PaymentMethod) int {
	n := 0
	for _, m := range methods {
		if m.IsDefault {
			n++
		}
	}
	return n
}

func TestStore_FirstMethodBecomesDefault(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	added, err := s.AddPaymentMethod(ctx, card("a", false))
	require.NoError(t, err)
	assert.True(t, added.IsDefault)

	def, ok := s.GetDefaultPaymentMethod()
	require.True(t, ok)
	assert.Equal(t, "a", def.ID)
}

func TestStore_NewDefaultUnsetsPrevious(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := s.AddPaymentMethod(ctx, card("a", false))
	require.NoError(t, err)
	_, err = s.AddPaymentMethod(ctx, card("b", true))
	require.NoError(t, err)

	def, ok := s.GetDefaultPaymentMethod()
	require.True(t, ok)
	assert.Equal(t, "b", def.ID)
	assert.Equal(t, 1, countDefaults(s.List()))

	require.NoError(t, s.SetDefaultPaymentMethod(ctx, "a"))
	def, _ = s.GetDefaultPaymentMethod()
	assert.Equal(t, "a", def.ID)
	assert.Equal(t, 1, countDefaults(s.List()))
}

func TestStore_RemoveDefaultPromotesFirstRemaining(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := s.AddPaymentMethod(ctx, card(id, false))
		require.NoError(t, err)
	}
	require.NoError(t, s.SetDefaultPaymentMethod(ctx, "b"))
	require.NoError(t, s.RemovePaymentMethod(ctx, "b"))

	def, ok := s.GetDefaultPaymentMethod()
	require.True(t, ok)
	assert.Equal(t, "a", def.ID)
}

func TestStore_RemoveSelectedClearsSelection(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := s.AddPaymentMethod(ctx, card("a", false))
	require.NoError(t, err)
	_, err = s.AddPaymentMethod(ctx, card("b", false))
	require.NoError(t, err)

	require.NoError(t, s.SelectPaymentMethod("b"))
	selected, ok := s.GetSelectedPaymentMethod()
	require.True(t, ok)
	assert.Equal(t, "b", selected.ID)

	require.NoError(t, s.RemovePaymentMethod(ctx, "b"))
	_, ok = s.GetSelectedPaymentMethod()
	assert.False(t, ok)
}

func TestStore_SelectCashAndUnknown(t *testing.T) {
	s, _ := newTestStore()

	require.NoError(t, s.SelectPaymentMethod(models.CashPaymentID))
	selected, ok := s.GetSelectedPaymentMethod()
	require.True(t, ok)
	assert.Equal(t, models.PaymentCash, selected.Type)

	assert.ErrorIs(t, s.SelectPaymentMethod("missing"), ErrNotFound)
	assert.ErrorIs(t, s.RemovePaymentMethod(context.Background(), "missing"), ErrNotFound)
}

func TestStore_GetSavedCardsFiltersCash(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := s.AddPaymentMethod(ctx, models.PaymentMethod{ID: "cash-1", Type: models.PaymentCash})
	require.NoError(t, err)
	_, err = s.AddPaymentMethod(ctx, card("a", false))
	require.NoError(t, err)

	cards := s.GetSavedCards()
	require.Len(t, cards, 1)
	assert.Equal(t, "a", cards[0].ID)
}

func TestStore_DefaultInvariantUnderRandomOperations(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(7, 11))
	ids := []string{"a", "b", "c", "d", "e"}

	for step := 0; step < 500; step++ {
		id := ids[rng.IntN(len(ids))]
		switch rng.IntN(3) {
		case 0:
			_, _ = s.AddPaymentMethod(ctx, card(id, rng.IntN(2) == 0))
		case 1:
			_ = s.RemovePaymentMethod(ctx, id)
		case 2:
			_ = s.SetDefaultPaymentMethod(ctx, id)
		}

		methods := s.List()
		if len(methods) == 0 {
			require.Zero(t, countDefaults(methods), "step %d", step)
		} else {
			require.Equal(t, 1, countDefaults(methods), "step %d", step)
		}
	}
}

func TestStore_PersistsAndLoads(t *testing.T) {
	s, kv := newTestStore()
	ctx := context.Background()

	_, err := s.AddPaymentMethod(ctx, card("a", false))
	require.NoError(t, err)
	_, err = s.AddPaymentMethod(ctx, card("b", true))
	require.NoError(t, err)

	restored := NewStore(kv, logger.Discard())
	require.NoError(t, restored.Load(ctx))
	assert.Equal(t, s.List(), restored.List())

	require.NoError(t, restored.ClearPaymentMethods(ctx))
	assert.Empty(t, restored.List())
	_, ok, err := kv.Get(ctx, storage.KeyPaymentMethods)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_LoadRestoresSingleDefault(t *testing.T) {
	tests := []struct {
		name        string
		saved       []models.PaymentMethod
		wantDefault string
	}{
		{"none marked", []models.PaymentMethod{card("a", false), card("b", false)}, "a"},
		{"two marked", []models.PaymentMethod{card("a", false), card("b", true), card("c", true)}, "b"},
		{"one marked", []models.PaymentMethod{card("a", false), card("b", true)}, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := storage.NewMemory()
			require.NoError(t, storage.SaveJSON(ctx, kv, storage.KeyPaymentMethods, tt.saved))

			s := NewStore(kv, logger.Discard())
			require.NoError(t, s.Load(ctx))

			assert.Equal(t, 1, countDefaults(s.List()))
			def, ok := s.GetDefaultPaymentMethod()
			require.True(t, ok)
			assert.Equal(t, tt.wantDefault, def.ID)
		})
	}
}

type failingStore struct {
	storage.Store
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestStore_RollsBackWhenPersistFails(t *testing.T) {
	s := NewStore(failingStore{Store: storage.NewMemory()}, logger.Discard())

	_, err := s.AddPaymentMethod(context.Background(), card("a", false))
	require.Error(t, err)
	assert.Empty(t, s.List())
}
