package address

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
	"food-ordering/internal/storage"
	"food-ordering/internal/validation"
)

func home(id string) models.Address {
	return models.Address{ID: id, Label: models.LabelHome, Street: "742 Evergreen Terrace", City: "Springfield", ZipCode: "49007"}
}

func TestStore_AddValidates(t *testing.T) {
	s := NewStore(storage.NewMemory(), logger.Discard())

	bad := home("a")
	bad.ZipCode = "123"
	_, err := s.Add(context.Background(), bad)

	var verr validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "zip_code", verr.Field)
	assert.Empty(t, s.List())
}

func TestStore_DefaultInvariant(t *testing.T) {
	s := NewStore(storage.NewMemory(), logger.Discard())
	ctx := context.Background()

	first, err := s.Add(ctx, home("a"))
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	work := home("b")
	work.Label = models.LabelWork
	work.IsDefault = true
	_, err = s.Add(ctx, work)
	require.NoError(t, err)

	def, ok := s.Default()
	require.True(t, ok)
	assert.Equal(t, "b", def.ID)

	require.NoError(t, s.Remove(ctx, "b"))
	def, ok = s.Default()
	require.True(t, ok)
	assert.Equal(t, "a", def.ID)
}

func TestStore_SelectAndRemove(t *testing.T) {
	s := NewStore(storage.NewMemory(), logger.Discard())
	ctx := context.Background()

	_, err := s.Add(ctx, home("a"))
	require.NoError(t, err)

	require.NoError(t, s.Select("a"))
	selected, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "a", selected.ID)

	require.NoError(t, s.Remove(ctx, "a"))
	_, ok = s.Selected()
	assert.False(t, ok)
	assert.ErrorIs(t, s.Select("a"), ErrNotFound)
}

func TestStore_LoadSelectsDefault(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()

	s := NewStore(kv, logger.Discard())
	_, err := s.Add(ctx, home("a"))
	require.NoError(t, err)
	b := home("b")
	b.IsDefault = true
	_, err = s.Add(ctx, b)
	require.NoError(t, err)

	restored := NewStore(kv, logger.Discard())
	require.NoError(t, restored.Load(ctx))
	selected, ok := restored.Selected()
	require.True(t, ok)
	assert.Equal(t, "b", selected.ID)
	assert.Len(t, restored.List(), 2)
}

func TestStore_UpdateKeepsDefaultFlag(t *testing.T) {
	s := NewStore(storage.NewMemory(), logger.Discard())
	ctx := context.Background()

	_, err := s.Add(ctx, home("a"))
	require.NoError(t, err)

	edited := home("a")
	edited.Instructions = "Ring twice"
	edited.IsDefault = false
	require.NoError(t, s.Update(ctx, edited))

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.True(t, got.IsDefault)
	assert.Equal(t, "Ring twice", got.Instructions)

	assert.ErrorIs(t, s.Update(ctx, home("zz")), ErrNotFound)
}
