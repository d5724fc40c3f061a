package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
	"food-ordering/internal/storage"
)

var placedAt = time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)

func newOrder(id string, createdAt time.Time) models.Order {
	return models.Order{
		ID:         id,
		UserID:     "u1",
		Restaurant: models.Restaurant{ID: "r1", Name: "Luigi's"},
		Items: []models.OrderItem{
			{MenuItem: models.MenuItem{ID: "m1", Name: "Margherita", Price: 12.5}, Quantity: 1, LinePrice: 12.5},
		},
		Status:    models.StatusPending,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		Subtotal:  12.5,
		Total:     16.58,
	}
}

type recordingArchive struct {
	mu       sync.Mutex
	saved    []string
	statuses []models.OrderStatus
	err      error
}

func (a *recordingArchive) SaveOrder(_ context.Context, order *models.Order) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved = append(a.saved, order.ID)
	return a.err
}

func (a *recordingArchive) RecordStatus(_ context.Context, _ string, status models.OrderStatus, _ string, _ time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.statuses = append(a.statuses, status)
	return a.err
}

func TestStore_AddAndGet(t *testing.T) {
	s := NewStore(storage.NewMemory(), logger.Discard())
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, newOrder("ORD-1", placedAt)))

	got, ok := s.Get("ORD-1")
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, placedAt, got.StatusTimestamps[models.StatusPending])

	assert.ErrorIs(t, s.Add(ctx, newOrder("ORD-1", placedAt)), ErrDuplicate)

	bad := newOrder("ORD-2", placedAt)
	bad.Status = "LOST"
	assert.ErrorIs(t, s.Add(ctx, bad), models.ErrInvalidStatus)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore(storage.NewMemory(), logger.Discard())
	require.NoError(t, s.Add(context.Background(), newOrder("ORD-1", placedAt)))

	got, _ := s.Get("ORD-1")
	got.Items[0].Quantity = 99
	got.Status = models.StatusDelivered

	again, _ := s.Get("ORD-1")
	assert.Equal(t, 1, again.Items[0].Quantity)
	assert.Equal(t, models.StatusPending, again.Status)
}

func TestStore_UpdateStatusRefusesRegressions(t *testing.T) {
	s := NewStore(storage.NewMemory(), logger.Discard())
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, newOrder("ORD-1", placedAt)))

	at := placedAt.Add(30 * time.Second)
	require.NoError(t, s.UpdateStatus(ctx, "ORD-1", models.StatusConfirmed, "tracker", at))

	err := s.UpdateStatus(ctx, "ORD-1", models.StatusPending, "tracker", at)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = s.UpdateStatus(ctx, "ORD-1", models.StatusReady, "tracker", at)
	assert.ErrorIs(t, err, ErrInvalidTransition, "statuses cannot be skipped")

	got, _ := s.Get("ORD-1")
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Equal(t, at, got.StatusTimestamps[models.StatusConfirmed])
	assert.Equal(t, at, got.UpdatedAt)

	assert.ErrorIs(t, s.UpdateStatus(ctx, "missing", models.StatusConfirmed, "tracker", at), ErrNotFound)
}

func TestStore_CancelIsTerminal(t *testing.T) {
	cancelledAt := placedAt.Add(time.Minute)
	s := NewStore(storage.NewMemory(), logger.Discard(), WithClock(func() time.Time { return cancelledAt }))
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, newOrder("ORD-1", placedAt)))

	require.NoError(t, s.Cancel(ctx, "ORD-1", "customer"))
	got, _ := s.Get("ORD-1")
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.Equal(t, cancelledAt, got.StatusTimestamps[models.StatusCancelled])

	assert.ErrorIs(t, s.Cancel(ctx, "ORD-1", "customer"), ErrInvalidTransition)
	assert.ErrorIs(t, s.UpdateStatus(ctx, "ORD-1", models.StatusConfirmed, "tracker", cancelledAt), ErrInvalidTransition)
}

func TestStore_ListAndActive(t *testing.T) {
	s := NewStore(storage.NewMemory(), logger.Discard())
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, newOrder("ORD-OLD", placedAt)))
	require.NoError(t, s.Add(ctx, newOrder("ORD-NEW", placedAt.Add(time.Hour))))
	require.NoError(t, s.Cancel(ctx, "ORD-OLD", "customer"))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "ORD-NEW", list[0].ID)

	active := s.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "ORD-NEW", active[0].ID)
}

func TestStore_PersistsAndLoads(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()

	s := NewStore(kv, logger.Discard())
	require.NoError(t, s.Add(ctx, newOrder("ORD-1", placedAt)))
	require.NoError(t, s.AssignDriver(ctx, "ORD-1", models.Driver{ID: "d1", Name: "Sam"}))

	restored := NewStore(kv, logger.Discard())
	require.NoError(t, restored.Load(ctx))

	got, ok := restored.Get("ORD-1")
	require.True(t, ok)
	require.NotNil(t, got.Driver)
	assert.Equal(t, "Sam", got.Driver.Name)
	assert.True(t, got.CreatedAt.Equal(placedAt))
}

func TestStore_ArchiveIsBestEffort(t *testing.T) {
	archive := &recordingArchive{err: errors.New("db down")}
	s := NewStore(storage.NewMemory(), logger.Discard(), WithArchive(archive))
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, newOrder("ORD-1", placedAt)))
	require.NoError(t, s.UpdateStatus(ctx, "ORD-1", models.StatusConfirmed, "tracker", placedAt))

	assert.Equal(t, []string{"ORD-1", "ORD-1"}, archive.saved)
	assert.Equal(t, []models.OrderStatus{models.StatusPending, models.StatusConfirmed}, archive.statuses)
}

type failingStore struct {
	storage.Store
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestStore_AddRollsBackWhenPersistFails(t *testing.T) {
	s := NewStore(failingStore{Store: storage.NewMemory()}, logger.Discard())

	require.Error(t, s.Add(context.Background(), newOrder("ORD-1", placedAt)))
	_, ok := s.Get("ORD-1")
	assert.False(t, ok)
}
