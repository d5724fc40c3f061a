package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
)

func TestPublishOrderPlaced(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	mock := mocks.NewSyncProducer(t, cfg)

	var envelope Envelope
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		return json.Unmarshal(val, &envelope)
	})

	p := NewProducerWith(mock, "food_orders", logger.Discard())
	p.now = func() time.Time { return time.Unix(1700000000, 0) }

	err := p.PublishOrderPlaced(context.Background(), &models.OrderPlacedMessage{OrderID: "ORD-1", Total: 42.5})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	assert.Equal(t, TypeOrderPlaced, envelope.Type)
	assert.Equal(t, "ORD-1", envelope.OrderID)
	assert.Equal(t, int64(1700000000), envelope.Timestamp)

	var placed models.OrderPlacedMessage
	require.NoError(t, json.Unmarshal(envelope.Data, &placed))
	assert.Equal(t, 42.5, placed.Total)
}

func TestNotifyStatus_Failure(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	mock := mocks.NewSyncProducer(t, cfg)
	mock.ExpectSendMessageAndFail(errors.New("broker down"))

	p := NewProducerWith(mock, "food_orders", logger.Discard())
	msg := models.CreateStatusUpdateMessage("ORD-1", models.StatusPending, models.StatusConfirmed, "tracker", time.Now(), nil)

	err := p.NotifyStatus(context.Background(), msg)
	assert.Error(t, err)
	require.NoError(t, p.Close())
}

func TestSend_CancelledContext(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	p := NewProducerWith(mock, "food_orders", logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.PublishOrderPlaced(ctx, &models.OrderPlacedMessage{OrderID: "ORD-1"}), context.Canceled)
	require.NoError(t, p.Close())
}
