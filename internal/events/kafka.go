// Package events writes the order event log to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shopify/sarama"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
)

// Event types written to the topic
const (
	TypeOrderPlaced   = "order_placed"
	TypeStatusChanged = "order_status_changed"
)

// Envelope wraps every event on the topic
type Envelope struct {
	Type      string          `json:"type"`
	OrderID   string          `json:"order_id"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Producer publishes order events keyed by order ID, so the events of one
// order stay on one partition in order.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *logger.Logger
	now      func() time.Time
}

// NewProducer connects a synchronous producer to brokers
func NewProducer(brokers []string, topic string, log *logger.Logger) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewProducerWith(producer, topic, log), nil
}

// NewProducerWith wraps an existing producer
func NewProducerWith(producer sarama.SyncProducer, topic string, log *logger.Logger) *Producer {
	return &Producer{producer: producer, topic: topic, logger: log, now: time.Now}
}

// PublishOrderPlaced records a placed order
func (p *Producer) PublishOrderPlaced(ctx context.Context, msg *models.OrderPlacedMessage) error {
	return p.send(ctx, TypeOrderPlaced, msg.OrderID, msg)
}

// NotifyStatus records a status change
func (p *Producer) NotifyStatus(ctx context.Context, msg *models.StatusUpdateMessage) error {
	return p.send(ctx, TypeStatusChanged, msg.OrderID, msg)
}

func (p *Producer) send(ctx context.Context, eventType, orderID string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	value, err := json.Marshal(Envelope{
		Type:      eventType,
		OrderID:   orderID,
		Timestamp: p.now().Unix(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", eventType, err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(orderID),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		p.logger.Error("kafka_publish_failed", "Failed to write order event", "", err, map[string]interface{}{
			"topic":    p.topic,
			"type":     eventType,
			"order_id": orderID,
		})
		return fmt.Errorf("failed to send %s event: %w", eventType, err)
	}

	p.logger.Debug("kafka_event_published", "Order event written", "", map[string]interface{}{
		"topic":     p.topic,
		"type":      eventType,
		"order_id":  orderID,
		"partition": partition,
		"offset":    offset,
	})
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
