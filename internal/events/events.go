// Package events publishes fulfillment notifications to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"bloodbank/internal/domain"
)

const TypeRequestFulfilled = "RequestFulfilled"

// RequestFulfilled is emitted once a request has been delivered.
type RequestFulfilled struct {
	RequestID         int64            `json:"requestId"`
	BloodType         domain.BloodType `json:"bloodType"`
	RequestedQuantity decimal.Decimal  `json:"requestedQuantity"`
	DonationIDs       []int64          `json:"donationIds"`
	AllocatedQuantity decimal.Decimal  `json:"allocatedQuantity"`
	Shortfall         decimal.Decimal  `json:"shortfall"`
	FulfilledAt       time.Time        `json:"fulfilledAt"`
}

type Publisher interface {
	PublishRequestFulfilled(ctx context.Context, event RequestFulfilled) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON events keyed by request id, so every event for a
// request lands on the same partition.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger zerolog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(writer, topic, logger)
}

func newKafkaPublisher(writer messageWriter, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic, logger: logger}
}

func (p *KafkaPublisher) PublishRequestFulfilled(ctx context.Context, event RequestFulfilled) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", TypeRequestFulfilled, err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.RequestID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(TypeRequestFulfilled)},
		},
		Time: event.FulfilledAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", TypeRequestFulfilled, p.topic, err)
	}
	p.logger.Debug().Int64("request_id", event.RequestID).Str("topic", p.topic).Msg("event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishRequestFulfilled(context.Context, RequestFulfilled) error { return nil }

func (NopPublisher) Close() error { return nil }

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = NopPublisher{}
)
