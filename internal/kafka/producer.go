package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fleetpay/withdraw-service/internal/model"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// WithdrawalStatusEvent is published after every withdrawal run
type WithdrawalStatusEvent struct {
	WithdrawalID string          `json:"withdrawalId"`
	OK           bool            `json:"ok"`
	Reason       string          `json:"reason"`
	Phone        string          `json:"phone,omitempty"`
	AmountSent   decimal.Decimal `json:"amountSent"`
	Adjusted     bool            `json:"adjusted"`
	Notice       string          `json:"notice,omitempty"`
}

// Producer publishes withdrawal.status events
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer}
}

// PublishStatus publishes the outcome of a withdrawal run
func (p *Producer) PublishStatus(ctx context.Context, result *model.WithdrawalResult) error {
	event := WithdrawalStatusEvent{
		WithdrawalID: result.ID,
		OK:           result.OK,
		Reason:       string(result.Reason),
		Phone:        result.Phone,
		AmountSent:   result.AmountSent,
		Adjusted:     result.Adjusted,
		Notice:       result.Notice,
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(result.ID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write status event: %w", err)
	}
	return nil
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
