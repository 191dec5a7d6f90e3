package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fleetpay/withdraw-service/internal/model"
	"github.com/fleetpay/withdraw-service/internal/withdraw"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WithdrawalRequestedEvent is the payload of a withdrawal.requested message.
// Mode flags are pointers so that absent fields take the pipeline defaults
// (preview on, payment creation on).
type WithdrawalRequestedEvent struct {
	Phone             string          `json:"phone"`
	Amount            decimal.Decimal `json:"amount"`
	CardNumber        string          `json:"cardNumber,omitempty"`
	BankHint          string          `json:"bankHint,omitempty"`
	Requisites        string          `json:"requisites,omitempty"`
	TxTypeID          *int64          `json:"txTypeId,omitempty"`
	UsePreview        *bool           `json:"usePreview,omitempty"`
	IncludeCommission *bool           `json:"includeCommission,omitempty"`
	CreatePayment     *bool           `json:"createPayment,omitempty"`
}

// Consumer consumes withdrawal.requested events and runs withdrawals
type Consumer struct {
	reader   *kafka.Reader
	service  *withdraw.Service
	producer *Producer
	logger   *zap.Logger
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(brokers string, topic string, groupID string, svc *withdraw.Service, producer *Producer, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{brokers},
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{
		reader:   reader,
		service:  svc,
		producer: producer,
		logger:   logger,
	}
}

// Start starts consuming messages
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("Starting Kafka consumer")

	for {
		select {
		case <-ctx.Done():
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Error("Failed to read message", zap.Error(err))
				continue
			}

			if err := c.handleMessage(ctx, msg); err != nil {
				c.logger.Error("Failed to handle message",
					zap.String("topic", msg.Topic),
					zap.Int64("offset", msg.Offset),
					zap.Error(err),
				)
			}
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	var event WithdrawalRequestedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	c.logger.Info("Received withdrawal.requested event",
		zap.String("phone", event.Phone),
		zap.String("amount", event.Amount.String()),
	)

	result, err := c.service.Withdraw(ctx, model.WithdrawalRequest{
		Phone:             event.Phone,
		Amount:            event.Amount,
		CardNumber:        event.CardNumber,
		BankHint:          event.BankHint,
		Requisites:        event.Requisites,
		TxTypeID:          event.TxTypeID,
		UsePreview:        boolOr(event.UsePreview, true),
		IncludeCommission: boolOr(event.IncludeCommission, false),
		CreatePayment:     boolOr(event.CreatePayment, true),
	})
	if err != nil {
		return fmt.Errorf("run withdrawal: %w", err)
	}

	if c.producer != nil {
		if err := c.producer.PublishStatus(ctx, result); err != nil {
			c.logger.Error("Failed to publish status event",
				zap.String("withdrawalId", result.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Close closes the consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
