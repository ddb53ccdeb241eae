package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	cbigquery "cloud.google.com/go/bigquery"
	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/printhubhq/printhub-backend/pkg/enums"
	"github.com/printhubhq/printhub-backend/pkg/logger"
	"github.com/printhubhq/printhub-backend/pkg/outbox"
)

const analyticsConsumerName = "analytics"

type rowWriter interface {
	Insert(ctx context.Context, row OrderEventRow) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer streams order lifecycle events into BigQuery while honoring Redis idempotency.
type Consumer struct {
	subscription *pubsub.Subscriber
	writer       rowWriter
	manager      idempotencyChecker
	logg         *logger.Logger
	eventFilter  map[enums.OutboxEventType]struct{}
}

// NewConsumer builds a new analytics consumer.
func NewConsumer(subscription *pubsub.Subscriber, writer rowWriter, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("analytics subscription required")
	}
	if writer == nil {
		return nil, fmt.Errorf("analytics writer required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: subscription,
		writer:       writer,
		manager:      manager,
		logg:         logg,
		eventFilter: map[enums.OutboxEventType]struct{}{
			enums.EventOrderCreated:       {},
			enums.EventOrderStatusUpdated: {},
			enums.EventOrderCanceled:      {},
			enums.EventOrderCompleted:     {},
			enums.EventPaymentRecorded:    {},
			enums.EventPaymentConfirmed:   {},
		},
	}, nil
}

// Run starts consuming analytics messages until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(innerCtx context.Context, msg *pubsub.Message) {
		if c.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawType := strings.TrimSpace(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	})

	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil {
		c.logg.Warn(logCtx, "unknown event type")
		return processResult{}
	}
	if _, ok := c.eventFilter[eventType]; !ok {
		c.logg.Info(logCtx, "event not handled by analytics consumer")
		return processResult{}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Warn(logCtx, "invalid event id")
		return processResult{}
	}

	already, err := c.manager.CheckAndMarkProcessed(ctx, analyticsConsumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{}
	}

	row, err := buildRow(eventType, msg.Attributes, envelope)
	if err != nil {
		c.logg.Error(logCtx, "failed to build order event row", err)
		_ = c.manager.Delete(ctx, analyticsConsumerName, eventID)
		return processResult{}
	}

	if err := c.writer.Insert(ctx, row); err != nil {
		c.logg.Error(logCtx, "failed to insert order event row", err)
		_ = c.manager.Delete(ctx, analyticsConsumerName, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "order event ingested")
	return processResult{}
}

func buildRow(eventType enums.OutboxEventType, attributes map[string]string, envelope outbox.PayloadEnvelope) (OrderEventRow, error) {
	payload := map[string]any{}
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return OrderEventRow{}, fmt.Errorf("decode payload: %w", err)
		}
		if payload == nil {
			payload = map[string]any{}
		}
	}

	payloadJSON := cbigquery.NullJSON{}
	if len(envelope.Data) > 0 {
		payloadJSON.Valid = true
		payloadJSON.JSONVal = string(envelope.Data)
	}

	row := OrderEventRow{
		EventID:       envelope.EventID,
		EventType:     string(eventType),
		AggregateType: strings.TrimSpace(attributes["aggregate_type"]),
		AggregateID:   strings.TrimSpace(attributes["aggregate_id"]),
		OccurredAt:    envelope.OccurredAt.UTC(),
		OrderID:       stringValue(payload, "order_id"),
		StaffID:       stringValue(payload, "staff_id"),
		FromStatus:    stringValue(payload, "from_status"),
		ToStatus:      stringValue(payload, "to_status"),
		PaymentMethod: stringValue(payload, "payment_method"),
		AmountCents:   int64Value(payload, "amount_cents"),
		TotalCents:    int64Value(payload, "total_cents"),
		Payload:       payloadJSON,
	}
	if envelope.Actor != nil {
		actorID := envelope.Actor.StaffID.String()
		row.ActorStaffID = &actorID
		if envelope.Actor.Role != "" {
			role := envelope.Actor.Role
			row.ActorRole = &role
		}
	}
	return row, nil
}

func stringValue(payload map[string]any, key string) *string {
	if raw, ok := payload[key]; ok {
		if str, ok := raw.(string); ok {
			trimmed := strings.TrimSpace(str)
			if trimmed != "" {
				return &trimmed
			}
		}
	}
	return nil
}

func int64Value(payload map[string]any, key string) *int64 {
	if raw, ok := payload[key]; ok {
		if num, ok := raw.(float64); ok {
			value := int64(num)
			return &value
		}
	}
	return nil
}
