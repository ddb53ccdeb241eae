package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	"github.com/printhubhq/printhub-backend/pkg/logger"
	"github.com/printhubhq/printhub-backend/pkg/outbox"
	"github.com/printhubhq/printhub-backend/pkg/outbox/idempotency"
	"github.com/printhubhq/printhub-backend/pkg/outbox/payloads"
)

const notificationsConsumer = "notifications-worker"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches domain events and turns them into staff inbox rows.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the notifications consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	handler, ok := c.handlerFor(enums.OutboxEventType(eventType))
	if !ok {
		c.logg.Info(logCtx, "skipping event without notification handler")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationsConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := handler(ctx, envelope.Data); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, notificationsConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

type payloadHandler func(ctx context.Context, data json.RawMessage) error

func (c *Consumer) handlerFor(eventType enums.OutboxEventType) (payloadHandler, bool) {
	switch eventType {
	case enums.EventOrderCreated:
		return c.handleOrderCreated, true
	case enums.EventOrderCanceled:
		return c.handleOrderCanceled, true
	case enums.EventPaymentConfirmed:
		return c.handlePaymentConfirmed, true
	case enums.EventOrderRequestNudge:
		return c.handleRequestNudge, true
	case enums.EventCommissionCredited:
		return c.handleCommissionCredited, true
	case enums.EventDesignerEarningsSnapshot:
		return c.handleEarningsSnapshot, true
	default:
		return nil, false
	}
}

func (c *Consumer) handleOrderCreated(ctx context.Context, data json.RawMessage) error {
	var payload payloads.OrderCreatedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse order_created payload: %w", err)
	}
	if payload.OrderID == uuid.Nil {
		return fmt.Errorf("order id missing")
	}

	link := orderLink(payload.OrderID)
	if payload.StaffID != nil {
		return c.repo.Create(ctx, &models.Notification{
			ID:      uuid.New(),
			StaffID: payload.StaffID,
			Type:    enums.NotificationTypeOrderAlert,
			Title:   "Order assigned to you",
			Message: fmt.Sprintf("Order %s has been assigned to you.", payload.OrderID),
			Link:    &link,
		})
	}
	return c.repo.Create(ctx, &models.Notification{
		ID:      uuid.New(),
		Type:    enums.NotificationTypeOrderAlert,
		Title:   "Unassigned order created",
		Message: fmt.Sprintf("Order %s was created with no staff available for assignment.", payload.OrderID),
		Link:    &link,
	})
}

func (c *Consumer) handleOrderCanceled(ctx context.Context, data json.RawMessage) error {
	var payload payloads.OrderCanceledEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse order_canceled payload: %w", err)
	}
	if payload.OrderID == uuid.Nil {
		return fmt.Errorf("order id missing")
	}

	link := orderLink(payload.OrderID)
	message := fmt.Sprintf("Order %s was canceled.", payload.OrderID)
	if payload.Reason != "" {
		message = fmt.Sprintf("Order %s was canceled. Reason: %s", payload.OrderID, payload.Reason)
	}
	return c.repo.Create(ctx, &models.Notification{
		ID:      uuid.New(),
		StaffID: payload.StaffID,
		Type:    enums.NotificationTypeOrderAlert,
		Title:   "Order canceled",
		Message: message,
		Link:    &link,
	})
}

func (c *Consumer) handlePaymentConfirmed(ctx context.Context, data json.RawMessage) error {
	var payload payloads.PaymentConfirmedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse payment_confirmed payload: %w", err)
	}
	if payload.OrderID == uuid.Nil {
		return fmt.Errorf("order id missing")
	}

	link := orderLink(payload.OrderID)
	return c.repo.Create(ctx, &models.Notification{
		ID:      uuid.New(),
		Type:    enums.NotificationTypePaymentAlert,
		Title:   "Online payment confirmed",
		Message: fmt.Sprintf("Payment %s for order %s settled. Order is now %s.", payload.TransactionID, payload.OrderID, payload.PaymentStatus),
		Link:    &link,
	})
}

func (c *Consumer) handleRequestNudge(ctx context.Context, data json.RawMessage) error {
	var payload payloads.OrderRequestNudgeEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse order_request_nudge payload: %w", err)
	}
	if payload.OrderID == uuid.Nil {
		return fmt.Errorf("order id missing")
	}

	link := orderLink(payload.OrderID)
	return c.repo.Create(ctx, &models.Notification{
		ID:      uuid.New(),
		StaffID: payload.StaffID,
		Type:    enums.NotificationTypeOrderAlert,
		Title:   "Order request needs attention",
		Message: fmt.Sprintf("Order %s has been stuck in %s for %d days.", payload.OrderID, payload.Status, payload.PendingDays),
		Link:    &link,
	})
}

func (c *Consumer) handleCommissionCredited(ctx context.Context, data json.RawMessage) error {
	var payload payloads.CommissionCreditedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse commission_credited payload: %w", err)
	}
	if payload.StaffID == uuid.Nil {
		return fmt.Errorf("staff id missing")
	}

	link := orderLink(payload.OrderID)
	staffID := payload.StaffID
	return c.repo.Create(ctx, &models.Notification{
		ID:      uuid.New(),
		StaffID: &staffID,
		Type:    enums.NotificationTypeEarningsUpdate,
		Title:   "Commission credited",
		Message: fmt.Sprintf("You earned %d cents in commission on order %s.", payload.AmountCents, payload.OrderID),
		Link:    &link,
	})
}

func (c *Consumer) handleEarningsSnapshot(ctx context.Context, data json.RawMessage) error {
	var payload payloads.DesignerEarningsSnapshotEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse designer_earnings_snapshot payload: %w", err)
	}
	if payload.StaffID == uuid.Nil {
		return fmt.Errorf("staff id missing")
	}

	link := fmt.Sprintf("/staff/%s/earnings", payload.StaffID)
	staffID := payload.StaffID
	return c.repo.Create(ctx, &models.Notification{
		ID:      uuid.New(),
		StaffID: &staffID,
		Type:    enums.NotificationTypeEarningsUpdate,
		Title:   "Monthly earnings posted",
		Message: fmt.Sprintf("Your %d-%02d design earnings came to %d cents across %d orders.", payload.Year, payload.Month, payload.EarningsCents, payload.OrderCount),
		Link:    &link,
	})
}

func orderLink(orderID uuid.UUID) string {
	return fmt.Sprintf("/orders/%s", orderID)
}
