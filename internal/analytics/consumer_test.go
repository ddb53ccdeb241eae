package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/printhubhq/printhub-backend/pkg/enums"
	"github.com/printhubhq/printhub-backend/pkg/logger"
	"github.com/printhubhq/printhub-backend/pkg/outbox"
	"github.com/printhubhq/printhub-backend/pkg/outbox/payloads"
)

type recordingWriter struct {
	rows []OrderEventRow
	err  error
}

func (r *recordingWriter) Insert(ctx context.Context, row OrderEventRow) error {
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, row)
	return nil
}

type fakeManager struct {
	processed map[uuid.UUID]bool
	err       error
	deleted   []uuid.UUID
}

func newFakeManager() *fakeManager {
	return &fakeManager{processed: map[uuid.UUID]bool{}}
}

func (f *fakeManager) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.processed[eventID] {
		return true, nil
	}
	f.processed[eventID] = true
	return false, nil
}

func (f *fakeManager) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	delete(f.processed, eventID)
	f.deleted = append(f.deleted, eventID)
	return nil
}

func newTestConsumer(writer rowWriter, manager idempotencyChecker) *Consumer {
	return &Consumer{
		writer:  writer,
		manager: manager,
		logg:    logger.New(logger.Options{}),
		eventFilter: map[enums.OutboxEventType]struct{}{
			enums.EventOrderCreated:       {},
			enums.EventOrderStatusUpdated: {},
			enums.EventPaymentRecorded:    {},
		},
	}
}

func orderEventMessage(t *testing.T, eventType enums.OutboxEventType, eventID uuid.UUID, actor *outbox.ActorRef, payload any) *pubsub.Message {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID.String(),
		OccurredAt: time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC),
		Actor:      actor,
		Data:       data,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return &pubsub.Message{
		ID:   uuid.NewString(),
		Data: envelope,
		Attributes: map[string]string{
			"event_type":     string(eventType),
			"aggregate_type": string(enums.AggregateOrder),
			"aggregate_id":   uuid.NewString(),
		},
	}
}

func TestConsumerIngestsOrderCreated(t *testing.T) {
	writer := &recordingWriter{}
	consumer := newTestConsumer(writer, newFakeManager())

	orderID := uuid.New()
	staffID := uuid.New()
	actor := &outbox.ActorRef{StaffID: uuid.New(), Role: string(enums.StaffRoleAdmin)}
	msg := orderEventMessage(t, enums.EventOrderCreated, uuid.New(), actor, payloads.OrderCreatedEvent{
		OrderID:       orderID,
		StaffID:       &staffID,
		Status:        enums.OrderStatusAdvancePaymentReceived,
		PaymentMethod: enums.PaymentMethodCOD,
		TotalCents:    1500,
	})

	if result := consumer.process(context.Background(), msg); result.nack {
		t.Fatal("expected ack")
	}
	if len(writer.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(writer.rows))
	}
	row := writer.rows[0]
	if row.EventType != string(enums.EventOrderCreated) {
		t.Fatalf("event type = %s", row.EventType)
	}
	if row.OrderID == nil || *row.OrderID != orderID.String() {
		t.Fatalf("order id not lifted from payload: %+v", row.OrderID)
	}
	if row.StaffID == nil || *row.StaffID != staffID.String() {
		t.Fatalf("staff id not lifted from payload: %+v", row.StaffID)
	}
	if row.TotalCents == nil || *row.TotalCents != 1500 {
		t.Fatalf("total cents not lifted from payload: %+v", row.TotalCents)
	}
	if row.ActorStaffID == nil || *row.ActorStaffID != actor.StaffID.String() {
		t.Fatalf("actor not lifted from envelope: %+v", row.ActorStaffID)
	}
	if !row.Payload.Valid {
		t.Fatal("raw payload must be preserved")
	}
}

func TestConsumerSkipsDuplicates(t *testing.T) {
	writer := &recordingWriter{}
	consumer := newTestConsumer(writer, newFakeManager())

	eventID := uuid.New()
	payload := payloads.PaymentRecordedEvent{OrderID: uuid.New(), AmountCents: 400}

	first := consumer.process(context.Background(), orderEventMessage(t, enums.EventPaymentRecorded, eventID, nil, payload))
	second := consumer.process(context.Background(), orderEventMessage(t, enums.EventPaymentRecorded, eventID, nil, payload))
	if first.nack || second.nack {
		t.Fatal("expected both deliveries to ack")
	}
	if len(writer.rows) != 1 {
		t.Fatalf("duplicate event must not insert twice, got %d rows", len(writer.rows))
	}
}

func TestConsumerIgnoresFilteredEvents(t *testing.T) {
	writer := &recordingWriter{}
	consumer := newTestConsumer(writer, newFakeManager())

	msg := orderEventMessage(t, enums.EventCommissionCredited, uuid.New(), nil, payloads.CommissionCreditedEvent{
		OrderID: uuid.New(),
		StaffID: uuid.New(),
	})

	if result := consumer.process(context.Background(), msg); result.nack {
		t.Fatal("filtered events ack without writing")
	}
	if len(writer.rows) != 0 {
		t.Fatalf("filtered events must not insert rows, got %d", len(writer.rows))
	}
}

func TestConsumerNacksOnWriterFailure(t *testing.T) {
	writer := &recordingWriter{err: errors.New("bigquery down")}
	manager := newFakeManager()
	consumer := newTestConsumer(writer, manager)

	eventID := uuid.New()
	msg := orderEventMessage(t, enums.EventOrderStatusUpdated, eventID, nil, payloads.OrderStatusUpdatedEvent{
		OrderID:    uuid.New(),
		FromStatus: enums.OrderStatusRequestReceived,
		ToStatus:   enums.OrderStatusDesignInProgress,
	})

	if result := consumer.process(context.Background(), msg); !result.nack {
		t.Fatal("writer failures must nack for redelivery")
	}
	if len(manager.deleted) != 1 || manager.deleted[0] != eventID {
		t.Fatal("idempotency mark must be released on failure")
	}
}

func TestConsumerAcksMalformedMessages(t *testing.T) {
	writer := &recordingWriter{}
	consumer := newTestConsumer(writer, newFakeManager())

	msg := &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       []byte("{not json"),
		Attributes: map[string]string{"event_type": string(enums.EventOrderCreated)},
	}

	if result := consumer.process(context.Background(), msg); result.nack {
		t.Fatal("poison messages must not redeliver")
	}
	if len(writer.rows) != 0 {
		t.Fatal("no row for malformed message")
	}
}
