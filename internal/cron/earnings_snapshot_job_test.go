package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	"github.com/printhubhq/printhub-backend/pkg/logger"
	"github.com/printhubhq/printhub-backend/pkg/outbox/payloads"
)

type stubDistributionSource struct {
	designers  []models.Staff
	orderTimes []time.Time
}

func (s *stubDistributionSource) ListDesigners(ctx context.Context) ([]models.Staff, error) {
	return s.designers, nil
}

func (s *stubDistributionSource) ListCountableOrderTimes(ctx context.Context) ([]time.Time, error) {
	return s.orderTimes, nil
}

type stubDeduper struct {
	seen map[uuid.UUID]struct{}
}

func newStubDeduper() *stubDeduper {
	return &stubDeduper{seen: map[uuid.UUID]struct{}{}}
}

func (s *stubDeduper) ExistsSinceTx(tx *gorm.DB, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID, since time.Time) (bool, error) {
	_, exists := s.seen[aggregateID]
	s.seen[aggregateID] = struct{}{}
	return exists, nil
}

func snapshotDesigner(name string, charge int64, joined time.Time) models.Staff {
	return models.Staff{
		ID:           uuid.New(),
		Name:         name,
		Role:         enums.StaffRoleDesigner,
		DesignCharge: &charge,
		CreatedAt:    joined,
	}
}

func newSnapshotJob(t *testing.T, source distributionSource, emitter outboxEmitter, deduper snapshotDeduper, now time.Time) *earningsSnapshotJob {
	t.Helper()

	job, err := NewEarningsSnapshotJob(EarningsSnapshotJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "cron-test"}),
		DB:      stubTxRunner{},
		Source:  source,
		Outbox:  emitter,
		Deduper: deduper,
	})
	if err != nil {
		t.Fatalf("NewEarningsSnapshotJob: %v", err)
	}
	typed := job.(*earningsSnapshotJob)
	typed.now = func() time.Time { return now }
	return typed
}

func TestEarningsSnapshotEmitsPreviousMonth(t *testing.T) {
	july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	august := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	source := &stubDistributionSource{
		designers: []models.Staff{snapshotDesigner("Designer", 100, july)},
		orderTimes: []time.Time{
			july.Add(24 * time.Hour),
			july.Add(48 * time.Hour),
		},
	}
	emitter := newRecordingEmitter()

	job := newSnapshotJob(t, source, emitter, newStubDeduper(), august)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(emitter.events) != 1 {
		t.Fatalf("expected 1 snapshot event, got %d", len(emitter.events))
	}
	event := emitter.events[0]
	if event.EventType != enums.EventDesignerEarningsSnapshot {
		t.Fatalf("event type = %s", event.EventType)
	}
	payload, ok := event.Data.(payloads.DesignerEarningsSnapshotEvent)
	if !ok {
		t.Fatalf("payload type %T", event.Data)
	}
	if payload.Year != 2026 || payload.Month != 7 {
		t.Fatalf("snapshot month = %d-%d, want 2026-7", payload.Year, payload.Month)
	}
	if payload.OrderCount != 2 || payload.ActiveDesigners != 1 {
		t.Fatalf("counts = %d orders / %d designers", payload.OrderCount, payload.ActiveDesigners)
	}
	// 2 orders / 1 designer * 100 cents.
	if payload.EarningsCents != 200 {
		t.Fatalf("earnings = %d, want 200", payload.EarningsCents)
	}
}

func TestEarningsSnapshotSkipsDesignersJoinedAfterMonth(t *testing.T) {
	august := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	source := &stubDistributionSource{
		designers: []models.Staff{snapshotDesigner("New Hire", 100, august.AddDate(0, 0, -1))},
	}
	emitter := newRecordingEmitter()

	job := newSnapshotJob(t, source, emitter, newStubDeduper(), august)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(emitter.events) != 0 {
		t.Fatalf("designers without a closed month must not snapshot, got %d", len(emitter.events))
	}
}

func TestEarningsSnapshotIsOncePerMonth(t *testing.T) {
	july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	august := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)

	source := &stubDistributionSource{
		designers:  []models.Staff{snapshotDesigner("Designer", 100, july)},
		orderTimes: []time.Time{july.Add(time.Hour)},
	}
	emitter := newRecordingEmitter()
	deduper := newStubDeduper()

	job := newSnapshotJob(t, source, emitter, deduper, august)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("repeat runs must not re-emit, got %d events", len(emitter.events))
	}
}

func TestEarningsSnapshotEmptyRoster(t *testing.T) {
	job := newSnapshotJob(t, &stubDistributionSource{}, newRecordingEmitter(), newStubDeduper(), time.Now().UTC())
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
