package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/pkg/config"
	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	"github.com/printhubhq/printhub-backend/pkg/logger"
	"github.com/printhubhq/printhub-backend/pkg/metrics"
	"github.com/printhubhq/printhub-backend/pkg/outbox"
	"github.com/printhubhq/printhub-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type staleRequestReader interface {
	FindStaleRequestOrders(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

// RequestNudgeJobParams configure the stale request reminder job.
type RequestNudgeJobParams struct {
	Logger  *logger.Logger
	DB      txRunner
	Orders  staleRequestReader
	Outbox  outboxEmitter
	Metrics *metrics.CronJobMetrics
	Config  config.CronConfig
}

// NewRequestNudgeJob builds the job that reminds staff about request-phase
// orders that have sat untouched past the configured window. Each order is
// nudged at most once; EmitIfNotExists dedupes on the outbox table.
func NewRequestNudgeJob(params RequestNudgeJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	after := params.Config.StaleRequestAfter
	if after <= 0 {
		after = 72 * time.Hour
	}
	batch := params.Config.StaleRequestBatch
	if batch <= 0 {
		batch = 100
	}
	return &requestNudgeJob{
		logg:    params.Logger,
		db:      params.DB,
		orders:  params.Orders,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		after:   after,
		batch:   batch,
		now:     time.Now,
	}, nil
}

type requestNudgeJob struct {
	logg    *logger.Logger
	db      txRunner
	orders  staleRequestReader
	outbox  outboxEmitter
	metrics *metrics.CronJobMetrics
	after   time.Duration
	batch   int
	now     func() time.Time
}

func (j *requestNudgeJob) Name() string { return "order-request-nudge" }

func (j *requestNudgeJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.after)
	stale, err := j.orders.FindStaleRequestOrders(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("query stale request orders: %w", err)
	}

	var errs error
	count := 0
	for _, order := range stale {
		if err := j.emitNudge(ctx, order); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("nudge order %s: %w", order.ID, err))
			continue
		}
		count++
	}
	if j.metrics != nil {
		j.metrics.AddProcessed(j.Name(), count)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count, "stale": len(stale)})
	j.logg.Info(logCtx, "request nudge loop complete")
	return errs
}

func (j *requestNudgeJob) emitNudge(ctx context.Context, order models.Order) error {
	pendingDays := int(j.now().UTC().Sub(order.UpdatedAt).Hours() / 24)
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderRequestNudge,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			OccurredAt:    j.now().UTC(),
			Data: payloads.OrderRequestNudgeEvent{
				OrderID:     order.ID,
				StaffID:     order.StaffID,
				Status:      order.Status,
				PendingDays: pendingDays,
			},
		}
		return j.outbox.EmitIfNotExists(ctx, tx, event)
	})
}
