package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/internal/earnings"
	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	"github.com/printhubhq/printhub-backend/pkg/logger"
	"github.com/printhubhq/printhub-backend/pkg/metrics"
	"github.com/printhubhq/printhub-backend/pkg/outbox"
	"github.com/printhubhq/printhub-backend/pkg/outbox/payloads"
)

type distributionSource interface {
	ListDesigners(ctx context.Context) ([]models.Staff, error)
	ListCountableOrderTimes(ctx context.Context) ([]time.Time, error)
}

type snapshotDeduper interface {
	ExistsSinceTx(tx *gorm.DB, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID, since time.Time) (bool, error)
}

// EarningsSnapshotJobParams configure the monthly designer payout snapshot.
type EarningsSnapshotJobParams struct {
	Logger  *logger.Logger
	DB      txRunner
	Source  distributionSource
	Outbox  outboxEmitter
	Deduper snapshotDeduper
	Metrics *metrics.CronJobMetrics
}

// NewEarningsSnapshotJob builds the job that freezes the previous month of
// the designer distribution into outbox events, once per designer per month.
func NewEarningsSnapshotJob(params EarningsSnapshotJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Source == nil {
		return nil, fmt.Errorf("distribution source required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if params.Deduper == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	return &earningsSnapshotJob{
		logg:    params.Logger,
		db:      params.DB,
		source:  params.Source,
		outbox:  params.Outbox,
		deduper: params.Deduper,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type earningsSnapshotJob struct {
	logg    *logger.Logger
	db      txRunner
	source  distributionSource
	outbox  outboxEmitter
	deduper snapshotDeduper
	metrics *metrics.CronJobMetrics
	now     func() time.Time
}

func (j *earningsSnapshotJob) Name() string { return "designer-earnings-snapshot" }

func (j *earningsSnapshotJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	currentStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevStart := currentStart.AddDate(0, -1, 0)
	target := earnings.Month{Year: prevStart.Year(), Month: prevStart.Month()}

	designers, err := j.source.ListDesigners(ctx)
	if err != nil {
		return fmt.Errorf("list designers: %w", err)
	}
	if len(designers) == 0 {
		j.logg.Info(ctx, "no designers to snapshot")
		return nil
	}
	orderTimes, err := j.source.ListCountableOrderTimes(ctx)
	if err != nil {
		return fmt.Errorf("list countable orders: %w", err)
	}

	statements := earnings.DistributeDesignerEarnings(designers, orderTimes, now)

	var errs error
	count := 0
	for _, statement := range statements {
		month, ok := findMonth(statement, target)
		if !ok {
			continue
		}
		emitted, err := j.emitSnapshot(ctx, statement, month, currentStart, now)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("snapshot designer %s: %w", statement.StaffID, err))
			continue
		}
		if emitted {
			count++
		}
	}
	if j.metrics != nil {
		j.metrics.AddProcessed(j.Name(), count)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"count": count,
		"year":  target.Year,
		"month": int(target.Month),
	})
	j.logg.Info(logCtx, "designer earnings snapshot complete")
	return errs
}

func findMonth(statement earnings.DesignerStatement, target earnings.Month) (earnings.DesignerMonthEarning, bool) {
	for _, month := range statement.Months {
		if month.Month == target {
			return month, true
		}
	}
	return earnings.DesignerMonthEarning{}, false
}

func (j *earningsSnapshotJob) emitSnapshot(ctx context.Context, statement earnings.DesignerStatement, month earnings.DesignerMonthEarning, since, now time.Time) (bool, error) {
	emitted := false
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		exists, err := j.deduper.ExistsSinceTx(tx, enums.EventDesignerEarningsSnapshot, enums.AggregateStaff, statement.StaffID, since)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventDesignerEarningsSnapshot,
			AggregateType: enums.AggregateStaff,
			AggregateID:   statement.StaffID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.DesignerEarningsSnapshotEvent{
				StaffID:           statement.StaffID,
				Year:              month.Month.Year,
				Month:             int(month.Month.Month),
				OrderCount:        month.OrderCount,
				ActiveDesigners:   month.ActiveDesigners,
				DesignChargeCents: statement.DesignCharge,
				EarningsCents:     month.Earning.Round(0).IntPart(),
				GeneratedAt:       now,
			},
		}
		if err := j.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
		emitted = true
		return nil
	})
	return emitted, err
}
