package earnings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/pkg/db"
	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/logger"
	"github.com/printhubhq/printhub-backend/pkg/outbox"
	"github.com/printhubhq/printhub-backend/pkg/outbox/payloads"
)

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CommissionEngine credits the assigned staff member's balance when an order
// completes. It runs inside the completion transaction; the unique order id
// on commission_credits makes the credit idempotent across retries.
type CommissionEngine struct {
	enabled bool
	outbox  outboxPublisher
	logg    *logger.Logger
}

// NewCommissionEngine builds the engine. enabled mirrors the
// credit_commission_on_completion feature flag; when off every call is a
// no-op.
func NewCommissionEngine(enabled bool, ob outboxPublisher, logg *logger.Logger) (*CommissionEngine, error) {
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &CommissionEngine{enabled: enabled, outbox: ob, logg: logg}, nil
}

// CreditOnCompletionTx credits commission for one completed order. Unassigned
// orders and non-commission roles are skipped.
func (e *CommissionEngine) CreditOnCompletionTx(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if !e.enabled {
		return nil
	}
	if order.StaffID == nil {
		return nil
	}

	var staff models.Staff
	err := tx.WithContext(ctx).
		Where("id = ?", *order.StaffID).
		First(&staff).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			e.logg.Warn(ctx, "assigned staff missing, skipping commission credit")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assigned staff")
	}
	if !staff.Role.EarnsCommission() {
		return nil
	}

	amount := ComputeCommission(order.OrderTotalPrice, staff.CommissionPercentage)
	if amount <= 0 {
		return nil
	}

	credit := &models.CommissionCredit{
		ID:      uuid.New(),
		OrderID: order.ID,
		StaffID: staff.ID,
		Amount:  amount,
	}
	if err := tx.WithContext(ctx).Create(credit).Error; err != nil {
		if db.IsUniqueViolation(err, "commission_credits") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create commission credit")
	}

	err = tx.WithContext(ctx).
		Model(&models.Staff{}).
		Where("id = ?", staff.ID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit staff balance")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventCommissionCredited,
		AggregateType: enums.AggregateStaff,
		AggregateID:   staff.ID,
		Version:       1,
		Data: payloads.CommissionCreditedEvent{
			CreditID:    credit.ID,
			OrderID:     order.ID,
			StaffID:     staff.ID,
			Percentage:  staff.CommissionPercentage,
			AmountCents: amount,
			CreditedAt:  time.Now().UTC(),
		},
	}
	return e.outbox.Emit(ctx, tx, event)
}
