package earnings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/enums"
)

// PaymentStamp is the slice of a payment row the earnings math needs.
type PaymentStamp struct {
	AmountCents int64
	CreatedAt   time.Time
}

// Repository reads the committed order/payment/staff history the earnings
// computations recompute from. All reads, no locks: computations run against
// committed snapshots.
type Repository interface {
	FindStaff(ctx context.Context, staffID uuid.UUID) (*models.Staff, error)
	ListDesigners(ctx context.Context) ([]models.Staff, error)
	ListCountableOrderTimes(ctx context.Context) ([]time.Time, error)
	ListSettledPaymentsForStaff(ctx context.Context, staffID uuid.UUID) ([]PaymentStamp, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an earnings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindStaff(ctx context.Context, staffID uuid.UUID) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).
		Where("id = ?", staffID).
		First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *repository) ListDesigners(ctx context.Context) ([]models.Staff, error) {
	var designers []models.Staff
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_deleted = ?", enums.StaffRoleDesigner, false).
		Order("created_at ASC").
		Find(&designers).Error
	if err != nil {
		return nil, err
	}
	return designers, nil
}

// ListCountableOrderTimes returns the creation times of every order that
// counts toward the designer distribution. Canceled orders never count, no
// matter when they were canceled.
func (r *repository) ListCountableOrderTimes(ctx context.Context) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status != ?", enums.OrderStatusCanceled).
		Pluck("created_at", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *repository) ListSettledPaymentsForStaff(ctx context.Context, staffID uuid.UUID) ([]PaymentStamp, error) {
	var stamps []PaymentStamp
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("payments.amount AS amount_cents, payments.created_at AS created_at").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.staff_id = ? AND orders.deleted_at IS NULL AND payments.is_paid = ?", staffID, true).
		Order("payments.created_at ASC").
		Scan(&stamps).Error
	if err != nil {
		return nil, err
	}
	return stamps, nil
}
