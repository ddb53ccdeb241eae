package models

import (
	"time"

	"github.com/google/uuid"
)

// CommissionCredit records a balance credit for a completed order. The unique
// order id makes crediting idempotent across retried completion calls.
type CommissionCredit struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_commission_credits_order_id"`
	StaffID   uuid.UUID `gorm:"column:staff_id;type:uuid;not null"`
	Amount    int64     `gorm:"column:amount;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
