package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/printhubhq/printhub-backend/pkg/enums"
)

// Payment is one entry in an order's append-only payment ledger. Rows are
// never updated after creation except the IsPaid flip by a gateway
// confirmation callback.
type Payment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID string              `gorm:"column:transaction_id;not null;uniqueIndex:idx_payments_transaction_id"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	Amount        int64               `gorm:"column:amount;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null"`
	IsPaid        bool                `gorm:"column:is_paid;not null;default:false"`
	PaymentLink   *string             `gorm:"column:payment_link"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}
