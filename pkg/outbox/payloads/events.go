package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printhubhq/printhub-backend/pkg/enums"
)

// OrderCreatedEvent signals a new order entering the pipeline.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	CustomerID    *uuid.UUID          `json:"customer_id,omitempty"`
	StaffID       *uuid.UUID          `json:"staff_id,omitempty"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	TotalCents    int64               `json:"total_cents"`
}

// OrderStatusUpdatedEvent is emitted on every lifecycle transition.
type OrderStatusUpdatedEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	StaffID    *uuid.UUID        `json:"staff_id,omitempty"`
	FromStatus enums.OrderStatus `json:"from_status"`
	ToStatus   enums.OrderStatus `json:"to_status"`
}

// OrderCanceledEvent is emitted when an order reaches the canceled terminal state.
type OrderCanceledEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	StaffID    *uuid.UUID        `json:"staff_id,omitempty"`
	FromStatus enums.OrderStatus `json:"from_status"`
	CanceledAt time.Time         `json:"canceled_at"`
	Reason     string            `json:"reason,omitempty"`
}

// OrderCompletedEvent is emitted when a fully paid order completes.
type OrderCompletedEvent struct {
	OrderID     uuid.UUID  `json:"order_id"`
	StaffID     *uuid.UUID `json:"staff_id,omitempty"`
	TotalCents  int64      `json:"total_cents"`
	CompletedAt time.Time  `json:"completed_at"`
}

// OrderRequestNudgeEvent carries the payload for stale request reminders.
type OrderRequestNudgeEvent struct {
	OrderID     uuid.UUID         `json:"orderId"`
	StaffID     *uuid.UUID        `json:"staffId,omitempty"`
	Status      enums.OrderStatus `json:"status"`
	PendingDays int               `json:"pendingDays"`
}

// PaymentRecordedEvent is emitted when a payment row lands in the ledger.
type PaymentRecordedEvent struct {
	PaymentID     uuid.UUID           `json:"payment_id"`
	OrderID       uuid.UUID           `json:"order_id"`
	TransactionID string              `json:"transaction_id"`
	AmountCents   int64               `json:"amount_cents"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	IsPaid        bool                `json:"is_paid"`
}

// PaymentConfirmedEvent is emitted when a pending online payment is confirmed.
type PaymentConfirmedEvent struct {
	PaymentID     uuid.UUID           `json:"payment_id"`
	OrderID       uuid.UUID           `json:"order_id"`
	TransactionID string              `json:"transaction_id"`
	AmountCents   int64               `json:"amount_cents"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	ConfirmedAt   time.Time           `json:"confirmed_at"`
}

// CommissionCreditedEvent reports a commission credit against a staff balance.
type CommissionCreditedEvent struct {
	CreditID    uuid.UUID       `json:"credit_id"`
	OrderID     uuid.UUID       `json:"order_id"`
	StaffID     uuid.UUID       `json:"staff_id"`
	Percentage  decimal.Decimal `json:"percentage"`
	AmountCents int64           `json:"amount_cents"`
	CreditedAt  time.Time       `json:"credited_at"`
}

// DesignerEarningsSnapshotEvent mirrors one row of the monthly distribution run.
type DesignerEarningsSnapshotEvent struct {
	StaffID           uuid.UUID `json:"staffId"`
	Year              int       `json:"year"`
	Month             int       `json:"month"`
	OrderCount        int       `json:"orderCount"`
	ActiveDesigners   int       `json:"activeDesigners"`
	DesignChargeCents int64     `json:"designChargeCents"`
	EarningsCents     int64     `json:"earningsCents"`
	GeneratedAt       time.Time `json:"generatedAt"`
}
