package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/pkg/enums"
)

// Order is the root of the fulfillment aggregate. PaymentStatus is derived
// from the payment ledger and never written by request handlers directly.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID      *uuid.UUID          `gorm:"column:customer_id;type:uuid"`
	StaffID         *uuid.UUID          `gorm:"column:staff_id;type:uuid"`
	BillingName     string              `gorm:"column:billing_name;not null"`
	BillingEmail    string              `gorm:"column:billing_email;not null"`
	BillingPhone    string              `gorm:"column:billing_phone;not null"`
	BillingAddress  string              `gorm:"column:billing_address;not null"`
	DeliveryAddress string              `gorm:"column:delivery_address"`
	Status          enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'order-request-received'"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null;default:'cod'"`
	OrderTotalPrice int64               `gorm:"column:order_total_price;not null"`
	DeliveryDate    *time.Time          `gorm:"column:delivery_date"`
	CourierID       *uuid.UUID          `gorm:"column:courier_id;type:uuid"`
	CourierAddress  *string             `gorm:"column:courier_address"`
	CouponID        *uuid.UUID          `gorm:"column:coupon_id;type:uuid"`
	Notes           *string             `gorm:"column:notes"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments        []Payment           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Images          []OrderImage        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt       gorm.DeletedAt      `gorm:"column:deleted_at;index"`
}

// OrderItem is a single printed line on an order.
type OrderItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	ProductName string    `gorm:"column:product_name;not null"`
	Quantity    int       `gorm:"column:quantity;not null"`
	UnitPrice   int64     `gorm:"column:unit_price;not null"`
	DesignNotes *string   `gorm:"column:design_notes"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// OrderImage references externally stored reference art or design proofs.
type OrderImage struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID            `gorm:"column:order_id;type:uuid;not null"`
	URL       string               `gorm:"column:url;not null"`
	Kind      enums.OrderImageKind `gorm:"column:kind;type:order_image_kind;not null;default:'reference'"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
}
