package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	"github.com/printhubhq/printhub-backend/pkg/pagination"
	"github.com/printhubhq/printhub-backend/pkg/visibility"
)

// ActorContext identifies the authenticated staff member driving an operation.
type ActorContext struct {
	StaffID uuid.UUID
	Role    enums.StaffRole
}

// CustomerInput is the billing identity attached to a new order. Orders are
// linked to an existing customer record by email, or a new record is created.
type CustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// ItemInput is one printed line on a new order.
type ItemInput struct {
	ProductName string
	Quantity    int
	UnitPrice   int64
	DesignNotes *string
}

// ImageInput references externally hosted reference art.
type ImageInput struct {
	URL  string
	Kind enums.OrderImageKind
}

// CreateDirectInput captures a staff-booked order with its initial payment.
type CreateDirectInput struct {
	Actor               ActorContext
	Customer            CustomerInput
	RequestedStaffID    *uuid.UUID
	Items               []ItemInput
	Images              []ImageInput
	PaymentMethod       enums.PaymentMethod
	InitialPaymentCents int64
	DeliveryAddress     string
	DeliveryDate        *time.Time
	Notes               *string
}

// CreateRequestInput captures a customer-initiated order request. No payment
// accompanies a request; it enters the pipeline unpaid and unassigned unless
// the assignment draw finds someone.
type CreateRequestInput struct {
	Actor           ActorContext
	Customer        CustomerInput
	Items           []ItemInput
	Images          []ImageInput
	DeliveryAddress string
	Notes           *string
}

// TransitionInput moves an order to a new lifecycle status.
type TransitionInput struct {
	OrderID   uuid.UUID
	NewStatus enums.OrderStatus
	Reason    string
	Actor     ActorContext
}

// ListInput drives the scoped, cursor-paginated order listing.
type ListInput struct {
	Actor  ActorContext
	Filter visibility.OrderFilter
	Page   pagination.Params
}

// OrderList wraps one page of orders plus the scoped total and next cursor.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	Total      int64          `json:"total"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
