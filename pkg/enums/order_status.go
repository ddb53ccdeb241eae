package enums

import "fmt"

// OrderStatus tracks the fulfillment lifecycle of an order. The listed order
// is the expected progression; only the completion gate is enforced.
type OrderStatus string

const (
	OrderStatusRequestReceived        OrderStatus = "order-request-received"
	OrderStatusConsultationInProgress OrderStatus = "consultation-in-progress"
	OrderStatusAwaitingAdvancePayment OrderStatus = "awaiting-advance-payment"
	OrderStatusAdvancePaymentReceived OrderStatus = "advance-payment-received"
	OrderStatusDesignInProgress       OrderStatus = "design-in-progress"
	OrderStatusAwaitingDesignApproval OrderStatus = "awaiting-design-approval"
	OrderStatusProductionStarted      OrderStatus = "production-started"
	OrderStatusProductionInProgress   OrderStatus = "production-in-progress"
	OrderStatusReadyForDelivery       OrderStatus = "ready-for-delivery"
	OrderStatusOutForDelivery         OrderStatus = "out-for-delivery"
	OrderStatusCompleted              OrderStatus = "order-completed"
	OrderStatusCanceled               OrderStatus = "order-canceled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusRequestReceived,
	OrderStatusConsultationInProgress,
	OrderStatusAwaitingAdvancePayment,
	OrderStatusAdvancePaymentReceived,
	OrderStatusDesignInProgress,
	OrderStatusAwaitingDesignApproval,
	OrderStatusProductionStarted,
	OrderStatusProductionInProgress,
	OrderStatusReadyForDelivery,
	OrderStatusOutForDelivery,
	OrderStatusCompleted,
	OrderStatusCanceled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCanceled
}

// IsRequestPhase reports whether the order still sits before the first
// confirmed payment. Orders in this phase auto-promote to
// advance-payment-received when the cumulative paid amount first exceeds zero.
func (s OrderStatus) IsRequestPhase() bool {
	switch s {
	case OrderStatusRequestReceived, OrderStatusConsultationInProgress, OrderStatusAwaitingAdvancePayment:
		return true
	default:
		return false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
