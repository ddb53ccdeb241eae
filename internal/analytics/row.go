package analytics

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// OrderEventRow mirrors the order_events BigQuery schema. One row per
// outbox event, with the common lifecycle fields lifted out of the payload.
type OrderEventRow struct {
	EventID       string             `bigquery:"event_id"`
	EventType     string             `bigquery:"event_type"`
	AggregateType string             `bigquery:"aggregate_type"`
	AggregateID   string             `bigquery:"aggregate_id"`
	OccurredAt    time.Time          `bigquery:"occurred_at"`
	OrderID       *string            `bigquery:"order_id"`
	StaffID       *string            `bigquery:"staff_id"`
	ActorStaffID  *string            `bigquery:"actor_staff_id"`
	ActorRole     *string            `bigquery:"actor_role"`
	FromStatus    *string            `bigquery:"from_status"`
	ToStatus      *string            `bigquery:"to_status"`
	PaymentMethod *string            `bigquery:"payment_method"`
	AmountCents   *int64             `bigquery:"amount_cents"`
	TotalCents    *int64             `bigquery:"total_cents"`
	Payload       cbigquery.NullJSON `bigquery:"payload"`
}
