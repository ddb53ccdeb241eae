package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/pkg/db/models"
)

// Repository defines persistence operations for the payment ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindPaymentByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	SumPaid(ctx context.Context, orderID uuid.UUID) (int64, error)
	UpdatePayment(ctx context.Context, paymentID uuid.UUID, updates map[string]any) error
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
}
