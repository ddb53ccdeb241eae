package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/pagination"
	"github.com/printhubhq/printhub-backend/pkg/visibility"
)

// Repository abstracts order persistence so services stay testable.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	CreateOrderImages(ctx context.Context, images []models.OrderImage) error

	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	SoftDeleteOrder(ctx context.Context, orderID uuid.UUID) error

	ListOrders(ctx context.Context, filter visibility.OrderFilter, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	CountOrders(ctx context.Context, filter visibility.OrderFilter) (int64, error)

	SumPaid(ctx context.Context, orderID uuid.UUID) (int64, error)
	FindStaleRequestOrders(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)

	ListAssignableStaff(ctx context.Context) ([]models.Staff, error)
	FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error)
}
