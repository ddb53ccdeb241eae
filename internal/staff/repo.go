package staff

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/pkg/db/models"
)

// Repository abstracts staff persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, staff *models.Staff) (*models.Staff, error)
	FindByID(ctx context.Context, staffID uuid.UUID) (*models.Staff, error)
	FindByEmail(ctx context.Context, email string) (*models.Staff, error)
	List(ctx context.Context) ([]models.Staff, error)
	Update(ctx context.Context, staffID uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a staff repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, staff *models.Staff) (*models.Staff, error) {
	if err := r.db.WithContext(ctx).Create(staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

func (r *repository) FindByID(ctx context.Context, staffID uuid.UUID) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).
		Where("id = ?", staffID).
		First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *repository) List(ctx context.Context) ([]models.Staff, error) {
	var staff []models.Staff
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at ASC").
		Find(&staff).Error
	if err != nil {
		return nil, err
	}
	return staff, nil
}

func (r *repository) Update(ctx context.Context, staffID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Staff{}).
		Where("id = ?", staffID).
		Updates(updates).Error
}
