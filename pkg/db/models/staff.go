package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printhubhq/printhub-backend/pkg/enums"
)

// Staff is an operator account. CreatedAt doubles as the join date anchoring
// the staff member's earnings history.
type Staff struct {
	ID                   uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                 string            `gorm:"column:name;not null"`
	Email                string            `gorm:"column:email;not null;uniqueIndex:idx_staff_email"`
	PasswordHash         string            `gorm:"column:password_hash;not null"`
	Role                 enums.StaffRole   `gorm:"column:role;type:staff_role;not null"`
	CommissionPercentage decimal.Decimal   `gorm:"column:commission_percentage;type:numeric(5,2);not null;default:0"`
	DesignCharge         *int64            `gorm:"column:design_charge"`
	Balance              int64             `gorm:"column:balance;not null;default:0"`
	Status               enums.StaffStatus `gorm:"column:status;type:staff_status;not null;default:'offline'"`
	IsDeleted            bool              `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt            time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
