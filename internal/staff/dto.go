package staff

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/enums"
)

// ActorContext identifies the authenticated caller.
type ActorContext struct {
	StaffID uuid.UUID
	Role    enums.StaffRole
}

// CreateInput registers a new staff account.
type CreateInput struct {
	Actor                ActorContext
	Name                 string
	Email                string
	Password             string
	Role                 enums.StaffRole
	CommissionPercentage decimal.Decimal
	DesignCharge         *int64
}

// UpdateInput modifies an existing staff account. Nil fields are untouched.
type UpdateInput struct {
	Actor                ActorContext
	StaffID              uuid.UUID
	Name                 *string
	CommissionPercentage *decimal.Decimal
	DesignCharge         *int64
	Role                 *enums.StaffRole
}

// SetStatusInput flips a staff member's availability.
type SetStatusInput struct {
	Actor   ActorContext
	StaffID uuid.UUID
	Status  enums.StaffStatus
}

// LoginInput authenticates a staff member by email and password.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the minted token and the authenticated account.
type LoginResult struct {
	Token string        `json:"token"`
	Staff *models.Staff `json:"staff"`
}
