package visibility

import (
	"github.com/google/uuid"

	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
)

// OrderFilter is the caller-supplied filter for order listings. The same
// value, after ApplyScope, drives both the rows query and the count query so
// pagination totals cannot drift from the visible rows.
type OrderFilter struct {
	StaffID       *uuid.UUID
	Unassigned    bool
	CustomerID    *uuid.UUID
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
}

// ApplyScope rewrites the filter according to the caller's role.
//
// Agents and offline agents only ever see their own assigned orders: any
// requested staff filter is overridden with the caller's id. Admins and
// designers see everything including unassigned orders, so any staff
// constraint is stripped for them.
func ApplyScope(role enums.StaffRole, callerStaffID uuid.UUID, filter OrderFilter) (OrderFilter, error) {
	switch role {
	case enums.StaffRoleAgent, enums.StaffRoleOfflineAgent:
		if callerStaffID == uuid.Nil {
			return OrderFilter{}, pkgerrors.New(pkgerrors.CodeForbidden, "caller staff id required")
		}
		scoped := filter
		id := callerStaffID
		scoped.StaffID = &id
		scoped.Unassigned = false
		return scoped, nil
	case enums.StaffRoleAdmin, enums.StaffRoleDesigner:
		scoped := filter
		scoped.StaffID = nil
		return scoped, nil
	default:
		return OrderFilter{}, pkgerrors.New(pkgerrors.CodeForbidden, "unknown caller role")
	}
}
