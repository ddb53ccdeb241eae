package controllers

import (
	"context"

	"github.com/google/uuid"

	"github.com/printhubhq/printhub-backend/api/middleware"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
)

// actorFromContext resolves the authenticated staff identity seeded by the
// auth middleware. Handlers behind the auth group can rely on both values.
func actorFromContext(ctx context.Context) (uuid.UUID, enums.StaffRole, error) {
	rawID := middleware.StaffIDFromContext(ctx)
	if rawID == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "staff context missing")
	}
	staffID, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid staff id")
	}
	role, err := enums.ParseStaffRole(middleware.RoleFromContext(ctx))
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid role")
	}
	return staffID, role, nil
}
